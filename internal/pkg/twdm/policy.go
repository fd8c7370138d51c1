/*
 * Copyright 2020-2024 Open Networking Foundation (ONF) and the ONF Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package twdm

import (
	"context"
	"math/bits"
	"strconv"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

const (
	// OMCI timers count 125 us units, the hardware takes ms
	omciTicksPerMs = 8
	// MaxChannelPartitionIndex is the highest CPI a TWDM ONU accepts
	MaxChannelPartitionIndex = 15
)

// Profile holds the TWDM system profile attributes in OMCI units
type Profile struct {
	TotalChannelNumber          uint8 // read only
	ChannelPartitionIndex       uint8
	ChannelPartitionWaiverTimer uint32
	LodsReinitTimer             uint32
	LodsProtectionTimer         uint32
	DsTuningTimer               uint32
	UsTuningTimer               uint32
}

// Policy applies TWDM system profile settings of one device to the hardware
// and to the durable configuration. Callers serialize access.
type Policy struct {
	Client fapi.Client
	// Store may be nil, the settings are then not persisted
	Store cmn.ConfigStore
	// FloorMs is the lowest accepted downstream/upstream tuning timer
	FloorMs     uint32
	ChannelMask uint8
	Mode        fapi.PonMode
}

// NewPolicy returns the TWDM policy of a device
func NewPolicy(client fapi.Client, store cmn.ConfigStore, floorMs uint32, channelMask uint8, mode fapi.PonMode) *Policy {
	return &Policy{
		Client:      client,
		Store:       store,
		FloorMs:     floorMs,
		ChannelMask: channelMask,
		Mode:        mode,
	}
}

// Update validates the profile, merges its timers into the active timeout set
// and commits timers and channel partition index. Nothing is committed if validation fails.
func (p *Policy) Update(ctx context.Context, prof Profile) error {
	if prof.ChannelPartitionIndex > MaxChannelPartitionIndex {
		return adperrors.NewErrInvalidValue(log.Fields{"attribute": "channel-partition-index",
			"value": prof.ChannelPartitionIndex, "max": MaxChannelPartitionIndex}, nil)
	}
	cfg, err := p.Client.GetTimeoutConfig(ctx)
	if err != nil {
		return adperrors.FromFapi(fapi.OpGetTimeoutConfig, nil, err)
	}
	cfg.PloamTimeoutCpi = prof.ChannelPartitionWaiverTimer / omciTicksPerMs
	cfg.PloamTimeout2 = prof.LodsReinitTimer / omciTicksPerMs
	cfg.PloamTimeout3 = prof.LodsProtectionTimer / omciTicksPerMs
	cfg.PloamTimeout4 = prof.DsTuningTimer / omciTicksPerMs
	cfg.PloamTimeout5 = prof.UsTuningTimer / omciTicksPerMs

	if cfg.PloamTimeout4 < p.FloorMs {
		return adperrors.NewErrInvalidValue(log.Fields{"attribute": "ds-tuning-timer",
			"value-ms": cfg.PloamTimeout4, "floor-ms": p.FloorMs}, nil)
	}
	if cfg.PloamTimeout5 < p.FloorMs {
		return adperrors.NewErrInvalidValue(log.Fields{"attribute": "us-tuning-timer",
			"value-ms": cfg.PloamTimeout5, "floor-ms": p.FloorMs}, nil)
	}

	if err := p.Client.SetTimeoutConfig(ctx, cfg); err != nil {
		return adperrors.FromFapi(fapi.OpSetTimeoutConfig, nil, err)
	}
	if err := p.Client.SetChannelPartitionIndex(ctx, prof.ChannelPartitionIndex); err != nil {
		return adperrors.FromFapi(fapi.OpSetChannelPartitionIndex, log.Fields{"cpi": prof.ChannelPartitionIndex}, err)
	}
	logger.Debugw(ctx, "twdm timers committed", log.Fields{"t2": cfg.PloamTimeout2, "t3": cfg.PloamTimeout3,
		"t4": cfg.PloamTimeout4, "t5": cfg.PloamTimeout5, "cpi-timer": cfg.PloamTimeoutCpi, "cpi": prof.ChannelPartitionIndex})
	return p.persist(ctx, cfg, prof.ChannelPartitionIndex)
}

func (p *Policy) persist(ctx context.Context, cfg *fapi.TimeoutConfig, cpi uint8) error {
	if p.Store == nil {
		logger.Debug(ctx, "no config store - twdm settings not persisted")
		return nil
	}
	entries := []struct {
		key   string
		value uint32
	}{
		{cmn.CfgKeyPloamTimeout2, cfg.PloamTimeout2},
		{cmn.CfgKeyPloamTimeout3, cfg.PloamTimeout3},
		{cmn.CfgKeyPloamTimeout4, cfg.PloamTimeout4},
		{cmn.CfgKeyPloamTimeout5, cfg.PloamTimeout5},
		{cmn.CfgKeyPloamTimeoutCpi, cfg.PloamTimeoutCpi},
		{cmn.CfgKeyCpi, uint32(cpi)},
	}
	for i, e := range entries {
		commit := i == len(entries)-1
		if err := p.Store.Write(ctx, cmn.CfgSectionGpon, cmn.CfgSubsectionPonIP, e.key,
			strconv.FormatUint(uint64(e.value), 10), commit); err != nil {
			return adperrors.NewErrAdapter("config-store-write-failed", log.Fields{"key": e.key}, err)
		}
	}
	return nil
}

// Get returns the active profile in OMCI units, only available in NG-PON2 modes
func (p *Policy) Get(ctx context.Context) (Profile, error) {
	if !p.Mode.IsTwdm() {
		return Profile{}, adperrors.NewErrUnsupportedMode("get-twdm-system-profile", p.Mode, nil)
	}
	cfg, err := p.Client.GetTimeoutConfig(ctx)
	if err != nil {
		return Profile{}, adperrors.FromFapi(fapi.OpGetTimeoutConfig, nil, err)
	}
	twdmCfg, err := p.Client.GetTwdmConfig(ctx)
	if err != nil {
		return Profile{}, adperrors.FromFapi(fapi.OpGetTwdmConfig, nil, err)
	}
	return Profile{
		TotalChannelNumber:          uint8(bits.OnesCount8(p.ChannelMask)),
		ChannelPartitionIndex:       twdmCfg.ChannelPartitionIndex,
		ChannelPartitionWaiverTimer: cfg.PloamTimeoutCpi * omciTicksPerMs,
		LodsReinitTimer:             cfg.PloamTimeout2 * omciTicksPerMs,
		LodsProtectionTimer:         cfg.PloamTimeout3 * omciTicksPerMs,
		DsTuningTimer:               cfg.PloamTimeout4 * omciTicksPerMs,
		UsTuningTimer:               cfg.PloamTimeout5 * omciTicksPerMs,
	}, nil
}

// Restore re-applies the persisted timers and channel partition index to the
// hardware. Nothing is applied unless all keys are present and valid.
func (p *Policy) Restore(ctx context.Context, reader cmn.ConfigReader) error {
	if !p.Mode.IsTwdm() || reader == nil {
		return nil
	}
	keys := []string{cmn.CfgKeyPloamTimeout2, cmn.CfgKeyPloamTimeout3, cmn.CfgKeyPloamTimeout4,
		cmn.CfgKeyPloamTimeout5, cmn.CfgKeyPloamTimeoutCpi, cmn.CfgKeyCpi}
	values := make(map[string]uint32, len(keys))
	for _, key := range keys {
		raw, err := reader.Read(ctx, cmn.CfgSectionGpon, cmn.CfgSubsectionPonIP, key)
		if err != nil {
			logger.Debugw(ctx, "no persisted twdm settings", log.Fields{"key": key, "err": err})
			return nil
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return adperrors.NewErrInvalidValue(log.Fields{"key": key, "value": raw}, err)
		}
		values[key] = uint32(v)
	}
	if values[cmn.CfgKeyCpi] > MaxChannelPartitionIndex {
		return adperrors.NewErrInvalidValue(log.Fields{"key": cmn.CfgKeyCpi, "value": values[cmn.CfgKeyCpi]}, nil)
	}
	if values[cmn.CfgKeyPloamTimeout4] < p.FloorMs || values[cmn.CfgKeyPloamTimeout5] < p.FloorMs {
		return adperrors.NewErrInvalidValue(log.Fields{"t4": values[cmn.CfgKeyPloamTimeout4],
			"t5": values[cmn.CfgKeyPloamTimeout5], "floor-ms": p.FloorMs}, nil)
	}
	cfg, err := p.Client.GetTimeoutConfig(ctx)
	if err != nil {
		return adperrors.FromFapi(fapi.OpGetTimeoutConfig, nil, err)
	}
	cfg.PloamTimeout2 = values[cmn.CfgKeyPloamTimeout2]
	cfg.PloamTimeout3 = values[cmn.CfgKeyPloamTimeout3]
	cfg.PloamTimeout4 = values[cmn.CfgKeyPloamTimeout4]
	cfg.PloamTimeout5 = values[cmn.CfgKeyPloamTimeout5]
	cfg.PloamTimeoutCpi = values[cmn.CfgKeyPloamTimeoutCpi]
	if err := p.Client.SetTimeoutConfig(ctx, cfg); err != nil {
		return adperrors.FromFapi(fapi.OpSetTimeoutConfig, nil, err)
	}
	if err := p.Client.SetChannelPartitionIndex(ctx, uint8(values[cmn.CfgKeyCpi])); err != nil {
		return adperrors.FromFapi(fapi.OpSetChannelPartitionIndex, nil, err)
	}
	logger.Infow(ctx, "twdm settings restored", log.Fields{"values": values})
	return nil
}
