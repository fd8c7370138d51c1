/*
 * Copyright 2020-present Open Networking Foundation
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

package core

import (
	"context"
	"errors"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

// GEM port network CTP PM attribute names
const (
	gemPmTransmittedGemFrames    = "TransmittedGemFrames"
	gemPmReceivedGemFrames       = "ReceivedGemFrames"
	gemPmReceivedPayloadBytes    = "ReceivedPayloadBytes"
	gemPmTransmittedPayloadBytes = "TransmittedPayloadBytes"
	gemPmEncryptionKeyErrors     = "EncryptionKeyErrors"
)

// GemPortCtpData holds the GEM port network CTP attributes relevant for the hardware
type GemPortCtpData struct {
	PortID uint16
	// TContPointer is the ME instance of the T-CONT carrying the upstream traffic
	TContPointer      uint16
	Direction         uint8
	EncryptionKeyRing uint8
	MaxGemPayloadSize uint16
}

func isAllocIDUnassigned(allocID uint16) bool {
	return allocID == cmn.GponAllocIDUnassigned || allocID == cmn.XgponAllocIDUnassigned
}

// releaseAllocID must be called with mutexCtx held
func (dh *DeviceHandler) releaseAllocID(ctx context.Context, instID uint16) error {
	allocID, err := dh.pAllocIDMap.Lookup(instID)
	if err != nil {
		// nothing assigned
		return nil
	}
	if err := dh.client.ReleaseAllocID(ctx, allocID); err != nil {
		return adperrors.FromFapi(fapi.OpReleaseAllocID, log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"alloc-id": allocID}, err)
	}
	dh.pAllocIDMap.Unmap(ctx, instID)
	return nil
}

// UpdateTCont assigns allocID to the T-CONT; the unassigned encodings release the current alloc ID
func (dh *DeviceHandler) UpdateTCont(ctx context.Context, instID uint16, allocID uint16) (err error) {
	defer dh.observe(ctx, cmn.TContClassID, instID, cmn.OpUpdate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	ml := dh.registerMe(ctx, cmn.TContClassID, instID)
	logger.Debugw(ctx, "update-t-cont", log.Fields{"device-id": dh.DeviceID, "instance-id": instID, "alloc-id": allocID})
	if isAllocIDUnassigned(allocID) {
		if err := dh.releaseAllocID(ctx, instID); err != nil {
			return err
		}
		ml.markUpdated(ctx)
		return nil
	}
	if uint32(allocID) >= dh.pAllocIDMap.Capacity() {
		return adperrors.NewErrInvalidValue(log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"alloc-id": allocID, "capacity": dh.pAllocIDMap.Capacity()}, nil)
	}
	if err := dh.pAllocIDMap.CheckAvailable(instID, uint32(allocID)); err != nil {
		return err
	}
	current, lookupErr := dh.pAllocIDMap.Lookup(instID)
	if lookupErr == nil && current == uint32(allocID) {
		ml.markUpdated(ctx)
		return nil
	}
	// the new alloc ID is activated before the old one is given up
	if err := dh.client.SetAllocID(ctx, uint32(allocID)); err != nil {
		return adperrors.FromFapi(fapi.OpSetAllocID, log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"alloc-id": allocID}, err)
	}
	if lookupErr == nil {
		if err := dh.releaseAllocID(ctx, instID); err != nil {
			if rErr := dh.client.ReleaseAllocID(ctx, uint32(allocID)); rErr != nil {
				logger.Errorw(ctx, "alloc id rollback failed", log.Fields{"device-id": dh.DeviceID,
					"instance-id": instID, "alloc-id": allocID, "err": rErr})
			}
			return err
		}
	}
	if err := dh.pAllocIDMap.Map(ctx, instID, uint32(allocID)); err != nil {
		return err
	}
	ml.markUpdated(ctx)
	return nil
}

// DestroyTCont releases the alloc ID of the T-CONT
func (dh *DeviceHandler) DestroyTCont(ctx context.Context, instID uint16) (err error) {
	defer dh.observe(ctx, cmn.TContClassID, instID, cmn.OpDestroy, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if err := dh.releaseAllocID(ctx, instID); err != nil {
		return err
	}
	dh.deregisterMe(ctx, cmn.TContClassID, instID)
	return nil
}

// gemPortConfig must be called with mutexCtx held
func (dh *DeviceHandler) gemPortConfig(data GemPortCtpData) *fapi.GemPortConfig {
	cfg := &fapi.GemPortConfig{
		GemPortID:         uint32(data.PortID),
		Direction:         data.Direction,
		EncryptionKeyRing: data.EncryptionKeyRing,
		MaxGemPayload:     uint32(data.MaxGemPayloadSize),
	}
	if allocID, err := dh.pAllocIDMap.Lookup(data.TContPointer); err == nil {
		cfg.AllocID = allocID
		cfg.AllocValid = true
	}
	return cfg
}

func (dh *DeviceHandler) validateGemPortCtp(instID uint16, data GemPortCtpData) error {
	switch data.Direction {
	case cmn.GemDirectionUpstream, cmn.GemDirectionDownstream, cmn.GemDirectionBidirectional:
	default:
		return adperrors.NewErrInvalidValue(log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"direction": data.Direction}, nil)
	}
	if uint32(data.PortID) >= dh.pGemPortMap.Capacity() {
		return adperrors.NewErrInvalidValue(log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": data.PortID, "capacity": dh.pGemPortMap.Capacity()}, nil)
	}
	return dh.pGemPortMap.CheckAvailable(instID, uint32(data.PortID))
}

// deleteGemPort must be called with mutexCtx held; a port unknown to the hardware counts as deleted
func (dh *DeviceHandler) deleteGemPort(ctx context.Context, instID uint16, gemPortID uint32) error {
	err := dh.client.DeleteGemPort(ctx, gemPortID)
	var fErr *fapi.Error
	if errors.As(err, &fErr) && fErr.Status == fapi.StatusNoData {
		logger.Warnw(ctx, "gem port already gone", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": gemPortID})
		return nil
	}
	if err != nil {
		return adperrors.FromFapi(fapi.OpDeleteGemPort, log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": gemPortID}, err)
	}
	return nil
}

// CreateGemPortCtp creates the GEM port in hardware and maps the CTP to it.
// Creating an existing instance is a no-op.
func (dh *DeviceHandler) CreateGemPortCtp(ctx context.Context, instID uint16, data GemPortCtpData) (err error) {
	defer dh.observe(ctx, cmn.GemPortNetworkCtpClassID, instID, cmn.OpCreate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if dh.lifecycle(cmn.GemPortNetworkCtpClassID, instID) != nil {
		logger.Debugw(ctx, "gem port network ctp exists - create ignored", log.Fields{"device-id": dh.DeviceID,
			"instance-id": instID})
		return nil
	}
	if err := dh.validateGemPortCtp(instID, data); err != nil {
		return err
	}
	cfg := dh.gemPortConfig(data)
	logger.Debugw(ctx, "create-gem-port-ctp", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
		"config": cfg})
	if err := dh.client.CreateGemPort(ctx, cfg); err != nil {
		return adperrors.FromFapi(fapi.OpCreateGemPort, log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": data.PortID}, err)
	}
	if err := dh.pGemPortMap.Map(ctx, instID, uint32(data.PortID)); err != nil {
		return err
	}
	dh.gemPortCtps[instID] = data
	dh.registerMe(ctx, cmn.GemPortNetworkCtpClassID, instID)
	return nil
}

// UpdateGemPortCtp re-creates the GEM port with the new attributes and remaps the CTP
func (dh *DeviceHandler) UpdateGemPortCtp(ctx context.Context, instID uint16, data GemPortCtpData) (err error) {
	defer dh.observe(ctx, cmn.GemPortNetworkCtpClassID, instID, cmn.OpUpdate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	ml := dh.lifecycle(cmn.GemPortNetworkCtpClassID, instID)
	if ml == nil {
		return dh.errMeNotFound(cmn.GemPortNetworkCtpClassID, instID)
	}
	if err := dh.validateGemPortCtp(instID, data); err != nil {
		return err
	}
	oldID, lookupErr := dh.pGemPortMap.Lookup(instID)
	if lookupErr == nil && oldID == uint32(data.PortID) {
		// same port with new attributes, the hardware port is re-created in place
		if err := dh.deleteGemPort(ctx, instID, oldID); err != nil {
			return err
		}
		if err := dh.client.CreateGemPort(ctx, dh.gemPortConfig(data)); err != nil {
			dh.restoreGemPort(ctx, instID)
			return adperrors.FromFapi(fapi.OpCreateGemPort, log.Fields{"device-id": dh.DeviceID,
				"instance-id": instID, "gem-port-id": data.PortID}, err)
		}
		dh.gemPortCtps[instID] = data
		ml.markUpdated(ctx)
		return nil
	}
	// the new port is created before the old one is deleted
	if err := dh.client.CreateGemPort(ctx, dh.gemPortConfig(data)); err != nil {
		return adperrors.FromFapi(fapi.OpCreateGemPort, log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": data.PortID}, err)
	}
	if lookupErr == nil {
		if err := dh.deleteGemPort(ctx, instID, oldID); err != nil {
			if rErr := dh.deleteGemPort(ctx, instID, uint32(data.PortID)); rErr != nil {
				logger.Errorw(ctx, "gem port rollback failed", log.Fields{"device-id": dh.DeviceID,
					"instance-id": instID, "gem-port-id": data.PortID, "err": rErr})
			}
			return err
		}
	}
	if err := dh.pGemPortMap.Map(ctx, instID, uint32(data.PortID)); err != nil {
		return err
	}
	dh.gemPortCtps[instID] = data
	ml.markUpdated(ctx)
	return nil
}

// restoreGemPort must be called with mutexCtx held; it re-creates the port of the cached attributes
func (dh *DeviceHandler) restoreGemPort(ctx context.Context, instID uint16) {
	prev, exist := dh.gemPortCtps[instID]
	if !exist {
		return
	}
	if err := dh.client.CreateGemPort(ctx, dh.gemPortConfig(prev)); err != nil {
		logger.Errorw(ctx, "gem port restore failed", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"gem-port-id": prev.PortID, "err": err})
	}
}

// DestroyGemPortCtp deletes the GEM port and drops the mapping; destroying an absent instance succeeds
func (dh *DeviceHandler) DestroyGemPortCtp(ctx context.Context, instID uint16) (err error) {
	defer dh.observe(ctx, cmn.GemPortNetworkCtpClassID, instID, cmn.OpDestroy, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if gemPortID, err := dh.pGemPortMap.Lookup(instID); err == nil {
		if err := dh.deleteGemPort(ctx, instID, gemPortID); err != nil {
			return err
		}
		dh.pGemPortMap.Unmap(ctx, instID)
	}
	delete(dh.gemPortCtps, instID)
	dh.deregisterMe(ctx, cmn.GemPortNetworkCtpClassID, instID)
	return nil
}

// GetGemPortPm returns the counters of the GEM port the CTP instance is mapped to
func (dh *DeviceHandler) GetGemPortPm(ctx context.Context, instID uint16) (attrs me.AttributeValueMap, err error) {
	defer dh.observe(ctx, cmn.GemPortNetworkCtpPmClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	gemPortID, err := dh.pGemPortMap.Lookup(instID)
	if err != nil {
		return nil, err
	}
	cnt, err := dh.client.GetGemPortCounters(ctx, gemPortID)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetGemPortCounters, log.Fields{"device-id": dh.DeviceID,
			"instance-id": instID, "gem-port-id": gemPortID}, err)
	}
	return me.AttributeValueMap{
		gemPmTransmittedGemFrames:    conv.SaturateUint32(cnt.TxFrames),
		gemPmReceivedGemFrames:       conv.SaturateUint32(cnt.RxFrames),
		gemPmReceivedPayloadBytes:    cnt.RxBytes,
		gemPmTransmittedPayloadBytes: cnt.TxBytes,
		gemPmEncryptionKeyErrors:     conv.SaturateUint32(cnt.KeyErrors),
	}, nil
}

// GemPortCtp returns the attributes the CTP instance was last configured with
func (dh *DeviceHandler) GemPortCtp(instID uint16) (GemPortCtpData, bool) {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	data, exist := dh.gemPortCtps[instID]
	return data, exist
}
