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

//Package fapi provides the boundary to the PON hardware control API
package fapi

import (
	"context"
	"sync"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

var _ Client = (*Simulator)(nil)

// Simulator is an in-memory implementation of Client used for tests and
// for running the adapter without PON hardware attached.
type Simulator struct {
	mutex      sync.Mutex
	caps       Capabilities
	optical    OpticalStatus
	gpon       GponStatus
	tod        TodSync
	timeouts   TimeoutConfig
	twdm       TwdmConfig
	oltType    OltType
	thresholds OpticalThresholds
	gemPorts   map[uint32]GemPortConfig
	allocIDs   map[uint32]struct{}
	gemCnt     map[uint32]GemPortCounters
	fec        FecCounters
	xgtc       XgtcCounters
	failures   map[string]Status
	calls      map[string]int
}

// NewSimulator returns a simulated device with the given capabilities and
// G.989.3 default PLOAM timers
func NewSimulator(caps Capabilities) *Simulator {
	return &Simulator{
		caps: caps,
		gpon: GponStatus{Mode: caps.Mode, OnuID: 1},
		optical: OpticalStatus{
			RxPower:     -10327, // -20.654 dBm
			TxPower:     1234,
			Voltage:     33000,
			Bias:        5000,
			Temperature: 40 * 256,
		},
		timeouts: TimeoutConfig{
			PloamTimeout0:   10000,
			PloamTimeout1:   10000,
			PloamTimeout2:   100,
			PloamTimeout3:   10000,
			PloamTimeout4:   1000,
			PloamTimeout5:   1000,
			PloamTimeout6:   10000,
			PloamTimeoutCpi: 1000,
		},
		gemPorts: make(map[uint32]GemPortConfig),
		allocIDs: make(map[uint32]struct{}),
		gemCnt:   make(map[uint32]GemPortCounters),
		failures: make(map[string]Status),
		calls:    make(map[string]int),
	}
}

// InjectError makes every subsequent call of op fail with status until ClearError
func (s *Simulator) InjectError(op string, status Status) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failures[op] = status
}

// ClearError removes an injected failure
func (s *Simulator) ClearError(op string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.failures, op)
}

// Calls returns how often op was invoked, failed calls included
func (s *Simulator) Calls(op string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls[op]
}

// SetOpticalStatus sets the simulated transceiver readings
func (s *Simulator) SetOpticalStatus(st OpticalStatus) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.optical = st
}

// SetGponStatus sets the simulated ranging results
func (s *Simulator) SetGponStatus(st GponStatus) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.gpon = st
}

// SetGemPortCounters sets the simulated counters of a GEM port
func (s *Simulator) SetGemPortCounters(gemPortID uint32, cnt GemPortCounters) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.gemCnt[gemPortID] = cnt
}

// SetFecCounters sets the simulated FEC counters
func (s *Simulator) SetFecCounters(cnt FecCounters) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.fec = cnt
}

// SetXgtcCounters sets the simulated XGTC counters
func (s *Simulator) SetXgtcCounters(cnt XgtcCounters) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.xgtc = cnt
}

// OltType returns the last interoperability selector written
func (s *Simulator) OltType() OltType {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.oltType
}

// AlarmThresholds returns the last optical thresholds written
func (s *Simulator) AlarmThresholds() OpticalThresholds {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.thresholds
}

// GemPort returns the configuration of a created GEM port
func (s *Simulator) GemPort(gemPortID uint32) (GemPortConfig, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cfg, ok := s.gemPorts[gemPortID]
	return cfg, ok
}

// NumGemPorts returns the number of created GEM ports
func (s *Simulator) NumGemPorts() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.gemPorts)
}

// AllocIDActive reports whether allocID is currently assigned
func (s *Simulator) AllocIDActive(allocID uint32) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	_, ok := s.allocIDs[allocID]
	return ok
}

// enter must be called with the mutex held
func (s *Simulator) enter(ctx context.Context, op string) error {
	s.calls[op]++
	if st, ok := s.failures[op]; ok {
		logger.Debugw(ctx, "simulated hardware failure", log.Fields{"op": op, "status": st})
		return NewError(op, st)
	}
	return nil
}

// GetCapabilities - Client implementation
func (s *Simulator) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetCapabilities); err != nil {
		return nil, err
	}
	caps := s.caps
	return &caps, nil
}

// GetOpticalStatus - Client implementation
func (s *Simulator) GetOpticalStatus(ctx context.Context) (*OpticalStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetOpticalStatus); err != nil {
		return nil, err
	}
	st := s.optical
	return &st, nil
}

// GetGponStatus - Client implementation
func (s *Simulator) GetGponStatus(ctx context.Context) (*GponStatus, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetGponStatus); err != nil {
		return nil, err
	}
	st := s.gpon
	return &st, nil
}

// GetTodSync - Client implementation
func (s *Simulator) GetTodSync(ctx context.Context) (*TodSync, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetTodSync); err != nil {
		return nil, err
	}
	tod := s.tod
	return &tod, nil
}

// SetTodSync - Client implementation
func (s *Simulator) SetTodSync(ctx context.Context, tod *TodSync) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetTodSync); err != nil {
		return err
	}
	if tod == nil {
		return NewError(OpSetTodSync, StatusInputErr)
	}
	s.tod = *tod
	return nil
}

// GetTimeoutConfig - Client implementation
func (s *Simulator) GetTimeoutConfig(ctx context.Context) (*TimeoutConfig, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetTimeoutConfig); err != nil {
		return nil, err
	}
	cfg := s.timeouts
	return &cfg, nil
}

// SetTimeoutConfig - Client implementation
func (s *Simulator) SetTimeoutConfig(ctx context.Context, cfg *TimeoutConfig) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetTimeoutConfig); err != nil {
		return err
	}
	if cfg == nil {
		return NewError(OpSetTimeoutConfig, StatusInputErr)
	}
	s.timeouts = *cfg
	return nil
}

// GetTwdmConfig - Client implementation
func (s *Simulator) GetTwdmConfig(ctx context.Context) (*TwdmConfig, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetTwdmConfig); err != nil {
		return nil, err
	}
	if !s.caps.Mode.IsTwdm() {
		return nil, NewError(OpGetTwdmConfig, StatusNotSupported)
	}
	cfg := s.twdm
	return &cfg, nil
}

// SetChannelPartitionIndex - Client implementation
func (s *Simulator) SetChannelPartitionIndex(ctx context.Context, cpi uint8) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetChannelPartitionIndex); err != nil {
		return err
	}
	if cpi > 15 {
		return NewError(OpSetChannelPartitionIndex, StatusInputErr)
	}
	s.twdm.ChannelPartitionIndex = cpi
	return nil
}

// SetOltType - Client implementation
func (s *Simulator) SetOltType(ctx context.Context, olt *OltType) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetOltType); err != nil {
		return err
	}
	if olt == nil {
		return NewError(OpSetOltType, StatusInputErr)
	}
	s.oltType = *olt
	return nil
}

// SetAlarmThresholds - Client implementation
func (s *Simulator) SetAlarmThresholds(ctx context.Context, thr *OpticalThresholds) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetAlarmThresholds); err != nil {
		return err
	}
	if thr == nil {
		return NewError(OpSetAlarmThresholds, StatusInputErr)
	}
	s.thresholds = *thr
	return nil
}

// CreateGemPort - Client implementation
func (s *Simulator) CreateGemPort(ctx context.Context, cfg *GemPortConfig) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpCreateGemPort); err != nil {
		return err
	}
	if cfg == nil || cfg.GemPortID >= s.caps.GemPortCapacity {
		return NewError(OpCreateGemPort, StatusInputErr)
	}
	if _, exist := s.gemPorts[cfg.GemPortID]; exist {
		return NewError(OpCreateGemPort, StatusBusy)
	}
	s.gemPorts[cfg.GemPortID] = *cfg
	return nil
}

// DeleteGemPort - Client implementation
func (s *Simulator) DeleteGemPort(ctx context.Context, gemPortID uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpDeleteGemPort); err != nil {
		return err
	}
	if _, exist := s.gemPorts[gemPortID]; !exist {
		return NewError(OpDeleteGemPort, StatusNoData)
	}
	delete(s.gemPorts, gemPortID)
	delete(s.gemCnt, gemPortID)
	return nil
}

// SetAllocID - Client implementation
func (s *Simulator) SetAllocID(ctx context.Context, allocID uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpSetAllocID); err != nil {
		return err
	}
	if allocID >= s.caps.AllocIDCapacity {
		return NewError(OpSetAllocID, StatusInputErr)
	}
	s.allocIDs[allocID] = struct{}{}
	return nil
}

// ReleaseAllocID - Client implementation
func (s *Simulator) ReleaseAllocID(ctx context.Context, allocID uint32) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpReleaseAllocID); err != nil {
		return err
	}
	delete(s.allocIDs, allocID)
	return nil
}

// GetGemPortCounters - Client implementation
func (s *Simulator) GetGemPortCounters(ctx context.Context, gemPortID uint32) (*GemPortCounters, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetGemPortCounters); err != nil {
		return nil, err
	}
	if _, exist := s.gemPorts[gemPortID]; !exist {
		return nil, NewError(OpGetGemPortCounters, StatusNoData)
	}
	cnt := s.gemCnt[gemPortID]
	return &cnt, nil
}

// GetFecCounters - Client implementation
func (s *Simulator) GetFecCounters(ctx context.Context) (*FecCounters, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetFecCounters); err != nil {
		return nil, err
	}
	cnt := s.fec
	return &cnt, nil
}

// GetXgtcCounters - Client implementation
func (s *Simulator) GetXgtcCounters(ctx context.Context) (*XgtcCounters, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.enter(ctx, OpGetXgtcCounters); err != nil {
		return nil, err
	}
	if s.caps.Mode == ModeGpon {
		return nil, NewError(OpGetXgtcCounters, StatusNotSupported)
	}
	cnt := s.xgtc
	return &cnt, nil
}
