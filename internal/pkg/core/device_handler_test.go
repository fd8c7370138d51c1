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
	"math"
	"sync"
	"testing"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/events/eventif"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/oltvendor"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/tod"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/twdm"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mutex  sync.Mutex
	events []string
}

func (f *fakeSender) SendDeviceEvent(ctx context.Context, deviceEvent *voltha.DeviceEvent, category eventif.EventCategory,
	subCategory eventif.EventSubCategory, raisedTs int64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events = append(f.events, deviceEvent.DeviceEventName)
	return nil
}

func (f *fakeSender) has(name string) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for _, e := range f.events {
		if e == name {
			return true
		}
	}
	return false
}

func testConfig() DeviceConfig {
	return DeviceConfig{
		RxLowerThresholdDbm: -28,
		RxUpperThresholdDbm: -8,
		TxLowerThresholdDbm: -1,
		TxUpperThresholdDbm: 5,
		TwdmTuningFloorMs:   100,
		OltInteropMask:      0x3,
	}
}

func newTestHandler(t *testing.T, mode fapi.PonMode) (*DeviceHandler, *fapi.Simulator, *fakeSender) {
	ctx := context.Background()
	sim := fapi.NewSimulator(fapi.Capabilities{Mode: mode, GemPortCapacity: 256, AllocIDCapacity: 128,
		TwdmChannelMask: 0x0F})
	sender := &fakeSender{}
	ac := NewOpenOnuFapiAC(ctx, nil, sender, nil)
	dh, err := ac.Attach(ctx, "onu-1", sim, testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ac.Stop(ctx) })
	return dh, sim, sender
}

func TestAniGUpdateAppliesThresholds(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	_, err := dh.GetAniG(ctx, 0x8001)
	var nf *adperrors.ErrNotFound
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, me.UnknownInstance, adperrors.ResultCode(err))

	require.NoError(t, dh.CreateAniG(ctx, 0x8001))
	require.NoError(t, dh.CreateAniG(ctx, 0x8001))

	data := AniGData{
		LowerOpticalThreshold:       56, // -28 dBm
		UpperOpticalThreshold:       cmn.RxThresholdDefault,
		LowerTransmitPowerThreshold: cmn.TxThresholdDefault,
		UpperTransmitPowerThreshold: 10, // 5 dBm
	}
	require.NoError(t, dh.UpdateAniG(ctx, 0x8001, data))
	assert.Equal(t, fapi.OpticalThresholds{LowerRx: -14000, UpperRx: -4000, LowerTx: -500, UpperTx: 2500},
		sim.AlarmThresholds())

	attrs, err := dh.GetAniG(ctx, 0x8001)
	require.NoError(t, err)
	assert.Equal(t, uint8(56), attrs[aniGLowerOpticalThreshold])
	assert.Equal(t, cmn.RxThresholdDefault, attrs[aniGUpperOpticalThreshold])
	assert.Equal(t, cmn.TxThresholdDefault, attrs[aniGLowerTransmitPowerThreshold])
	assert.Equal(t, uint8(10), attrs[aniGUpperTransmitPowerThreshold])
	assert.Equal(t, cmn.SignedInt16ToTwosComplement(-10327), attrs[aniGOpticalSignalLevel])
	assert.Equal(t, cmn.SignedInt16ToTwosComplement(1234), attrs[aniGTransmitOpticalLevel])
	assert.Equal(t, meStUpdated, dh.lifecycle(cmn.AniGClassID, 0x8001).state())
}

func TestAniGUpdateFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	require.NoError(t, dh.UpdateAniG(ctx, 1, AniGData{LowerOpticalThreshold: 50, UpperOpticalThreshold: 10,
		LowerTransmitPowerThreshold: 2, UpperTransmitPowerThreshold: 8}))
	before := sim.AlarmThresholds()

	sim.InjectError(fapi.OpSetAlarmThresholds, fapi.StatusBusy)
	err := dh.UpdateAniG(ctx, 1, AniGData{LowerOpticalThreshold: 60, UpperOpticalThreshold: 20,
		LowerTransmitPowerThreshold: 4, UpperTransmitPowerThreshold: 9})
	var hw *adperrors.ErrHardware
	require.True(t, errors.As(err, &hw))
	assert.Equal(t, fapi.StatusBusy, hw.Status)
	assert.Equal(t, me.DeviceBusy, adperrors.ResultCode(err))

	attrs, err := dh.GetAniG(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(50), attrs[aniGLowerOpticalThreshold])
	assert.Equal(t, uint8(10), attrs[aniGUpperOpticalThreshold])
	assert.Equal(t, before, sim.AlarmThresholds())
}

func TestAniGGetReportsSentinelsOnReadFailure(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeGpon)
	require.NoError(t, dh.CreateAniG(ctx, 1))

	sim.InjectError(fapi.OpGetOpticalStatus, fapi.StatusTimeout)
	attrs, err := dh.GetAniG(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, cmn.SignedInt16ToTwosComplement(conv.PowerZero), attrs[aniGOpticalSignalLevel])

	res, err := dh.TestAniG(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, conv.PowerZero, res.ReceivedOpticalPower)
	assert.Equal(t, uint16(0), res.PowerFeedVoltage)

	_, err = dh.GetAniGOpticalInfo(ctx, 1)
	var hw *adperrors.ErrHardware
	assert.True(t, errors.As(err, &hw))
}

func TestAniGOpticalInfo(t *testing.T) {
	ctx := context.Background()
	dh, _, _ := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.CreateAniG(ctx, 1))

	res, err := dh.TestAniG(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, AniGTestResult{
		PowerFeedVoltage:     165,
		ReceivedOpticalPower: 4673,
		MeanOpticalLaunch:    16234,
		LaserBiasCurrent:     5000,
		Temperature:          40 * 256,
	}, res)

	info, err := dh.GetAniGOpticalInfo(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 3.3, info.PowerFeedVoltage, 0.001)
	assert.InDelta(t, -20.654, info.ReceivedOpticalPower, 0.001)
	assert.InDelta(t, 2.468, info.MeanOpticalLaunchPower, 0.001)
	assert.InDelta(t, 10.0, info.LaserBiasCurrent, 0.001)
	assert.InDelta(t, 40.0, info.Temperature, 0.001)
}

func TestAniGAlarmRecheck(t *testing.T) {
	ctx := context.Background()
	dh, sim, sender := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.CreateAniG(ctx, 1))

	// -30 dBm is below the -28 dBm default
	sim.SetOpticalStatus(fapi.OpticalStatus{RxPower: -15000, TxPower: 1000})
	require.NoError(t, dh.RecheckAniGAlarms(ctx, 1))
	assert.Eventually(t, func() bool { return sender.has("ONU_LOW_RX_OPTICAL_RAISE_EVENT") },
		time.Second, 10*time.Millisecond)

	sim.SetOpticalStatus(fapi.OpticalStatus{RxPower: -10000, TxPower: 1000})
	require.NoError(t, dh.RecheckAniGAlarms(ctx, 1))
	assert.Eventually(t, func() bool { return sender.has("ONU_LOW_RX_OPTICAL_CLEAR_EVENT") },
		time.Second, 10*time.Millisecond)

	sim.InjectError(fapi.OpGetOpticalStatus, fapi.StatusErr)
	assert.Error(t, dh.RecheckAniGAlarms(ctx, 1))

	require.NoError(t, dh.DestroyAniG(ctx, 1))
	require.NoError(t, dh.DestroyAniG(ctx, 1))
	var nf *adperrors.ErrNotFound
	assert.True(t, errors.As(dh.RecheckAniGAlarms(ctx, 1), &nf))
}

func TestAniGAlarmCheckOutlivesCreateRequest(t *testing.T) {
	dh, sim, sender := newTestHandler(t, fapi.ModeXgspon)
	reqCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dh.CreateAniG(reqCtx, 1))
	cancel()

	dh.mutexCtx.Lock()
	checker := dh.aniGAlarmChecker[1]
	dh.mutexCtx.Unlock()
	require.NotNil(t, checker)

	before := sim.Calls(fapi.OpGetOpticalStatus)
	sim.SetOpticalStatus(fapi.OpticalStatus{RxPower: -15000, TxPower: 1000})
	checker.Trigger()
	assert.Eventually(t, func() bool { return sim.Calls(fapi.OpGetOpticalStatus) > before },
		time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return sender.has("ONU_LOW_RX_OPTICAL_RAISE_EVENT") },
		time.Second, 10*time.Millisecond)
}

func TestAniGConcurrentUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	dh, _, _ := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.CreateAniG(ctx, 1))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(level uint8) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				assert.NoError(t, dh.UpdateAniG(ctx, 1, AniGData{LowerOpticalThreshold: level,
					UpperOpticalThreshold: level, LowerTransmitPowerThreshold: level,
					UpperTransmitPowerThreshold: level}))
			}
		}(uint8(10 * (i + 1)))
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				attrs, err := dh.GetAniG(ctx, 1)
				if !assert.NoError(t, err) {
					return
				}
				lower := attrs[aniGLowerOpticalThreshold]
				assert.Equal(t, lower, attrs[aniGUpperOpticalThreshold])
				assert.Equal(t, lower, attrs[aniGLowerTransmitPowerThreshold])
				assert.Equal(t, lower, attrs[aniGUpperTransmitPowerThreshold])
			}
		}()
	}
	wg.Wait()
}

func TestOltGUpdate(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)
	// 2000 ns response time, weighted by the XGS-PON asymmetry
	sim.SetGponStatus(fapi.GponStatus{Mode: fapi.ModeXgspon, OnuResponseTime: 2000})

	rec := fapi.TodSync{MultiframeCount: 7, Seconds: 100, ExtSeconds: 1, Nanoseconds: 5000}
	require.NoError(t, dh.UpdateOltG(ctx, 0, OltGData{
		OltVendorID: []byte("ALCL"),
		EquipmentID: []byte("7360 FX-16"),
		Version:     []byte("6.2"),
		TimeOfDay:   tod.EncodeOmci(rec),
	}))
	assert.Equal(t, oltvendor.Nokia, dh.OltVendor())
	assert.Equal(t, fapi.OltType{Type: uint32(oltvendor.Nokia), IopMask: 0x3}, sim.OltType())

	attrs, err := dh.GetOltG(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("ALCL"), attrs[oltGOltVendorID])
	assert.Equal(t, []byte("6.2"), attrs[oltGOltVersion])
	expected := rec
	expected.Nanoseconds = 4000
	assert.Equal(t, tod.EncodeOmci(expected), attrs[oltGTimeOfDayInformation])
}

func TestOltGUpdateFailures(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("HWTC")}))

	err := dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ZTE")})
	var iv *adperrors.ErrInvalidValue
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, 1, sim.Calls(fapi.OpSetOltType))

	sim.InjectError(fapi.OpSetOltType, fapi.StatusErr)
	require.Error(t, dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ZTEG")}))
	assert.Equal(t, oltvendor.Huawei, dh.OltVendor())

	sim.ClearError(fapi.OpSetOltType)
	require.Error(t, dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ZTEG"), TimeOfDay: []byte{1, 2, 3}}))
	assert.Equal(t, oltvendor.Huawei, dh.OltVendor())

	// unknown vendors select the generic profile
	require.NoError(t, dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ACME")}))
	assert.Equal(t, oltvendor.Unknown, dh.OltVendor())
}

func TestOltGRejectedUpdateTouchesNothing(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	var iv *adperrors.ErrInvalidValue
	err := dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ZTEG"), TimeOfDay: make([]byte, 13)})
	require.Error(t, err)
	err = dh.UpdateOltG(ctx, 0, OltGData{OltVendorID: []byte("ZT")})
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, 0, sim.Calls(fapi.OpSetOltType))
	assert.Equal(t, 0, sim.Calls(fapi.OpSetTodSync))

	_, err = dh.GetOltG(ctx, 0)
	var nf *adperrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))
	assert.Nil(t, dh.lifecycle(cmn.OltGClassID, 0))
}

func TestTContAllocID(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, 100))
	assert.True(t, sim.AllocIDActive(100))
	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, 100))
	assert.Equal(t, 1, sim.Calls(fapi.OpSetAllocID))

	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, 101))
	assert.False(t, sim.AllocIDActive(100))
	assert.True(t, sim.AllocIDActive(101))

	err := dh.UpdateTCont(ctx, 0x8001, 1000)
	var iv *adperrors.ErrInvalidValue
	require.True(t, errors.As(err, &iv))
	assert.True(t, sim.AllocIDActive(101))

	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, cmn.XgponAllocIDUnassigned))
	assert.False(t, sim.AllocIDActive(101))

	require.NoError(t, dh.UpdateTCont(ctx, 0x8002, 5))
	require.NoError(t, dh.DestroyTCont(ctx, 0x8002))
	assert.False(t, sim.AllocIDActive(5))
	assert.Nil(t, dh.lifecycle(cmn.TContClassID, 0x8002))
}

func TestGemPortCtpLifecycle(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, 100))

	data := GemPortCtpData{PortID: 10, TContPointer: 0x8001, Direction: cmn.GemDirectionBidirectional,
		MaxGemPayloadSize: 4095}
	require.NoError(t, dh.CreateGemPortCtp(ctx, 5, data))
	cfg, ok := sim.GemPort(10)
	require.True(t, ok)
	assert.True(t, cfg.AllocValid)
	assert.Equal(t, uint32(100), cfg.AllocID)

	// repeated create leaves the hardware untouched
	require.NoError(t, dh.CreateGemPortCtp(ctx, 5, data))
	assert.Equal(t, 1, sim.Calls(fapi.OpCreateGemPort))

	data.PortID = 11
	require.NoError(t, dh.UpdateGemPortCtp(ctx, 5, data))
	_, ok = sim.GemPort(10)
	assert.False(t, ok)
	_, ok = sim.GemPort(11)
	assert.True(t, ok)
	assert.Equal(t, 1, sim.NumGemPorts())

	sim.SetGemPortCounters(11, fapi.GemPortCounters{TxFrames: 1 << 33, RxFrames: 12, TxBytes: 1 << 40, RxBytes: 99})
	attrs, err := dh.GetGemPortPm(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), attrs[gemPmTransmittedGemFrames])
	assert.Equal(t, uint32(12), attrs[gemPmReceivedGemFrames])
	assert.Equal(t, uint64(1<<40), attrs[gemPmTransmittedPayloadBytes])

	require.NoError(t, dh.DestroyGemPortCtp(ctx, 5))
	assert.Equal(t, 0, sim.NumGemPorts())
	_, err = dh.GetGemPortPm(ctx, 5)
	var nf *adperrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))
	require.NoError(t, dh.DestroyGemPortCtp(ctx, 5))
}

func TestGemPortCtpFailedUpdateKeepsPort(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)
	first := GemPortCtpData{PortID: 10, Direction: cmn.GemDirectionBidirectional}
	second := GemPortCtpData{PortID: 20, Direction: cmn.GemDirectionBidirectional}
	require.NoError(t, dh.CreateGemPortCtp(ctx, 5, first))
	require.NoError(t, dh.CreateGemPortCtp(ctx, 6, second))

	// port 20 belongs to instance 6
	err := dh.UpdateGemPortCtp(ctx, 5, second)
	var iv *adperrors.ErrInvalidValue
	require.True(t, errors.As(err, &iv))
	assert.Equal(t, 2, sim.Calls(fapi.OpCreateGemPort))
	assert.Equal(t, 0, sim.Calls(fapi.OpDeleteGemPort))

	sim.InjectError(fapi.OpCreateGemPort, fapi.StatusBusy)
	require.Error(t, dh.UpdateGemPortCtp(ctx, 5, GemPortCtpData{PortID: 30, Direction: cmn.GemDirectionUpstream}))
	sim.ClearError(fapi.OpCreateGemPort)

	for _, instID := range []uint16{5, 6} {
		cached, ok := dh.GemPortCtp(instID)
		require.True(t, ok)
		_, ok = sim.GemPort(uint32(cached.PortID))
		assert.True(t, ok, "instance %d lost its hardware port", instID)
		dh.mutexCtx.Lock()
		mapped, err := dh.pGemPortMap.Lookup(instID)
		dh.mutexCtx.Unlock()
		require.NoError(t, err)
		assert.Equal(t, uint32(cached.PortID), mapped)
	}
	cached, _ := dh.GemPortCtp(5)
	assert.Equal(t, first, cached)
	assert.Equal(t, 2, sim.NumGemPorts())

	// same port with new attributes
	first.Direction = cmn.GemDirectionUpstream
	require.NoError(t, dh.UpdateGemPortCtp(ctx, 5, first))
	cfg, ok := sim.GemPort(10)
	require.True(t, ok)
	assert.Equal(t, uint8(cmn.GemDirectionUpstream), cfg.Direction)
}

func TestTContFailedUpdateKeepsAllocID(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)
	require.NoError(t, dh.UpdateTCont(ctx, 0x8001, 100))
	require.NoError(t, dh.UpdateTCont(ctx, 0x8002, 101))

	err := dh.UpdateTCont(ctx, 0x8001, 101)
	var iv *adperrors.ErrInvalidValue
	require.True(t, errors.As(err, &iv))

	sim.InjectError(fapi.OpSetAllocID, fapi.StatusErr)
	require.Error(t, dh.UpdateTCont(ctx, 0x8001, 102))
	sim.ClearError(fapi.OpSetAllocID)

	assert.True(t, sim.AllocIDActive(100))
	assert.True(t, sim.AllocIDActive(101))
	assert.False(t, sim.AllocIDActive(102))
	dh.mutexCtx.Lock()
	allocID, err := dh.pAllocIDMap.Lookup(0x8001)
	dh.mutexCtx.Unlock()
	require.NoError(t, err)
	assert.Equal(t, uint32(100), allocID)

	// destroying the other T-CONT still releases its alloc ID
	require.NoError(t, dh.DestroyTCont(ctx, 0x8002))
	assert.False(t, sim.AllocIDActive(101))
}

func TestGemPortCtpValidation(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	var iv *adperrors.ErrInvalidValue
	err := dh.CreateGemPortCtp(ctx, 1, GemPortCtpData{PortID: 300, Direction: cmn.GemDirectionUpstream})
	assert.True(t, errors.As(err, &iv))
	err = dh.CreateGemPortCtp(ctx, 1, GemPortCtpData{PortID: 3, Direction: 0})
	assert.True(t, errors.As(err, &iv))
	assert.Equal(t, 0, sim.Calls(fapi.OpCreateGemPort))

	var nf *adperrors.ErrNotFound
	err = dh.UpdateGemPortCtp(ctx, 1, GemPortCtpData{PortID: 3, Direction: cmn.GemDirectionUpstream})
	assert.True(t, errors.As(err, &nf))

	// without a T-CONT the port is created without alloc ID
	require.NoError(t, dh.CreateGemPortCtp(ctx, 1, GemPortCtpData{PortID: 3, TContPointer: 0x8009,
		Direction: cmn.GemDirectionDownstream}))
	cfg, ok := sim.GemPort(3)
	require.True(t, ok)
	assert.False(t, cfg.AllocValid)

	sim.InjectError(fapi.OpCreateGemPort, fapi.StatusMemErr)
	err = dh.CreateGemPortCtp(ctx, 2, GemPortCtpData{PortID: 4, Direction: cmn.GemDirectionDownstream})
	require.Error(t, err)
	_, err = dh.GetGemPortPm(ctx, 2)
	assert.True(t, errors.As(err, &nf))
}

func TestTwdmSystemProfile(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeNgpon2Up10G)

	prof := twdm.Profile{
		ChannelPartitionIndex:       2,
		ChannelPartitionWaiverTimer: 8000,
		LodsReinitTimer:             800,
		LodsProtectionTimer:         16000,
		DsTuningTimer:               1600,
		UsTuningTimer:               2400,
	}
	require.NoError(t, dh.UpdateTwdmSystemProfile(ctx, 0, prof))
	got, err := dh.GetTwdmSystemProfile(ctx, 0)
	require.NoError(t, err)
	prof.TotalChannelNumber = 4
	assert.Equal(t, prof, got)

	// 50 ms is below the configured tuning floor
	calls := sim.Calls(fapi.OpSetTimeoutConfig)
	low := prof
	low.DsTuningTimer = 400
	err = dh.UpdateTwdmSystemProfile(ctx, 0, low)
	assert.Equal(t, me.ParameterError, adperrors.ResultCode(err))
	assert.Equal(t, calls, sim.Calls(fapi.OpSetTimeoutConfig))
}

func TestTwdmSystemProfileUnsupportedMode(t *testing.T) {
	dh, _, _ := newTestHandler(t, fapi.ModeXgspon)
	_, err := dh.GetTwdmSystemProfile(context.Background(), 0)
	var um *adperrors.ErrUnsupportedMode
	assert.True(t, errors.As(err, &um))
	assert.Equal(t, me.NotSupported, adperrors.ResultCode(err))
}

func TestPmCounters(t *testing.T) {
	ctx := context.Background()
	dh, sim, _ := newTestHandler(t, fapi.ModeXgspon)

	sim.SetFecCounters(fapi.FecCounters{CorrectedBytes: 10, TotalCodewords: 1 << 35, FecSeconds: 70000})
	attrs, err := dh.GetFecPm(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), attrs[fecPmCorrectedBytes])
	assert.Equal(t, uint32(math.MaxUint32), attrs[fecPmTotalCodeWords])
	assert.Equal(t, uint16(math.MaxUint16), attrs[fecPmFecSeconds])

	sim.SetXgtcCounters(fapi.XgtcCounters{TxXgemFrames: 42})
	attrs, err = dh.GetXgtcPm(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), attrs[xgtcPmTransmittedXgemFrames])

	sim.InjectError(fapi.OpGetFecCounters, fapi.StatusNotSupported)
	_, err = dh.GetFecPm(ctx, 0)
	assert.Equal(t, me.NotSupported, adperrors.ResultCode(err))
}

func TestXgtcPmUnsupportedInGpon(t *testing.T) {
	dh, _, _ := newTestHandler(t, fapi.ModeGpon)
	_, err := dh.GetXgtcPm(context.Background(), 0)
	var um *adperrors.ErrUnsupportedMode
	assert.True(t, errors.As(err, &um))
}
