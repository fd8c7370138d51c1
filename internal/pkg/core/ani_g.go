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
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/almgr"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-protos/v5/go/extension"
)

// ANI-G attribute names
const (
	aniGOpticalSignalLevel          = "OpticalSignalLevel"
	aniGLowerOpticalThreshold       = "LowerOpticalThreshold"
	aniGUpperOpticalThreshold       = "UpperOpticalThreshold"
	aniGTransmitOpticalLevel        = "TransmitOpticalLevel"
	aniGLowerTransmitPowerThreshold = "LowerTransmitPowerThreshold"
	aniGUpperTransmitPowerThreshold = "UpperTransmitPowerThreshold"
)

// AniGData holds the writable ANI-G threshold attributes as sent by the OLT
type AniGData struct {
	LowerOpticalThreshold       uint8
	UpperOpticalThreshold       uint8
	LowerTransmitPowerThreshold uint8
	UpperTransmitPowerThreshold uint8
}

// AniGTestResult is the optical line supervision test result in OMCI units
type AniGTestResult struct {
	// 20 mV
	PowerFeedVoltage uint16
	// dBuW, 0.002 dB
	ReceivedOpticalPower int16
	MeanOpticalLaunch    int16
	// 2 uA
	LaserBiasCurrent uint16
	// 1/256 degree C
	Temperature int16
}

func (dh *DeviceHandler) defaultThresholds() almgr.Thresholds {
	return almgr.Thresholds{
		LowerRx: conv.DecodeRxThreshold(cmn.RxThresholdDefault).Resolve(dh.config.RxLowerThresholdDbm),
		UpperRx: conv.DecodeRxThreshold(cmn.RxThresholdDefault).Resolve(dh.config.RxUpperThresholdDbm),
		LowerTx: conv.DecodeTxThreshold(cmn.TxThresholdDefault).Resolve(dh.config.TxLowerThresholdDbm),
		UpperTx: conv.DecodeTxThreshold(cmn.TxThresholdDefault).Resolve(dh.config.TxUpperThresholdDbm),
	}
}

// createAniG must be called with mutexCtx held
func (dh *DeviceHandler) createAniG(ctx context.Context, instID uint16) *meLifecycle {
	if ml := dh.lifecycle(cmn.AniGClassID, instID); ml != nil {
		return ml
	}
	ml := dh.registerMe(ctx, cmn.AniGClassID, instID)
	dh.aniGAlarmStates[instID] = almgr.NewAniGAlarmState(instID, dh.defaultThresholds())
	checker := almgr.NewChecker(dh.DeviceID, instID, dh.config.AlarmCheckInterval, func(ctx context.Context) error {
		return dh.RecheckAniGAlarms(ctx, instID)
	})
	dh.aniGAlarmChecker[instID] = checker
	// the check outlives the request that created the instance
	checker.Start(log.WithSpanFromContext(context.Background(), ctx))
	return ml
}

// CreateAniG registers the ANI-G instance and starts its alarm check; repeated creates are no-ops
func (dh *DeviceHandler) CreateAniG(ctx context.Context, instID uint16) (err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpCreate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	logger.Debugw(ctx, "create-ani-g", log.Fields{"device-id": dh.DeviceID, "instance-id": instID})
	dh.createAniG(ctx, instID)
	return nil
}

// UpdateAniG applies the optical thresholds to the hardware and, once accepted, to the alarm state
func (dh *DeviceHandler) UpdateAniG(ctx context.Context, instID uint16, data AniGData) (err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpUpdate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	ml := dh.createAniG(ctx, instID)
	thresholds := almgr.Thresholds{
		LowerRx: conv.DecodeRxThreshold(data.LowerOpticalThreshold).Resolve(dh.config.RxLowerThresholdDbm),
		UpperRx: conv.DecodeRxThreshold(data.UpperOpticalThreshold).Resolve(dh.config.RxUpperThresholdDbm),
		LowerTx: conv.DecodeTxThreshold(data.LowerTransmitPowerThreshold).Resolve(dh.config.TxLowerThresholdDbm),
		UpperTx: conv.DecodeTxThreshold(data.UpperTransmitPowerThreshold).Resolve(dh.config.TxUpperThresholdDbm),
	}
	logger.Debugw(ctx, "update-ani-g", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
		"data": data, "thresholds": thresholds})
	if err := dh.client.SetAlarmThresholds(ctx, &fapi.OpticalThresholds{
		LowerRx: thresholds.LowerRx,
		UpperRx: thresholds.UpperRx,
		LowerTx: thresholds.LowerTx,
		UpperTx: thresholds.UpperTx,
	}); err != nil {
		return adperrors.FromFapi(fapi.OpSetAlarmThresholds, log.Fields{"device-id": dh.DeviceID, "instance-id": instID}, err)
	}
	if err := dh.aniGAlarmStates[instID].Access(g, func(d *almgr.AniGAlarmData) {
		d.Thresholds = thresholds
		d.Raw = almgr.RawThresholds{
			LowerOptical: data.LowerOpticalThreshold,
			UpperOptical: data.UpperOpticalThreshold,
			LowerTx:      data.LowerTransmitPowerThreshold,
			UpperTx:      data.UpperTransmitPowerThreshold,
		}
		d.UpdateStatus = true
	}); err != nil {
		return err
	}
	ml.markUpdated(ctx)
	dh.aniGAlarmChecker[instID].Trigger()
	return nil
}

// DestroyAniG stops the alarm check and forgets the instance; destroying an absent instance succeeds
func (dh *DeviceHandler) DestroyAniG(ctx context.Context, instID uint16) (err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpDestroy, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	logger.Debugw(ctx, "destroy-ani-g", log.Fields{"device-id": dh.DeviceID, "instance-id": instID})
	if checker, exist := dh.aniGAlarmChecker[instID]; exist {
		checker.Stop(ctx)
		delete(dh.aniGAlarmChecker, instID)
	}
	delete(dh.aniGAlarmStates, instID)
	dh.deregisterMe(ctx, cmn.AniGClassID, instID)
	return nil
}

// readOptical returns the optical status, substituting the documented sentinels if the hardware read fails
func (dh *DeviceHandler) readOptical(ctx context.Context) fapi.OpticalStatus {
	st, err := dh.client.GetOpticalStatus(ctx)
	if err != nil {
		logger.Warnw(ctx, "optical status unavailable - reporting sentinels", log.Fields{"device-id": dh.DeviceID,
			"err": adperrors.FromFapi(fapi.OpGetOpticalStatus, nil, err)})
		return fapi.OpticalStatus{RxPower: conv.PowerZero, TxPower: conv.PowerZero}
	}
	return *st
}

// GetAniG returns the optical levels and the threshold attributes as last written
func (dh *DeviceHandler) GetAniG(ctx context.Context, instID uint16) (attrs me.AttributeValueMap, err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	state, exist := dh.aniGAlarmStates[instID]
	if !exist {
		return nil, dh.errMeNotFound(cmn.AniGClassID, instID)
	}
	data, err := state.Snapshot(g)
	if err != nil {
		return nil, err
	}
	st := dh.readOptical(ctx)
	return me.AttributeValueMap{
		aniGOpticalSignalLevel:          cmn.SignedInt16ToTwosComplement(conv.DbmToOmci(st.RxPower)),
		aniGTransmitOpticalLevel:        cmn.SignedInt16ToTwosComplement(conv.DbmToOmci(st.TxPower)),
		aniGLowerOpticalThreshold:       data.Raw.LowerOptical,
		aniGUpperOpticalThreshold:       data.Raw.UpperOptical,
		aniGLowerTransmitPowerThreshold: data.Raw.LowerTx,
		aniGUpperTransmitPowerThreshold: data.Raw.UpperTx,
	}, nil
}

func aniGTestResult(st fapi.OpticalStatus) AniGTestResult {
	return AniGTestResult{
		PowerFeedVoltage:     conv.VoltageToOmci(st.Voltage),
		ReceivedOpticalPower: conv.DbmToDbu(st.RxPower),
		MeanOpticalLaunch:    conv.DbmToDbu(st.TxPower),
		LaserBiasCurrent:     conv.BiasToOmci(st.Bias),
		Temperature:          conv.TemperatureToOmci(st.Temperature),
	}
}

// TestAniG runs the optical line supervision test. A failed hardware read is
// reported with zero values and the zero power sentinel, not as an error.
func (dh *DeviceHandler) TestAniG(ctx context.Context, instID uint16) (res AniGTestResult, err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpTest, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if dh.lifecycle(cmn.AniGClassID, instID) == nil {
		return AniGTestResult{}, dh.errMeNotFound(cmn.AniGClassID, instID)
	}
	return aniGTestResult(dh.readOptical(ctx)), nil
}

// GetAniGOpticalInfo returns the optical status in the units of the voltha extension API
func (dh *DeviceHandler) GetAniGOpticalInfo(ctx context.Context, instID uint16) (info *extension.GetOnuPonOpticalInfoResponse, err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if dh.lifecycle(cmn.AniGClassID, instID) == nil {
		return nil, dh.errMeNotFound(cmn.AniGClassID, instID)
	}
	st, err := dh.client.GetOpticalStatus(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetOpticalStatus, log.Fields{"device-id": dh.DeviceID}, err)
	}
	res := aniGTestResult(*st)
	return &extension.GetOnuPonOpticalInfoResponse{
		// OMCI representation is Volts, 20mV resolution
		PowerFeedVoltage: float32(res.PowerFeedVoltage) * 0.02,
		// OMCI representation is Decibel-microwatts, 0.002dB resolution.
		// Subtract 30 to convert the unit from dBu to dBm (as expected by proto interface)
		ReceivedOpticalPower:   conv.DbmToFloat(res.ReceivedOpticalPower) - 30,
		MeanOpticalLaunchPower: conv.DbmToFloat(res.MeanOpticalLaunch) - 30,
		// OMCI representation is unsigned int, 2uA resolution
		// units of gRPC interface is mA.
		LaserBiasCurrent: float32(res.LaserBiasCurrent) * 0.000002 * 1000,
		// OMCI representation is 2s complement, 1/256 degree Celsius resolution
		Temperature: float32(res.Temperature) / 256.0,
	}, nil
}

// RecheckAniGAlarms evaluates the ANI-G alarms against the current optical levels
// and reports the changes after the context lock was released
func (dh *DeviceHandler) RecheckAniGAlarms(ctx context.Context, instID uint16) (err error) {
	defer dh.observe(ctx, cmn.AniGClassID, instID, cmn.OpRecheck, time.Now(), &err)
	changes, err := dh.recheckAniGAlarms(ctx, instID)
	if err != nil {
		return err
	}
	if dh.alarmNotifier == nil {
		return nil
	}
	for _, c := range changes {
		dh.alarmNotifier.SendAlarm(ctx, cmn.AniGClassID, instID, c.AlarmNo, c.Active)
	}
	return nil
}

func (dh *DeviceHandler) recheckAniGAlarms(ctx context.Context, instID uint16) ([]almgr.AlarmChange, error) {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	state, exist := dh.aniGAlarmStates[instID]
	if !exist {
		return nil, dh.errMeNotFound(cmn.AniGClassID, instID)
	}
	st, err := dh.client.GetOpticalStatus(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetOpticalStatus, log.Fields{"device-id": dh.DeviceID, "instance-id": instID}, err)
	}
	var changes []almgr.AlarmChange
	if err := state.Access(g, func(d *almgr.AniGAlarmData) {
		changes = d.Evaluate(st.RxPower, st.TxPower)
	}); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		logger.Infow(ctx, "ani-g-alarms-changed", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
			"changes": changes})
	}
	return changes, nil
}
