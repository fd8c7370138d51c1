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
	"sort"
	"sync"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/almgr"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/devdb"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/metrics"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/oltvendor"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/twdm"
)

// DeviceConfig is the configuration snapshot a device handler works with
type DeviceConfig struct {
	// optical thresholds selected by the OMCI "use default" encodings, in dBm
	RxLowerThresholdDbm int32
	RxUpperThresholdDbm int32
	TxLowerThresholdDbm int32
	TxUpperThresholdDbm int32
	// TodOffsetPs is added to the computed time of day correction
	TodOffsetPs int64
	// TwdmTuningFloorMs is the lowest accepted DS/US tuning timer
	TwdmTuningFloorMs uint32
	// OltInteropMask is handed to the hardware together with the OLT vendor
	OltInteropMask     uint32
	AlarmCheckInterval time.Duration
}

type oltGState struct {
	vendor      oltvendor.Vendor
	vendorID    []byte
	equipmentID []byte
	version     []byte
}

// DeviceHandler is the adapter context of one device. Every entry point holds
// mutexCtx for its full duration; the ANI-G alarm states nest inside it.
type DeviceHandler struct {
	DeviceID string

	client        fapi.Client
	config        DeviceConfig
	caps          fapi.Capabilities
	alarmNotifier cmn.AlarmNotifier
	metrics       *metrics.Collector

	mutexCtx         sync.Mutex
	meLifecycles     map[meKey]*meLifecycle
	pGemPortMap      *devdb.IDMap
	pAllocIDMap      *devdb.IDMap
	gemPortCtps      map[uint16]GemPortCtpData
	aniGAlarmStates  map[uint16]*almgr.AniGAlarmState
	aniGAlarmChecker map[uint16]*almgr.Checker
	oltG             oltGState
	pTwdmPolicy      *twdm.Policy
}

//newDeviceHandler creates a new device handler
func newDeviceHandler(ctx context.Context, deviceID string, client fapi.Client, caps fapi.Capabilities,
	cfg DeviceConfig, store cmn.ConfigStore, notifier cmn.AlarmNotifier, collector *metrics.Collector) *DeviceHandler {
	var dh DeviceHandler
	dh.DeviceID = deviceID
	dh.client = client
	dh.config = cfg
	dh.caps = caps
	dh.alarmNotifier = notifier
	dh.metrics = collector
	dh.meLifecycles = make(map[meKey]*meLifecycle)
	dh.pGemPortMap = devdb.NewIDMap("gem-port", caps.GemPortCapacity)
	dh.pAllocIDMap = devdb.NewIDMap("alloc-id", caps.AllocIDCapacity)
	dh.gemPortCtps = make(map[uint16]GemPortCtpData)
	dh.aniGAlarmStates = make(map[uint16]*almgr.AniGAlarmState)
	dh.aniGAlarmChecker = make(map[uint16]*almgr.Checker)
	dh.oltG.vendor = oltvendor.Unknown
	dh.pTwdmPolicy = twdm.NewPolicy(client, store, cfg.TwdmTuningFloorMs, caps.TwdmChannelMask, caps.Mode)
	logger.Debugw(ctx, "device-handler-created", log.Fields{"device-id": deviceID, "mode": caps.Mode.String(),
		"gem-ports": caps.GemPortCapacity, "alloc-ids": caps.AllocIDCapacity})
	return &dh
}

// GetDeviceID returns the device ID
func (dh *DeviceHandler) GetDeviceID() string {
	return dh.DeviceID
}

// GetPonMode returns the PON mode read at attach
func (dh *DeviceHandler) GetPonMode() fapi.PonMode {
	return dh.caps.Mode
}

// observe must be deferred first in each entry point so that it runs after the context lock is released
func (dh *DeviceHandler) observe(ctx context.Context, classID me.ClassID, instID uint16, op cmn.MeOperation,
	start time.Time, pErr *error) {
	err := *pErr
	dh.metrics.ObserveOperation(classID, string(op), err, time.Since(start))
	if err != nil {
		logger.Warnw(ctx, "me-operation-failed", log.Fields{"device-id": dh.DeviceID, "class-id": classID,
			"instance-id": instID, "op": op, "result": adperrors.ResultCode(err), "err": err})
	}
}

// lifecycle returns the existing lifecycle of an ME instance, nil if absent
func (dh *DeviceHandler) lifecycle(classID me.ClassID, instID uint16) *meLifecycle {
	return dh.meLifecycles[meKey{classID: classID, instID: instID}]
}

// registerMe must be called with mutexCtx held
func (dh *DeviceHandler) registerMe(ctx context.Context, classID me.ClassID, instID uint16) *meLifecycle {
	key := meKey{classID: classID, instID: instID}
	if ml, exist := dh.meLifecycles[key]; exist {
		return ml
	}
	ml := newMeLifecycle(ctx, dh.DeviceID, key)
	ml.fire(ctx, meEvCreate)
	dh.meLifecycles[key] = ml
	return ml
}

// deregisterMe must be called with mutexCtx held
func (dh *DeviceHandler) deregisterMe(ctx context.Context, classID me.ClassID, instID uint16) {
	key := meKey{classID: classID, instID: instID}
	if ml, exist := dh.meLifecycles[key]; exist {
		ml.fire(ctx, meEvDestroy)
		delete(dh.meLifecycles, key)
	}
}

func (dh *DeviceHandler) errMeNotFound(classID me.ClassID, instID uint16) error {
	return adperrors.NewErrNotFound("managed-entity", log.Fields{"device-id": dh.DeviceID, "class-id": classID,
		"instance-id": instID}, nil)
}

// sortedAniGInstances must be called with mutexCtx held
func (dh *DeviceHandler) sortedAniGInstances() []uint16 {
	ids := make([]uint16, 0, len(dh.aniGAlarmStates))
	for id := range dh.aniGAlarmStates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// stop ends all background activities of the device
func (dh *DeviceHandler) stop(ctx context.Context) {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	for instID, checker := range dh.aniGAlarmChecker {
		checker.Stop(ctx)
		delete(dh.aniGAlarmChecker, instID)
	}
	logger.Debugw(ctx, "device-handler-stopped", log.Fields{"device-id": dh.DeviceID})
}

// firstAniG returns the lowest ANI-G instance ID
func (dh *DeviceHandler) firstAniG() (uint16, bool) {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	ids := dh.sortedAniGInstances()
	if len(ids) == 0 {
		return 0, false
	}
	return ids[0], true
}
