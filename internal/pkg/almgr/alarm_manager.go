/*
 * Copyright 2021-2024 Open Networking Foundation (ONF) and the ONF Contributors
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

// Package almgr provides the utilities for managing alarm notifications
package almgr

import (
	"context"
	"fmt"
	"sync"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/events/eventif"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-protos/v5/go/voltha"
)

// Thresholds are the active ANI-G optical thresholds in 0.002 dB/LSB
type Thresholds struct {
	LowerRx int32
	UpperRx int32
	LowerTx int32
	UpperTx int32
}

// RawThresholds are the ANI-G threshold attributes as last written by the OLT
type RawThresholds struct {
	LowerOptical uint8
	UpperOptical uint8
	LowerTx      uint8
	UpperTx      uint8
}

// AlarmChange is a raise or clear of one ANI-G alarm
type AlarmChange struct {
	AlarmNo uint8
	Active  bool
}

// AniGAlarmData is the per ANI-G alarm state
type AniGAlarmData struct {
	Thresholds Thresholds
	Raw        RawThresholds
	LastRx     int16
	LastTx     int16
	// Active holds bit n for each raised alarm number n
	Active uint8
	// UpdateStatus marks a pending re-evaluation, set by threshold writes and
	// recheck requests, consumed by the alarm check
	UpdateStatus bool
}

// AniGAlarmState guards the alarm data of one ANI-G instance.
// Its lock is nested inside the device context lock and can only be taken
// by presenting the guard of the held context lock.
type AniGAlarmState struct {
	mutex  sync.Mutex
	instID uint16
	data   AniGAlarmData
}

// NewAniGAlarmState returns the alarm state of a new ANI-G instance with its thresholds
// set to the given defaults (0.002 dB/LSB) and the default request recorded in the raw values
func NewAniGAlarmState(instID uint16, defaults Thresholds) *AniGAlarmState {
	return &AniGAlarmState{
		instID: instID,
		data: AniGAlarmData{
			Thresholds: defaults,
			Raw: RawThresholds{
				LowerOptical: cmn.RxThresholdDefault,
				UpperOptical: cmn.RxThresholdDefault,
				LowerTx:      cmn.TxThresholdDefault,
				UpperTx:      cmn.TxThresholdDefault,
			},
			LastRx:       conv.PowerZero,
			LastTx:       conv.PowerZero,
			UpdateStatus: true,
		},
	}
}

// InstanceID returns the ANI-G ME instance the state belongs to
func (s *AniGAlarmState) InstanceID() uint16 {
	return s.instID
}

// Access runs fn with the alarm data locked
func (s *AniGAlarmState) Access(g *cmn.CtxGuard, fn func(d *AniGAlarmData)) error {
	if !g.Held() {
		return adperrors.NewErrDriver("context-lock-not-held", log.Fields{"instance-id": s.instID}, nil)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	fn(&s.data)
	return nil
}

// Snapshot returns a copy of the alarm data
func (s *AniGAlarmState) Snapshot(g *cmn.CtxGuard) (AniGAlarmData, error) {
	var d AniGAlarmData
	err := s.Access(g, func(data *AniGAlarmData) { d = *data })
	return d, err
}

func (d *AniGAlarmData) wanted(rx, tx int16) uint8 {
	var want uint8
	set := func(alarmNo uint8, on bool) {
		if on {
			want |= 1 << alarmNo
		}
	}
	set(cmn.AniGAlarmLowRxOptical, rx == conv.PowerZero || int32(rx) < d.Thresholds.LowerRx)
	set(cmn.AniGAlarmHighRxOptical, rx != conv.PowerZero && int32(rx) > d.Thresholds.UpperRx)
	set(cmn.AniGAlarmLowTxOptical, tx == conv.PowerZero || int32(tx) < d.Thresholds.LowerTx)
	set(cmn.AniGAlarmHighTxOptical, tx != conv.PowerZero && int32(tx) > d.Thresholds.UpperTx)
	return want
}

// Evaluate compares the optical levels (0.002 dBm/LSB) against the thresholds,
// records them and returns the alarms whose state changed. UpdateStatus is cleared.
func (d *AniGAlarmData) Evaluate(rx, tx int16) []AlarmChange {
	want := d.wanted(rx, tx)
	var changes []AlarmChange
	for _, alarmNo := range []uint8{cmn.AniGAlarmLowRxOptical, cmn.AniGAlarmHighRxOptical,
		cmn.AniGAlarmLowTxOptical, cmn.AniGAlarmHighTxOptical} {
		bit := uint8(1) << alarmNo
		if want&bit != d.Active&bit {
			changes = append(changes, AlarmChange{AlarmNo: alarmNo, Active: want&bit != 0})
		}
	}
	d.Active = want
	d.LastRx = rx
	d.LastTx = tx
	d.UpdateStatus = false
	return changes
}

// IsActive reports whether the given alarm number is raised
func (d *AniGAlarmData) IsActive(alarmNo uint8) bool {
	return d.Active&(1<<alarmNo) != 0
}

type aniGEvent struct {
	EventName        string
	EventDescription string
	EventCategory    eventif.EventCategory
	EventSubCategory eventif.EventSubCategory
}

var aniGEventsList = map[uint8]aniGEvent{
	cmn.AniGAlarmLowRxOptical: {EventName: "ONU_LOW_RX_OPTICAL",
		EventCategory: voltha.EventCategory_COMMUNICATION, EventSubCategory: voltha.EventSubCategory_ONU, EventDescription: "onu low rx optical power"},
	cmn.AniGAlarmHighRxOptical: {EventName: "ONU_HIGH_RX_OPTICAL",
		EventCategory: voltha.EventCategory_COMMUNICATION, EventSubCategory: voltha.EventSubCategory_ONU, EventDescription: "onu high rx optical power"},
	cmn.AniGAlarmLowTxOptical: {EventName: "ONU_LOW_TX_OPTICAL",
		EventCategory: voltha.EventCategory_COMMUNICATION, EventSubCategory: voltha.EventSubCategory_ONU, EventDescription: "onu low tx optical power"},
	cmn.AniGAlarmHighTxOptical: {EventName: "ONU_HIGH_TX_OPTICAL",
		EventCategory: voltha.EventCategory_COMMUNICATION, EventSubCategory: voltha.EventSubCategory_ONU, EventDescription: "onu high tx optical power"},
}

// DeviceEventSender is the part of eventif.EventProxy used for alarm events
type DeviceEventSender interface {
	SendDeviceEvent(ctx context.Context, deviceEvent *voltha.DeviceEvent, category eventif.EventCategory,
		subCategory eventif.EventSubCategory, raisedTs int64) error
}

// EventNotifier forwards ANI-G alarms as voltha device events.
// Without a sender the events are only logged.
type EventNotifier struct {
	deviceID string
	sender   DeviceEventSender
}

var _ cmn.AlarmNotifier = (*EventNotifier)(nil)

// NewEventNotifier returns an alarm notifier for the given device
func NewEventNotifier(deviceID string, sender DeviceEventSender) *EventNotifier {
	return &EventNotifier{deviceID: deviceID, sender: sender}
}

// SendAlarm - AlarmNotifier implementation
func (en *EventNotifier) SendAlarm(ctx context.Context, classID me.ClassID, instID uint16, alarmNo uint8, active bool) {
	eventDetails, ok := aniGEventsList[alarmNo]
	if classID != me.AniGClassID || !ok {
		logger.Warnw(ctx, "event-details-for-alarm-not-found", log.Fields{"device-id": en.deviceID,
			"class-id": classID, "alarm-no": alarmNo})
		return
	}
	suffixDesc := "Raised"
	clearOrRaiseEvent := "RAISE_EVENT"
	if !active {
		suffixDesc = "Cleared"
		clearOrRaiseEvent = "CLEAR_EVENT"
	}
	deviceEvent := &voltha.DeviceEvent{
		ResourceId:      en.deviceID,
		DeviceEventName: fmt.Sprintf("%s_%s", eventDetails.EventName, clearOrRaiseEvent),
		Description: fmt.Sprintf("%s Event - %s - %s", eventDetails.EventDescription, eventDetails.EventName,
			suffixDesc),
		Context: map[string]string{
			"onu-id":      en.deviceID,
			"instance-id": fmt.Sprintf("%d", instID),
		},
	}
	logger.Infow(ctx, "ani-g-alarm", log.Fields{"device-id": en.deviceID, "event": deviceEvent.DeviceEventName,
		"instance-id": instID})
	if en.sender == nil {
		return
	}
	if err := en.sender.SendDeviceEvent(ctx, deviceEvent, eventDetails.EventCategory, eventDetails.EventSubCategory,
		time.Now().Unix()); err != nil {
		logger.Warnw(ctx, "sending-alarm-event-failed", log.Fields{"device-id": en.deviceID, "err": err})
	}
}

// Checker runs the periodic alarm check of one ANI-G instance
type Checker struct {
	deviceID          string
	instID            uint16
	interval          time.Duration
	recheck           func(ctx context.Context) error
	mutex             sync.Mutex
	running           bool
	StopAlarmCheck    chan struct{}
	triggerAlarmCheck chan struct{}
	done              chan struct{}
}

// NewChecker returns a stopped checker calling recheck every interval and on Trigger.
// An interval of zero disables the periodic check.
func NewChecker(deviceID string, instID uint16, interval time.Duration, recheck func(ctx context.Context) error) *Checker {
	return &Checker{
		deviceID:          deviceID,
		instID:            instID,
		interval:          interval,
		recheck:           recheck,
		triggerAlarmCheck: make(chan struct{}, 1),
	}
}

// Start launches the check routine, a running checker is left untouched
func (c *Checker) Start(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.StopAlarmCheck = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(ctx, c.StopAlarmCheck, c.done)
}

// Stop ends the check routine without waiting for it; safe to call repeatedly.
// A recheck already in progress completes.
func (c *Checker) Stop(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.StopAlarmCheck)
	logger.Debugw(ctx, "stopping-alarm-check", log.Fields{"device-id": c.deviceID, "instance-id": c.instID})
}

// Done is closed once the check routine of the last Start has exited
func (c *Checker) Done() <-chan struct{} {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.done
}

// Trigger requests an immediate check, requests are coalesced
func (c *Checker) Trigger() {
	select {
	case c.triggerAlarmCheck <- struct{}{}:
	default:
	}
}

func (c *Checker) run(ctx context.Context, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	logger.Debugw(ctx, "start-alarm-check", log.Fields{"device-id": c.deviceID, "instance-id": c.instID,
		"interval": c.interval})
	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-stop:
			logger.Infow(ctx, "alarm-check-stopped", log.Fields{"device-id": c.deviceID, "instance-id": c.instID})
			return
		case <-ctx.Done():
			c.mutex.Lock()
			if c.StopAlarmCheck == stop {
				c.running = false
			}
			c.mutex.Unlock()
			return
		case <-tick:
		case <-c.triggerAlarmCheck:
		}
		// a stop may have raced with the wakeup
		select {
		case <-stop:
			return
		default:
		}
		if err := c.recheck(ctx); err != nil {
			logger.Debugw(ctx, "alarm-check-failed", log.Fields{"device-id": c.deviceID, "instance-id": c.instID,
				"err": err})
		}
	}
}
