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

package almgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/events/eventif"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-protos/v5/go/voltha"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testThresholds = Thresholds{
	LowerRx: -28 * 500,
	UpperRx: -8 * 500,
	LowerTx: 0,
	UpperTx: 5 * 500,
}

func TestAniGAlarmStateRequiresGuard(t *testing.T) {
	st := NewAniGAlarmState(1, testThresholds)

	err := st.Access(nil, func(d *AniGAlarmData) {})
	var de *adperrors.ErrDriver
	require.True(t, errors.As(err, &de))

	var mu sync.Mutex
	g := cmn.LockCtx(&mu)
	d, err := st.Snapshot(g)
	require.NoError(t, err)
	assert.Equal(t, testThresholds, d.Thresholds)
	assert.Equal(t, cmn.RxThresholdDefault, d.Raw.LowerOptical)
	assert.True(t, d.UpdateStatus)
	g.Unlock()

	err = st.Access(g, func(d *AniGAlarmData) {})
	assert.True(t, errors.As(err, &de))
}

func TestEvaluate(t *testing.T) {
	d := AniGAlarmData{Thresholds: testThresholds, UpdateStatus: true}

	// rx -30 dBm, tx 2 dBm
	changes := d.Evaluate(-30*500, 2*500)
	assert.Equal(t, []AlarmChange{{AlarmNo: cmn.AniGAlarmLowRxOptical, Active: true}}, changes)
	assert.True(t, d.IsActive(cmn.AniGAlarmLowRxOptical))
	assert.False(t, d.UpdateStatus)

	// no change on the same levels
	assert.Empty(t, d.Evaluate(-30*500, 2*500))

	// rx high, tx high
	changes = d.Evaluate(-5*500, 6*500)
	assert.Equal(t, []AlarmChange{
		{AlarmNo: cmn.AniGAlarmLowRxOptical, Active: false},
		{AlarmNo: cmn.AniGAlarmHighRxOptical, Active: true},
		{AlarmNo: cmn.AniGAlarmHighTxOptical, Active: true},
	}, changes)
	assert.Equal(t, int16(-5*500), d.LastRx)

	// no light at all
	changes = d.Evaluate(conv.PowerZero, conv.PowerZero)
	assert.Equal(t, []AlarmChange{
		{AlarmNo: cmn.AniGAlarmLowRxOptical, Active: true},
		{AlarmNo: cmn.AniGAlarmHighRxOptical, Active: false},
		{AlarmNo: cmn.AniGAlarmLowTxOptical, Active: true},
		{AlarmNo: cmn.AniGAlarmHighTxOptical, Active: false},
	}, changes)
}

type sentEvent struct {
	event    *voltha.DeviceEvent
	category eventif.EventCategory
}

type fakeSender struct {
	mutex  sync.Mutex
	events []sentEvent
}

func (f *fakeSender) SendDeviceEvent(ctx context.Context, deviceEvent *voltha.DeviceEvent, category eventif.EventCategory,
	subCategory eventif.EventSubCategory, raisedTs int64) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.events = append(f.events, sentEvent{event: deviceEvent, category: category})
	return nil
}

func TestEventNotifier(t *testing.T) {
	ctx := context.Background()
	sender := &fakeSender{}
	en := NewEventNotifier("onu-1", sender)

	en.SendAlarm(ctx, me.AniGClassID, 1, cmn.AniGAlarmLowRxOptical, true)
	en.SendAlarm(ctx, me.AniGClassID, 1, cmn.AniGAlarmHighTxOptical, false)
	// unknown alarm numbers are dropped
	en.SendAlarm(ctx, me.AniGClassID, 1, 2, true)
	en.SendAlarm(ctx, me.OnuGClassID, 0, cmn.AniGAlarmLowRxOptical, true)

	require.Len(t, sender.events, 2)
	assert.Equal(t, "ONU_LOW_RX_OPTICAL_RAISE_EVENT", sender.events[0].event.DeviceEventName)
	assert.Equal(t, "onu-1", sender.events[0].event.ResourceId)
	assert.Equal(t, voltha.EventCategory_COMMUNICATION, sender.events[0].category)
	assert.Equal(t, "ONU_HIGH_TX_OPTICAL_CLEAR_EVENT", sender.events[1].event.DeviceEventName)

	// no sender, only logged
	NewEventNotifier("onu-2", nil).SendAlarm(ctx, me.AniGClassID, 1, cmn.AniGAlarmLowRxOptical, true)
}

func TestCheckerTrigger(t *testing.T) {
	ctx := context.Background()
	var count int32
	c := NewChecker("onu-1", 1, 0, func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	c.Start(ctx)
	c.Start(ctx)

	c.Trigger()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 1 }, time.Second, 5*time.Millisecond)

	done := c.Done()
	c.Stop(ctx)
	c.Stop(ctx)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checker did not stop")
	}
	c.Trigger()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestCheckerPeriodic(t *testing.T) {
	ctx := context.Background()
	var count int32
	c := NewChecker("onu-1", 1, 5*time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return errors.New("ignored")
	})
	c.Start(ctx)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) >= 3 }, time.Second, 5*time.Millisecond)
	c.Stop(ctx)
	<-c.Done()
}

func TestCheckerRestartAfterContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var count int32
	c := NewChecker("onu-1", 1, 0, func(ctx context.Context) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	c.Start(ctx)
	done := c.Done()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checker did not end with its context")
	}

	c.Start(context.Background())
	defer c.Stop(context.Background())
	c.Trigger()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&count) == 1 }, time.Second, 5*time.Millisecond)
}
