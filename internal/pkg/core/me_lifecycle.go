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
	"fmt"

	"github.com/looplab/fsm"
	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
)

// events of the ME lifecycle FSM
const (
	meEvCreate  = "meEvCreate"
	meEvUpdate  = "meEvUpdate"
	meEvDestroy = "meEvDestroy"
)

// states of the ME lifecycle FSM
const (
	meStAbsent    = "meStAbsent"
	meStCreated   = "meStCreated"
	meStUpdated   = "meStUpdated"
	meStDestroyed = "meStDestroyed"
)

type meKey struct {
	classID me.ClassID
	instID  uint16
}

// meLifecycle tracks one ME instance through absent -> created -> updated* -> destroyed
type meLifecycle struct {
	key       meKey
	pAdaptFsm *cmn.AdapterFsm
}

func newMeLifecycle(ctx context.Context, deviceID string, key meKey) *meLifecycle {
	ml := &meLifecycle{key: key}
	fsmName := fmt.Sprintf("ME-%d-%d", key.classID, key.instID)
	ml.pAdaptFsm = cmn.NewAdapterFsm(fsmName, deviceID)
	ml.pAdaptFsm.PFsm = fsm.NewFSM(
		meStAbsent,
		fsm.Events{
			{Name: meEvCreate, Src: []string{meStAbsent}, Dst: meStCreated},
			{Name: meEvUpdate, Src: []string{meStCreated}, Dst: meStUpdated},
			{Name: meEvDestroy, Src: []string{meStCreated, meStUpdated}, Dst: meStDestroyed},
		},
		fsm.Callbacks{
			"enter_state": func(e *fsm.Event) { ml.pAdaptFsm.LogFsmStateChange(ctx, e) },
		},
	)
	return ml
}

func (ml *meLifecycle) fire(ctx context.Context, event string) {
	if err := ml.pAdaptFsm.PFsm.Event(event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return
		}
		logger.Debugw(ctx, "me-lifecycle-event-ignored", log.Fields{"class-id": ml.key.classID,
			"instance-id": ml.key.instID, "event": event, "state": ml.pAdaptFsm.PFsm.Current(), "err": err})
	}
}

func (ml *meLifecycle) state() string {
	return ml.pAdaptFsm.PFsm.Current()
}

// markUpdated records an update; further updates stay in the updated state
func (ml *meLifecycle) markUpdated(ctx context.Context) {
	if ml.pAdaptFsm.PFsm.Is(meStCreated) {
		ml.fire(ctx, meEvUpdate)
	}
}
