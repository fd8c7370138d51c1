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

//Package common provides global definitions
package common

import (
	"context"
	"sync"

	"github.com/looplab/fsm"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
)

// TwosComplementToSignedInt16 convert 2s complement to signed int16
func TwosComplementToSignedInt16(val uint16) int16 {
	var uint16MsbMask uint16 = 0x8000
	if val&uint16MsbMask == uint16MsbMask {
		return int16(^val+1) * -1
	}

	return int16(val)
}

// SignedInt16ToTwosComplement is the inverse of TwosComplementToSignedInt16, used for OMCI attribute encoding
func SignedInt16ToTwosComplement(val int16) uint16 {
	return uint16(val)
}

////////////////////////////////////////////////////////////////////////

// AdapterFsm - FSM details including name and device
type AdapterFsm struct {
	fsmName  string
	deviceID string
	PFsm     *fsm.FSM
}

//NewAdapterFsm - FSM details including event and device.
func NewAdapterFsm(aName string, aDeviceID string) *AdapterFsm {
	aFsm := &AdapterFsm{
		fsmName:  aName,
		deviceID: aDeviceID,
	}
	return aFsm
}

// LogFsmStateChange logs FSM state changes
func (oo *AdapterFsm) LogFsmStateChange(ctx context.Context, e *fsm.Event) {
	logger.Debugw(ctx, "FSM state change", log.Fields{"device-id": oo.deviceID, "FSM name": oo.fsmName,
		"event name": string(e.Event), "src state": string(e.Src), "dst state": string(e.Dst)})
}

////////////////////////////////////////////////////////////////////////

// CtxGuard is the proof that a device context lock is held.
// ME-local locks are only obtainable by presenting a held guard, which fixes
// the lock order to context-then-ME-local.
type CtxGuard struct {
	mu   *sync.Mutex
	held bool
}

// LockCtx acquires mu and returns the guard for it
func LockCtx(mu *sync.Mutex) *CtxGuard {
	mu.Lock()
	return &CtxGuard{mu: mu, held: true}
}

// Held reports whether the guard still owns the context lock
func (g *CtxGuard) Held() bool {
	return g != nil && g.held
}

// Unlock releases the context lock; further calls are no-ops
func (g *CtxGuard) Unlock() {
	if g == nil || !g.held {
		return
	}
	g.held = false
	g.mu.Unlock()
}
