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

package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwosComplementToSignedInt16(t *testing.T) {
	tests := []struct {
		in   uint16
		want int16
	}{
		{0x0000, 0},
		{0x0001, 1},
		{0x7FFF, 32767},
		{0xFFFF, -1},
		{0x8001, -32767},
		{0xD7A9, -10327},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TwosComplementToSignedInt16(tt.in), "input 0x%04x", tt.in)
		assert.Equal(t, tt.in, SignedInt16ToTwosComplement(tt.want))
	}
}

func TestCtxGuard(t *testing.T) {
	var mu sync.Mutex
	g := LockCtx(&mu)
	assert.True(t, g.Held())
	assert.False(t, mu.TryLock())

	g.Unlock()
	assert.False(t, g.Held())
	g.Unlock() // second release must not panic

	assert.True(t, mu.TryLock())
	mu.Unlock()

	var nilGuard *CtxGuard
	assert.False(t, nilGuard.Held())
}
