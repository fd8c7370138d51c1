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

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDbmToDbuFormsAgree(t *testing.T) {
	for v := math.MinInt16; v <= math.MaxInt16; v++ {
		in := int16(v)
		fast := DbmToDbu(in)
		if !assert.Equal(t, DbmToDbuFormula(in), fast, "input %d", in) {
			return
		}
		if in == PowerZero || int64(in)+15000 > math.MaxInt16 {
			continue
		}
		// before requantization the value is v/500 + 30 dB
		assert.InDelta(t, float64(in)/500+30, float64(fast)*0.002, 1e-9, "input %d", in)
	}
}

func TestDbmToDbu(t *testing.T) {
	tests := []struct {
		name string
		in   int16
		want int16
	}{
		{"0 dBm", 0, 15000},
		{"-20.654 dBm", -10327, 4673},
		{"-30 dBm is 0 dBuW", -15000, 0},
		{"zero power sentinel", PowerZero, PowerZero},
		{"clamped", 20000, math.MaxInt16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DbmToDbu(tt.in))
		})
	}
	assert.Equal(t, int16(-10327), DbmToOmci(-10327))
	assert.InDelta(t, -20.654, DbmToFloat(-10327), 1e-4)
}

func TestVoltageToOmciTruncates(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint16
	}{
		{0, 0},
		{199, 0},
		{200, 1},
		{201, 1},
		{399, 1},
		{400, 2},
		{33000, 165},
		{math.MaxUint32, math.MaxUint16},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VoltageToOmci(tt.in), "input %d", tt.in)
	}
}

func TestPassThroughConversions(t *testing.T) {
	assert.Equal(t, int16(-256), TemperatureToOmci(-256))
	assert.Equal(t, uint16(5000), BiasToOmci(5000))
}

func TestSaturate(t *testing.T) {
	assert.Equal(t, uint32(12), SaturateUint32(12))
	assert.Equal(t, uint32(math.MaxUint32), SaturateUint32(math.MaxUint32+1))
	assert.Equal(t, uint16(math.MaxUint16), SaturateUint16(70000))
	assert.Equal(t, uint16(3), SaturateUint16(3))
}

func TestDecodeRxThreshold(t *testing.T) {
	thr := DecodeRxThreshold(0xFF)
	assert.True(t, thr.UseDefault)
	assert.Equal(t, int32(-28*500), thr.Resolve(-28))

	thr = DecodeRxThreshold(56) // -28 dBm
	assert.False(t, thr.UseDefault)
	assert.Equal(t, int32(-14000), thr.Resolve(-8))
	assert.Equal(t, uint8(56), thr.Raw)

	assert.Equal(t, int32(0), DecodeRxThreshold(0).Resolve(-8))
	assert.Equal(t, int32(127*-250), DecodeRxThreshold(0x7F).Resolve(-8))
	// bytes from 0x80 on are negative steps, i.e. levels above 0 dBm
	assert.Equal(t, int32(128*250), DecodeRxThreshold(0x80).Resolve(-8))
	assert.Equal(t, int32(2*250), DecodeRxThreshold(0xFE).Resolve(-8))
}

func TestDecodeTxThreshold(t *testing.T) {
	thr := DecodeTxThreshold(0x81)
	assert.True(t, thr.UseDefault)
	assert.Equal(t, int32(5*500), thr.Resolve(5))

	// +2 dBm
	assert.Equal(t, int32(1000), DecodeTxThreshold(4).Resolve(0))
	// 0xFC is -2 steps, -1 dBm
	assert.Equal(t, int32(-500), DecodeTxThreshold(0xFC).Resolve(0))
	// 0x80 is the most negative explicit value
	assert.Equal(t, int32(-128*250), DecodeTxThreshold(0x80).Resolve(0))
}
