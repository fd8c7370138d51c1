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

// Package conv converts between hardware fixed-point readings and OMCI attribute units
package conv

import (
	"math"

	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
)

// PowerZero is the representation of 0 mW, both in hardware and in OMCI
const PowerZero = cmn.OpticalPowerZero

// dBm to dBuW offset in 0.002 dB units (30 dB)
const dbmToDbuOffset = 15000

const (
	// optical power resolution of hardware and OMCI
	powerLsbDb = 0.002
	// LSBs per dB
	powerLsbPerDb = 500
	// 100 uV to 20 mV
	voltageDivider = 200
)

func clampInt16(v int64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// DbmToDbu converts an optical power in dBm (0.002 dB/LSB) to dBuW (0.002 dB/LSB).
// PowerZero is propagated unchanged.
func DbmToDbu(v int16) int16 {
	if v == PowerZero {
		return v
	}
	return clampInt16(int64(v) + dbmToDbuOffset)
}

// DbmToDbuFormula is the long form of DbmToDbu: v/500 dBm plus 30 dB,
// requantized to 0.002 dB. Both forms give identical results.
func DbmToDbuFormula(v int16) int16 {
	if v == PowerZero {
		return v
	}
	dbu := float64(v)/powerLsbPerDb + 30
	return clampInt16(int64(math.Round(dbu / powerLsbDb)))
}

// DbmToOmci returns the OMCI dBm representation, which shares the hardware resolution
func DbmToOmci(v int16) int16 {
	return v
}

// DbmToFloat returns the power in dBm as floating point value for reporting
func DbmToFloat(v int16) float32 {
	return float32(v) * powerLsbDb
}

// VoltageToOmci converts a 100 uV/LSB voltage into the OMCI 20 mV/LSB unit, truncating
func VoltageToOmci(v uint32) uint16 {
	res := v / voltageDivider
	if res > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(res)
}

// TemperatureToOmci - both sides use 1/256 degree C
func TemperatureToOmci(v int16) int16 {
	return v
}

// BiasToOmci - both sides use 2 uA
func BiasToOmci(v uint16) uint16 {
	return v
}

// SaturateUint32 narrows a 64 bit hardware counter to a 32 bit OMCI PM attribute
func SaturateUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// SaturateUint16 narrows a 64 bit hardware counter to a 16 bit OMCI PM attribute
func SaturateUint16(v uint64) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
