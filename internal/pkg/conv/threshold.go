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
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
)

const (
	// -0.5 dB per OMCI rx threshold step, in 0.002 dB
	rxThresholdFactor = -250
	// 0.5 dB per OMCI tx threshold step, in 0.002 dB
	txThresholdFactor = 250
)

// Threshold is an OMCI optical threshold attribute decoded once at the boundary:
// either an explicit level or the request to use the device's configured default.
type Threshold struct {
	UseDefault bool
	// Level in 0.002 dB/LSB, valid if !UseDefault
	Level int32
	// Raw is the OMCI attribute byte as received
	Raw uint8
}

// DecodeRxThreshold decodes ANI-G lower/upper optical threshold.
// 0xFF selects the default, other values are signed -0.5 dB steps.
func DecodeRxThreshold(b uint8) Threshold {
	if b == cmn.RxThresholdDefault {
		return Threshold{UseDefault: true, Raw: b}
	}
	return Threshold{Level: int32(int8(b)) * rxThresholdFactor, Raw: b}
}

// DecodeTxThreshold decodes ANI-G lower/upper transmit power threshold.
// 0x81 selects the default, other values are signed 0.5 dB steps.
func DecodeTxThreshold(b uint8) Threshold {
	if b == cmn.TxThresholdDefault {
		return Threshold{UseDefault: true, Raw: b}
	}
	return Threshold{Level: int32(int8(b)) * txThresholdFactor, Raw: b}
}

// Resolve returns the level in 0.002 dB, taking defaultDBm (whole dBm) when
// the default was requested
func (t Threshold) Resolve(defaultDBm int32) int32 {
	if t.UseDefault {
		return defaultDBm * powerLsbPerDb
	}
	return t.Level
}
