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

//Package fapi provides the boundary to the PON hardware control API
package fapi

import "fmt"

// PonMode - operating mode of the PON MAC
type PonMode uint8

// PON operating modes
const (
	ModeUnknown PonMode = iota
	// ModeGpon - ITU-T G.984
	ModeGpon
	// ModeXgpon - ITU-T G.987
	ModeXgpon
	// ModeXgspon - ITU-T G.9807.1
	ModeXgspon
	// ModeNgpon2Up2G5 - ITU-T G.989, 2.5G upstream
	ModeNgpon2Up2G5
	// ModeNgpon2Up10G - ITU-T G.989, 10G upstream
	ModeNgpon2Up10G
)

// String - Return the text representation of the mode
func (m PonMode) String() string {
	names := [...]string{
		"unknown",
		"gpon",
		"xgpon",
		"xgspon",
		"ngpon2-2.5G",
		"ngpon2-10G",
	}
	if int(m) >= len(names) {
		return names[ModeUnknown]
	}
	return names[m]
}

// ParsePonMode returns the mode named by its String representation
func ParsePonMode(name string) (PonMode, error) {
	for m := ModeGpon; m <= ModeNgpon2Up10G; m++ {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeUnknown, fmt.Errorf("unknown pon mode %q", name)
}

// IsTwdm reports whether the mode runs TWDM channels
func (m PonMode) IsTwdm() bool {
	return m == ModeNgpon2Up2G5 || m == ModeNgpon2Up10G
}

// Capabilities of the PON hardware, read once at device attach
type Capabilities struct {
	Mode            PonMode
	GemPortCapacity uint32
	AllocIDCapacity uint32
	// TwdmChannelMask has one bit per populated TWDM channel
	TwdmChannelMask uint8
}

// OpticalStatus holds the transceiver readings.
// RxPower/TxPower: dBm, 0.002 dB/LSB; -32767 means 0 mW.
// Voltage: 100 uV/LSB. Bias: 2 uA/LSB. Temperature: 1/256 degree C.
type OpticalStatus struct {
	RxPower     int16
	TxPower     int16
	Voltage     uint32
	Bias        uint16
	Temperature int16
}

// GponStatus holds the ranging results
type GponStatus struct {
	Mode  PonMode
	OnuID uint16
	// EqDelay in hardware equalization-delay ticks (mode dependent)
	EqDelay uint32
	// OnuResponseTime in ns
	OnuResponseTime uint32
}

// TodSync - time of day as relayed by the OLT
type TodSync struct {
	MultiframeCount uint32
	Seconds         uint32
	ExtSeconds      uint16
	Nanoseconds     uint32
}

// TimeoutConfig - PLOAM state machine timers in ms
type TimeoutConfig struct {
	PloamTimeout0 uint32
	PloamTimeout1 uint32
	// PloamTimeout2 - LODS re-initialization
	PloamTimeout2 uint32
	// PloamTimeout3 - LODS protection
	PloamTimeout3 uint32
	// PloamTimeout4 - downstream tuning
	PloamTimeout4 uint32
	// PloamTimeout5 - upstream tuning
	PloamTimeout5 uint32
	PloamTimeout6 uint32
	// PloamTimeoutCpi - channel partition waiver
	PloamTimeoutCpi uint32
}

// TwdmConfig - current TWDM channel settings
type TwdmConfig struct {
	ChannelPartitionIndex uint8
	DsChannel             uint8
	UsChannel             uint8
}

// OltType - interoperability selector handed to the hardware
type OltType struct {
	Type    uint32
	IopMask uint32
}

// OpticalThresholds in dBm, 0.002 dB/LSB
type OpticalThresholds struct {
	LowerRx int32
	UpperRx int32
	LowerTx int32
	UpperTx int32
}

// GemPortConfig - parameters of a GEM port to be created
type GemPortConfig struct {
	GemPortID         uint32
	AllocID           uint32
	AllocValid        bool
	Direction         uint8
	EncryptionKeyRing uint8
	MaxGemPayload     uint32
}

// GemPortCounters - per GEM port counters
type GemPortCounters struct {
	TxFrames  uint64
	RxFrames  uint64
	TxBytes   uint64
	RxBytes   uint64
	KeyErrors uint64
}

// FecCounters - downstream FEC counters
type FecCounters struct {
	CorrectedBytes         uint64
	CorrectedCodewords     uint64
	UncorrectableCodewords uint64
	TotalCodewords         uint64
	FecSeconds             uint64
}

// XgtcCounters - XG-PON TC layer counters
type XgtcCounters struct {
	PsbdHecErrors      uint64
	XgtcHecErrors      uint64
	UnknownProfiles    uint64
	TxXgemFrames       uint64
	FragmentXgemFrames uint64
	XgemHecLostWords   uint64
	XgemKeyErrors      uint64
	XgemHecErrors      uint64
}
