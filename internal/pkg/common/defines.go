/*
 * Copyright 2018-present Open Networking Foundation

 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at

 * http://www.apache.org/licenses/LICENSE-2.0

 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//Package common provides global definitions
package common

import (
	me "github.com/opencord/omci-lib-go/v2/generated"
)

// ME class IDs handled by the adapter core
const (
	AniGClassID              = me.AniGClassID
	OltGClassID              = me.OltGClassID
	TContClassID             = me.TContClassID
	GemPortNetworkCtpClassID = me.GemPortNetworkCtpClassID
)

// further ME class IDs as per G.988
const (
	GemPortNetworkCtpPmClassID me.ClassID = 341
	FecPmClassID               me.ClassID = 312
	XgPonTcPmClassID           me.ClassID = 344
	TwdmSystemProfileClassID   me.ClassID = 443
)

// MeOperation names an entry point of the adapter core
type MeOperation string

// operations invoked by the OMCI stack
const (
	OpCreate  MeOperation = "create"
	OpUpdate  MeOperation = "update"
	OpDestroy MeOperation = "destroy"
	OpGet     MeOperation = "get"
	OpTest    MeOperation = "test"
	OpRecheck MeOperation = "recheck"
)

///////////////////////////////////////////////////////////

// OMCI "use configured default" threshold encodings (G.988 ANI-G)
const (
	RxThresholdDefault uint8 = 0xFF
	TxThresholdDefault uint8 = 0x81
)

// OpticalPowerZero is reported by hardware and OMCI for an optical power of 0 mW
const OpticalPowerZero int16 = -32767

// T-CONT alloc-id value meaning "not assigned" (G.988 9.2.2)
const (
	GponAllocIDUnassigned  uint16 = 0x00FF
	XgponAllocIDUnassigned uint16 = 0xFFFF
)

// GEM port network CTP direction values
const (
	GemDirectionUpstream      = 1
	GemDirectionDownstream    = 2
	GemDirectionBidirectional = 3
)

// ANI-G alarm numbers as per G.988 9.2.1
const (
	AniGAlarmLowRxOptical  uint8 = 0
	AniGAlarmHighRxOptical uint8 = 1
	AniGAlarmLowTxOptical  uint8 = 4
	AniGAlarmHighTxOptical uint8 = 5
)

///////////////////////////////////////////////////////////

// durable configuration sections and keys used for TWDM policy
const (
	CfgSectionGpon        = "gpon"
	CfgSubsectionPonIP    = "ponip"
	CfgKeyPloamTimeout2   = "ploam_timeout_2"
	CfgKeyPloamTimeout3   = "ploam_timeout_3"
	CfgKeyPloamTimeout4   = "ploam_timeout_4"
	CfgKeyPloamTimeout5   = "ploam_timeout_5"
	CfgKeyPloamTimeoutCpi = "ploam_timeout_cpi"
	CfgKeyCpi             = "cpi"
)
