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

import (
	"context"
	"fmt"
)

// Status - result code of a hardware API call
type Status int

// hardware API result codes
const (
	StatusOK Status = iota
	StatusErr
	StatusInputErr
	StatusNotSupported
	StatusTimeout
	StatusBusy
	StatusNoData
	StatusMemErr
)

// String - Return the text representation of the status code
func (s Status) String() string {
	names := [...]string{
		"OK",
		"ERR",
		"INPUT_ERR",
		"NOT_SUPPORTED",
		"TIMEOUT",
		"BUSY",
		"NO_DATA",
		"MEM_ERR",
	}
	if s < 0 || int(s) >= len(names) {
		return fmt.Sprintf("STATUS_%d", int(s))
	}
	return names[s]
}

// Error is returned by every failed hardware API call
type Error struct {
	Op     string
	Status Status
}

func (e *Error) Error() string {
	return fmt.Sprintf("fapi %s: %s", e.Op, e.Status)
}

// NewError returns nil for StatusOK, an *Error otherwise
func NewError(op string, status Status) error {
	if status == StatusOK {
		return nil
	}
	return &Error{Op: op, Status: status}
}

// names of the hardware API operations
const (
	OpGetCapabilities          = "GetCapabilities"
	OpGetOpticalStatus         = "GetOpticalStatus"
	OpGetGponStatus            = "GetGponStatus"
	OpGetTodSync               = "GetTodSync"
	OpSetTodSync               = "SetTodSync"
	OpGetTimeoutConfig         = "GetTimeoutConfig"
	OpSetTimeoutConfig         = "SetTimeoutConfig"
	OpGetTwdmConfig            = "GetTwdmConfig"
	OpSetChannelPartitionIndex = "SetChannelPartitionIndex"
	OpSetOltType               = "SetOltType"
	OpSetAlarmThresholds       = "SetAlarmThresholds"
	OpCreateGemPort            = "CreateGemPort"
	OpDeleteGemPort            = "DeleteGemPort"
	OpSetAllocID               = "SetAllocID"
	OpReleaseAllocID           = "ReleaseAllocID"
	OpGetGemPortCounters       = "GetGemPortCounters"
	OpGetFecCounters           = "GetFecCounters"
	OpGetXgtcCounters          = "GetXgtcCounters"
)

// Client is the fixed call surface of the hardware API.
// Every call is an atomic request/response and blocks until the mailbox
// round-trip has completed; implementations are internally synchronised.
type Client interface {
	GetCapabilities(ctx context.Context) (*Capabilities, error)
	GetOpticalStatus(ctx context.Context) (*OpticalStatus, error)
	GetGponStatus(ctx context.Context) (*GponStatus, error)

	GetTodSync(ctx context.Context) (*TodSync, error)
	SetTodSync(ctx context.Context, tod *TodSync) error

	GetTimeoutConfig(ctx context.Context) (*TimeoutConfig, error)
	SetTimeoutConfig(ctx context.Context, cfg *TimeoutConfig) error
	GetTwdmConfig(ctx context.Context) (*TwdmConfig, error)
	SetChannelPartitionIndex(ctx context.Context, cpi uint8) error

	SetOltType(ctx context.Context, olt *OltType) error
	SetAlarmThresholds(ctx context.Context, thr *OpticalThresholds) error

	CreateGemPort(ctx context.Context, cfg *GemPortConfig) error
	DeleteGemPort(ctx context.Context, gemPortID uint32) error
	SetAllocID(ctx context.Context, allocID uint32) error
	ReleaseAllocID(ctx context.Context, allocID uint32) error

	GetGemPortCounters(ctx context.Context, gemPortID uint32) (*GemPortCounters, error)
	GetFecCounters(ctx context.Context) (*FecCounters, error)
	GetXgtcCounters(ctx context.Context) (*XgtcCounters, error)
}
