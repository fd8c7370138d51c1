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

// Package oltvendor identifies the OLT vendor from the OLT-G vendor id and
// derives the interoperability selector for the hardware
package oltvendor

import (
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

// TagLen is the length of an OLT-G vendor id
const TagLen = 4

// Vendor - known OLT vendors
type Vendor uint32

// OLT vendors with an interoperability profile
const (
	Unknown Vendor = iota
	Adtran
	Calix
	Ciena
	DZS
	Huawei
	Nokia
	Tibit
	ZTE
)

// String - Return the text representation of the vendor
func (v Vendor) String() string {
	names := [...]string{
		"unknown",
		"adtran",
		"calix",
		"ciena",
		"dzs",
		"huawei",
		"nokia",
		"tibit",
		"zte",
	}
	if int(v) >= len(names) {
		return names[Unknown]
	}
	return names[v]
}

type entry struct {
	vendor Vendor
	tag    [TagLen]byte
}

// an all-zero tag means the vendor cannot be told by its vendor id
var vendorTable = [...]entry{
	{Adtran, [TagLen]byte{'A', 'D', 'T', 'N'}},
	{Calix, [TagLen]byte{'C', 'X', 'N', 'K'}},
	{Ciena, [TagLen]byte{}},
	{DZS, [TagLen]byte{'D', 'Z', 'S', 'I'}},
	{Huawei, [TagLen]byte{'H', 'W', 'T', 'C'}},
	{Nokia, [TagLen]byte{'A', 'L', 'C', 'L'}},
	{Tibit, [TagLen]byte{'T', 'B', 'I', 'T'}},
	{ZTE, [TagLen]byte{'Z', 'T', 'E', 'G'}},
}

// Identify matches a vendor id against the known vendors by exact byte
// comparison. The tag is not NUL-terminated; an all-zero tag is Unknown.
func Identify(tag []byte) (Vendor, error) {
	if len(tag) != TagLen {
		return Unknown, adperrors.NewErrInvalidValue(log.Fields{"vendor-id-length": len(tag)}, nil)
	}
	var key [TagLen]byte
	copy(key[:], tag)
	if key == ([TagLen]byte{}) {
		return Unknown, nil
	}
	for _, e := range vendorTable {
		if e.tag == ([TagLen]byte{}) {
			continue
		}
		if e.tag == key {
			return e.vendor, nil
		}
	}
	return Unknown, nil
}

// Selector is the OLT interoperability profile: vendor plus the configured mask
type Selector struct {
	Vendor Vendor
	Mask   uint32
}

// NewSelector combines vendor and interoperability mask
func NewSelector(vendor Vendor, mask uint32) Selector {
	return Selector{Vendor: vendor, Mask: mask}
}

// OltType returns the opaque hardware representation of the selector
func (s Selector) OltType() *fapi.OltType {
	return &fapi.OltType{Type: uint32(s.Vendor), IopMask: s.Mask}
}
