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

package tod

import (
	"encoding/binary"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

// OmciLen is the size of the OLT-G time of day information attribute:
// 4 bytes superframe counter, 6 bytes seconds, 4 bytes nanoseconds
const OmciLen = 14

// DecodeOmci converts the OLT-G time of day information attribute into a sync record
func DecodeOmci(b []byte) (fapi.TodSync, error) {
	if len(b) != OmciLen {
		return fapi.TodSync{}, adperrors.NewErrInvalidValue(log.Fields{"attribute": "time-of-day-information",
			"length": len(b)}, nil)
	}
	return fapi.TodSync{
		MultiframeCount: binary.BigEndian.Uint32(b[0:4]),
		ExtSeconds:      binary.BigEndian.Uint16(b[4:6]),
		Seconds:         binary.BigEndian.Uint32(b[6:10]),
		Nanoseconds:     binary.BigEndian.Uint32(b[10:14]),
	}, nil
}

// EncodeOmci is the inverse of DecodeOmci
func EncodeOmci(rec fapi.TodSync) []byte {
	b := make([]byte, OmciLen)
	binary.BigEndian.PutUint32(b[0:4], rec.MultiframeCount)
	binary.BigEndian.PutUint16(b[4:6], rec.ExtSeconds)
	binary.BigEndian.PutUint32(b[6:10], rec.Seconds)
	binary.BigEndian.PutUint32(b[10:14], rec.Nanoseconds)
	return b
}
