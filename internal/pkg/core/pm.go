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

package core

import (
	"context"
	"time"

	me "github.com/opencord/omci-lib-go/v2/generated"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/conv"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
)

// FEC PM history data attribute names
const (
	fecPmCorrectedBytes         = "CorrectedBytes"
	fecPmCorrectedCodeWords     = "CorrectedCodeWords"
	fecPmUncorrectableCodeWords = "UncorrectableCodeWords"
	fecPmTotalCodeWords         = "TotalCodeWords"
	fecPmFecSeconds             = "FecSeconds"
)

// XG-PON TC PM history data attribute names
const (
	xgtcPmPsbdHecErrorCount     = "PsbdHecErrorCount"
	xgtcPmXgtcHecErrorCount     = "XgtcHecErrorCount"
	xgtcPmUnknownProfileCount   = "UnknownProfileCount"
	xgtcPmTransmittedXgemFrames = "TransmittedXgemFrames"
	xgtcPmFragmentXgemFrames    = "FragmentXgemFrames"
	xgtcPmXgemHecLostWordsCount = "XgemHecLostWordsCount"
	xgtcPmXgemKeyErrors         = "XgemKeyErrors"
	xgtcPmXgemHecErrorCount     = "XgemHecErrorCount"
)

// GetFecPm returns the downstream FEC counters; OMCI counters saturate instead of wrapping
func (dh *DeviceHandler) GetFecPm(ctx context.Context, instID uint16) (attrs me.AttributeValueMap, err error) {
	defer dh.observe(ctx, cmn.FecPmClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	cnt, err := dh.client.GetFecCounters(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetFecCounters, log.Fields{"device-id": dh.DeviceID, "instance-id": instID}, err)
	}
	return me.AttributeValueMap{
		fecPmCorrectedBytes:         conv.SaturateUint32(cnt.CorrectedBytes),
		fecPmCorrectedCodeWords:     conv.SaturateUint32(cnt.CorrectedCodewords),
		fecPmUncorrectableCodeWords: conv.SaturateUint32(cnt.UncorrectableCodewords),
		fecPmTotalCodeWords:         conv.SaturateUint32(cnt.TotalCodewords),
		fecPmFecSeconds:             conv.SaturateUint16(cnt.FecSeconds),
	}, nil
}

// GetXgtcPm returns the XG-PON TC layer counters
func (dh *DeviceHandler) GetXgtcPm(ctx context.Context, instID uint16) (attrs me.AttributeValueMap, err error) {
	defer dh.observe(ctx, cmn.XgPonTcPmClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if dh.caps.Mode == fapi.ModeGpon {
		return nil, adperrors.NewErrUnsupportedMode("get-xgtc-pm", dh.caps.Mode, log.Fields{"device-id": dh.DeviceID})
	}
	cnt, err := dh.client.GetXgtcCounters(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetXgtcCounters, log.Fields{"device-id": dh.DeviceID, "instance-id": instID}, err)
	}
	return me.AttributeValueMap{
		xgtcPmPsbdHecErrorCount:     conv.SaturateUint32(cnt.PsbdHecErrors),
		xgtcPmXgtcHecErrorCount:     conv.SaturateUint32(cnt.XgtcHecErrors),
		xgtcPmUnknownProfileCount:   conv.SaturateUint32(cnt.UnknownProfiles),
		xgtcPmTransmittedXgemFrames: conv.SaturateUint32(cnt.TxXgemFrames),
		xgtcPmFragmentXgemFrames:    conv.SaturateUint32(cnt.FragmentXgemFrames),
		xgtcPmXgemHecLostWordsCount: conv.SaturateUint32(cnt.XgemHecLostWords),
		xgtcPmXgemKeyErrors:         conv.SaturateUint32(cnt.XgemKeyErrors),
		xgtcPmXgemHecErrorCount:     conv.SaturateUint32(cnt.XgemHecErrors),
	}, nil
}
