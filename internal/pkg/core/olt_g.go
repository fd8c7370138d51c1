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
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/oltvendor"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/tod"
)

// OLT-G attribute names
const (
	oltGOltVendorID          = "OltVendorId"
	oltGEquipmentID          = "EquipmentId"
	oltGOltVersion           = "OltVersion"
	oltGTimeOfDayInformation = "TimeOfDayInformation"
)

// OltGData holds the OLT-G attributes written by the OLT
type OltGData struct {
	// OltVendorID is the 4 byte vendor tag, not NUL-terminated
	OltVendorID []byte
	EquipmentID []byte
	Version     []byte
	// TimeOfDay in OMCI encoding; nil leaves the hardware time of day untouched
	TimeOfDay []byte
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// UpdateOltG selects the interoperability profile of the OLT vendor and
// synchronises the time of day. The cache is only updated on success.
func (dh *DeviceHandler) UpdateOltG(ctx context.Context, instID uint16, data OltGData) (err error) {
	defer dh.observe(ctx, cmn.OltGClassID, instID, cmn.OpUpdate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	vendor, err := oltvendor.Identify(data.OltVendorID)
	if err != nil {
		return err
	}
	var rec *fapi.TodSync
	if data.TimeOfDay != nil {
		decoded, err := tod.DecodeOmci(data.TimeOfDay)
		if err != nil {
			return err
		}
		rec = &decoded
	}
	selector := oltvendor.NewSelector(vendor, dh.config.OltInteropMask)
	logger.Infow(ctx, "olt-vendor-identified", log.Fields{"device-id": dh.DeviceID, "vendor": vendor.String(),
		"iop-mask": selector.Mask})
	if err := dh.client.SetOltType(ctx, selector.OltType()); err != nil {
		return adperrors.FromFapi(fapi.OpSetOltType, log.Fields{"device-id": dh.DeviceID, "vendor": vendor.String()}, err)
	}
	if rec != nil {
		if err := tod.Sync(ctx, dh.client, dh.config.TodOffsetPs, *rec); err != nil {
			return err
		}
	}
	ml := dh.registerMe(ctx, cmn.OltGClassID, instID)
	dh.oltG = oltGState{
		vendor:      vendor,
		vendorID:    cloneBytes(data.OltVendorID),
		equipmentID: cloneBytes(data.EquipmentID),
		version:     cloneBytes(data.Version),
	}
	ml.markUpdated(ctx)
	return nil
}

// GetOltG returns the cached OLT identification and the time of day currently held by the hardware
func (dh *DeviceHandler) GetOltG(ctx context.Context, instID uint16) (attrs me.AttributeValueMap, err error) {
	defer dh.observe(ctx, cmn.OltGClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	if dh.lifecycle(cmn.OltGClassID, instID) == nil {
		return nil, dh.errMeNotFound(cmn.OltGClassID, instID)
	}
	rec, err := dh.client.GetTodSync(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetTodSync, log.Fields{"device-id": dh.DeviceID}, err)
	}
	return me.AttributeValueMap{
		oltGOltVendorID:          cloneBytes(dh.oltG.vendorID),
		oltGEquipmentID:          cloneBytes(dh.oltG.equipmentID),
		oltGOltVersion:           cloneBytes(dh.oltG.version),
		oltGTimeOfDayInformation: tod.EncodeOmci(*rec),
	}, nil
}

// OltVendor returns the vendor identified by the last successful OLT-G update
func (dh *DeviceHandler) OltVendor() oltvendor.Vendor {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()
	return dh.oltG.vendor
}
