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
	"sort"
	"sync"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/almgr"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/fapi"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/metrics"
	"github.com/opencord/voltha-protos/v5/go/extension"
)

//OpenOnuFapiAC structure holds the adapter contexts of all attached devices
type OpenOnuFapiAC struct {
	deviceHandlers         map[string]*DeviceHandler
	mutexDeviceHandlersMap sync.RWMutex
	store                  cmn.ConfigStore
	eventSender            almgr.DeviceEventSender
	metrics                *metrics.Collector
}

//NewOpenOnuFapiAC returns a new instance of OpenOnuFapiAC; store, eventSender and collector may be nil
func NewOpenOnuFapiAC(ctx context.Context, store cmn.ConfigStore, eventSender almgr.DeviceEventSender,
	collector *metrics.Collector) *OpenOnuFapiAC {
	var openOnuAc OpenOnuFapiAC
	openOnuAc.deviceHandlers = make(map[string]*DeviceHandler)
	openOnuAc.mutexDeviceHandlersMap = sync.RWMutex{}
	openOnuAc.store = store
	openOnuAc.eventSender = eventSender
	openOnuAc.metrics = collector
	return &openOnuAc
}

//Start starts (logs) the adapter
func (oo *OpenOnuFapiAC) Start(ctx context.Context) error {
	logger.Info(ctx, "starting-omci-fapi-adapter")
	return nil
}

//Stop detaches all devices
func (oo *OpenOnuFapiAC) Stop(ctx context.Context) error {
	logger.Info(ctx, "stopping-device-manager")
	oo.mutexDeviceHandlersMap.Lock()
	handlers := oo.deviceHandlers
	oo.deviceHandlers = make(map[string]*DeviceHandler)
	oo.mutexDeviceHandlersMap.Unlock()
	for _, dh := range handlers {
		dh.stop(ctx)
		oo.metrics.DeviceDetached()
	}
	logger.Info(ctx, "device-manager-stopped")
	return nil
}

// Attach reads the capabilities of the device hardware and creates its adapter context
func (oo *OpenOnuFapiAC) Attach(ctx context.Context, deviceID string, client fapi.Client, cfg DeviceConfig) (*DeviceHandler, error) {
	if deviceID == "" || client == nil {
		return nil, adperrors.NewErrInvalidArgument("device", log.Fields{"device-id": deviceID})
	}
	oo.mutexDeviceHandlersMap.RLock()
	_, exist := oo.deviceHandlers[deviceID]
	oo.mutexDeviceHandlersMap.RUnlock()
	if exist {
		return nil, adperrors.NewErrInvalidValue(log.Fields{"device-id": deviceID, "reason": "already-attached"}, nil)
	}
	caps, err := client.GetCapabilities(ctx)
	if err != nil {
		return nil, adperrors.FromFapi(fapi.OpGetCapabilities, log.Fields{"device-id": deviceID}, err)
	}
	notifier := almgr.NewEventNotifier(deviceID, oo.eventSender)
	dh := newDeviceHandler(ctx, deviceID, client, *caps, cfg, oo.store, notifier, oo.metrics)

	if reader, ok := oo.store.(cmn.ConfigReader); ok {
		if err := dh.restoreTwdmProfile(ctx, reader); err != nil {
			// the hardware keeps its defaults
			logger.Warnw(ctx, "twdm-profile-not-restored", log.Fields{"device-id": deviceID, "err": err})
		}
	}

	oo.mutexDeviceHandlersMap.Lock()
	defer oo.mutexDeviceHandlersMap.Unlock()
	if _, exist := oo.deviceHandlers[deviceID]; exist {
		dh.stop(ctx)
		return nil, adperrors.NewErrInvalidValue(log.Fields{"device-id": deviceID, "reason": "already-attached"}, nil)
	}
	oo.deviceHandlers[deviceID] = dh
	oo.metrics.DeviceAttached()
	logger.Infow(ctx, "device-attached", log.Fields{"device-id": deviceID, "mode": caps.Mode.String()})
	return dh, nil
}

// Detach stops all background activities of the device and drops its adapter context
func (oo *OpenOnuFapiAC) Detach(ctx context.Context, deviceID string) error {
	oo.mutexDeviceHandlersMap.Lock()
	dh, exist := oo.deviceHandlers[deviceID]
	delete(oo.deviceHandlers, deviceID)
	oo.mutexDeviceHandlersMap.Unlock()
	if !exist {
		return adperrors.NewErrNotFound("device", log.Fields{"device-id": deviceID}, nil)
	}
	dh.stop(ctx)
	oo.metrics.DeviceDetached()
	logger.Infow(ctx, "device-detached", log.Fields{"device-id": deviceID})
	return nil
}

//GetDeviceHandler returns the adapter context of an attached device
func (oo *OpenOnuFapiAC) GetDeviceHandler(deviceID string) (*DeviceHandler, bool) {
	oo.mutexDeviceHandlersMap.RLock()
	defer oo.mutexDeviceHandlersMap.RUnlock()
	dh, exist := oo.deviceHandlers[deviceID]
	return dh, exist
}

//DeviceIDs returns the IDs of all attached devices in ascending order
func (oo *OpenOnuFapiAC) DeviceIDs() []string {
	oo.mutexDeviceHandlersMap.RLock()
	defer oo.mutexDeviceHandlersMap.RUnlock()
	ids := make([]string, 0, len(oo.deviceHandlers))
	for id := range oo.deviceHandlers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func postSingleValueErrResponse(reason extension.GetValueResponse_ErrorReason) *extension.SingleGetValueResponse {
	return &extension.SingleGetValueResponse{
		Response: &extension.GetValueResponse{
			Status:    extension.GetValueResponse_ERROR,
			ErrReason: reason,
		},
	}
}

//GetSingleValue handles the core request to retrieve the optical info of a device
func (oo *OpenOnuFapiAC) GetSingleValue(ctx context.Context, request *extension.SingleGetValueRequest) (*extension.SingleGetValueResponse, error) {
	logger.Infow(ctx, "Single_get_value_request", log.Fields{"request": request})

	if handler, exist := oo.GetDeviceHandler(request.GetTargetId()); exist {
		switch request.GetRequest().GetRequest().(type) {
		case *extension.GetValueRequest_OnuOpticalInfo:
			instID, found := handler.firstAniG()
			if !found {
				return postSingleValueErrResponse(extension.GetValueResponse_INTERNAL_ERROR),
					adperrors.NewErrNotFound("ani-g", log.Fields{"device-id": handler.DeviceID}, nil)
			}
			info, err := handler.GetAniGOpticalInfo(ctx, instID)
			if err != nil {
				return postSingleValueErrResponse(extension.GetValueResponse_INTERNAL_ERROR), err
			}
			return &extension.SingleGetValueResponse{
				Response: &extension.GetValueResponse{
					Status:   extension.GetValueResponse_OK,
					Response: &extension.GetValueResponse_OnuOpticalInfo{OnuOpticalInfo: info},
				},
			}, nil
		default:
			return postSingleValueErrResponse(extension.GetValueResponse_UNSUPPORTED), nil
		}
	}
	logger.Errorw(ctx, "Single_get_value_request failed ", log.Fields{"request": request})
	return postSingleValueErrResponse(extension.GetValueResponse_INVALID_DEVICE_ID), nil
}
