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

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/twdm"
)

// UpdateTwdmSystemProfile applies the PLOAM timers and the channel partition index of the profile
func (dh *DeviceHandler) UpdateTwdmSystemProfile(ctx context.Context, instID uint16, prof twdm.Profile) (err error) {
	defer dh.observe(ctx, cmn.TwdmSystemProfileClassID, instID, cmn.OpUpdate, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	ml := dh.registerMe(ctx, cmn.TwdmSystemProfileClassID, instID)
	logger.Debugw(ctx, "update-twdm-system-profile", log.Fields{"device-id": dh.DeviceID, "instance-id": instID,
		"profile": prof})
	if err := dh.pTwdmPolicy.Update(ctx, prof); err != nil {
		return err
	}
	ml.markUpdated(ctx)
	return nil
}

// GetTwdmSystemProfile returns the profile as currently configured in hardware
func (dh *DeviceHandler) GetTwdmSystemProfile(ctx context.Context, instID uint16) (prof twdm.Profile, err error) {
	defer dh.observe(ctx, cmn.TwdmSystemProfileClassID, instID, cmn.OpGet, time.Now(), &err)
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	return dh.pTwdmPolicy.Get(ctx)
}

// restoreTwdmProfile re-applies the persisted profile after attach
func (dh *DeviceHandler) restoreTwdmProfile(ctx context.Context, reader cmn.ConfigReader) error {
	g := cmn.LockCtx(&dh.mutexCtx)
	defer g.Unlock()

	return dh.pTwdmPolicy.Restore(ctx, reader)
}
