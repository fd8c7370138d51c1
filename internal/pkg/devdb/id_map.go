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

// Package devdb provides the per-device resource identifier tables
package devdb

import (
	"context"
	"sort"

	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
)

// IDMap maps OMCI ME instance IDs to hardware resource IDs of one category
// (GEM port IDs, alloc IDs). The mapping is a bijection: each ME instance
// and each resource appears at most once.
// IDMap is not synchronised; the owning device context lock must be held.
type IDMap struct {
	name     string
	capacity uint32
	meToRes  map[uint16]uint32
	resToMe  map[uint32]uint16
}

// NewIDMap returns an empty table accepting resource IDs below capacity
func NewIDMap(name string, capacity uint32) *IDMap {
	return &IDMap{
		name:     name,
		capacity: capacity,
		meToRes:  make(map[uint16]uint32),
		resToMe:  make(map[uint32]uint16),
	}
}

// Name returns the resource category of the table
func (m *IDMap) Name() string {
	return m.name
}

// Capacity returns the exclusive upper bound of valid resource IDs
func (m *IDMap) Capacity() uint32 {
	return m.capacity
}

// Map binds meID to resID, replacing an existing binding of meID.
// A resID bound to another ME instance is rejected and both bindings stay as they are.
func (m *IDMap) Map(ctx context.Context, meID uint16, resID uint32) error {
	if resID >= m.capacity {
		return adperrors.NewErrInvalidValue(log.Fields{"table": m.name, "me-id": meID,
			"resource-id": resID, "capacity": m.capacity}, nil)
	}
	if err := m.CheckAvailable(meID, resID); err != nil {
		return err
	}
	m.Unmap(ctx, meID)
	m.meToRes[meID] = resID
	m.resToMe[resID] = meID
	logger.Debugw(ctx, "id mapped", log.Fields{"table": m.name, "me-id": meID, "resource-id": resID})
	return nil
}

// CheckAvailable fails with invalid-value when resID is bound to an ME instance other than meID
func (m *IDMap) CheckAvailable(meID uint16, resID uint32) error {
	if owner, exist := m.resToMe[resID]; exist && owner != meID {
		return adperrors.NewErrInvalidValue(log.Fields{"table": m.name, "me-id": meID,
			"resource-id": resID, "owner-me-id": owner}, nil)
	}
	return nil
}

// Unmap removes the binding of meID, if any
func (m *IDMap) Unmap(ctx context.Context, meID uint16) {
	resID, exist := m.meToRes[meID]
	if !exist {
		return
	}
	delete(m.meToRes, meID)
	delete(m.resToMe, resID)
	logger.Debugw(ctx, "id unmapped", log.Fields{"table": m.name, "me-id": meID, "resource-id": resID})
}

// Lookup returns the resource bound to meID
func (m *IDMap) Lookup(meID uint16) (uint32, error) {
	resID, exist := m.meToRes[meID]
	if !exist {
		return 0, adperrors.NewErrNotFound(m.name, log.Fields{"me-id": meID}, nil)
	}
	return resID, nil
}

// LookupByResource returns the ME instance bound to resID
func (m *IDMap) LookupByResource(resID uint32) (uint16, error) {
	meID, exist := m.resToMe[resID]
	if !exist {
		return 0, adperrors.NewErrNotFound(m.name, log.Fields{"resource-id": resID}, nil)
	}
	return meID, nil
}

// Len returns the number of bindings
func (m *IDMap) Len() int {
	return len(m.meToRes)
}

// SortedMeIDs returns all bound ME instance IDs in ascending order
func (m *IDMap) SortedMeIDs() []uint16 {
	meIDs := make([]uint16, 0, len(m.meToRes))
	for k := range m.meToRes {
		meIDs = append(meIDs, k)
	}
	sort.Slice(meIDs, func(i, j int) bool { return meIDs[i] < meIDs[j] })
	return meIDs
}

// Clear drops all bindings
func (m *IDMap) Clear() {
	m.meToRes = make(map[uint16]uint32)
	m.resToMe = make(map[uint32]uint16)
}
