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

package cfgstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/cevaris/ordered_map"
	"github.com/opencord/voltha-lib-go/v7/pkg/db/kvstore"
	"github.com/opencord/voltha-lib-go/v7/pkg/log"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	cmn "github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/common"
)

// Backend is the part of the voltha db.Backend used by the store
type Backend interface {
	Put(ctx context.Context, key string, value interface{}) error
	Get(ctx context.Context, key string) (*kvstore.KVPair, error)
}

// KVStore stages configuration writes and flushes them to the KV backend
// in write order when a write asks for commit
type KVStore struct {
	mutex   sync.Mutex
	backend Backend
	staged  *ordered_map.OrderedMap
}

var _ cmn.ConfigStore = (*KVStore)(nil)

// NewKVStore returns a store on top of the given backend
func NewKVStore(backend Backend) *KVStore {
	return &KVStore{
		backend: backend,
		staged:  ordered_map.NewOrderedMap(),
	}
}

func keyPath(section, subsection, key string) string {
	return fmt.Sprintf("%s/%s/%s", section, subsection, key)
}

// Write stages the value and, if commit is set, flushes all staged values.
// A failed flush leaves the values already written in the backend and keeps
// the rest staged for the next commit.
func (s *KVStore) Write(ctx context.Context, section, subsection, key, value string, commit bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	path := keyPath(section, subsection, key)
	s.staged.Set(path, value)
	logger.Debugw(ctx, "config value staged", log.Fields{"key": path, "value": value, "commit": commit})
	if !commit {
		return nil
	}
	return s.flush(ctx)
}

// flush must be called with the mutex held
func (s *KVStore) flush(ctx context.Context) error {
	var written []string
	defer func() {
		for _, path := range written {
			s.staged.Delete(path)
		}
	}()
	iter := s.staged.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		path := kv.Key.(string)
		if err := s.backend.Put(ctx, path, kv.Value); err != nil {
			logger.Errorw(ctx, "config commit failed", log.Fields{"key": path, "written": len(written), "err": err})
			return adperrors.NewErrAdapter("config-commit-failed", log.Fields{"key": path}, err)
		}
		written = append(written, path)
	}
	logger.Debugw(ctx, "config committed", log.Fields{"keys": written})
	return nil
}

// Pending returns the number of staged values not yet committed
func (s *KVStore) Pending() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.staged.Len()
}

// Read returns the committed value of a key
func (s *KVStore) Read(ctx context.Context, section, subsection, key string) (string, error) {
	path := keyPath(section, subsection, key)
	kvPair, err := s.backend.Get(ctx, path)
	if err != nil {
		return "", adperrors.NewErrAdapter("config-read-failed", log.Fields{"key": path}, err)
	}
	if kvPair == nil {
		return "", adperrors.NewErrNotFound("config-key", log.Fields{"key": path}, nil)
	}
	value, err := kvstore.ToString(kvPair.Value)
	if err != nil {
		return "", adperrors.NewErrInvalidValue(log.Fields{"key": path}, err)
	}
	return value, nil
}
