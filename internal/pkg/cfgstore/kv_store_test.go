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
	"errors"
	"testing"

	"github.com/opencord/voltha-lib-go/v7/pkg/db/kvstore"
	"github.com/opencord/voltha-omci-fapi-adapter-go/internal/pkg/adperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	data    map[string]interface{}
	order   []string
	failKey string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{data: make(map[string]interface{})}
}

func (f *fakeBackend) Put(ctx context.Context, key string, value interface{}) error {
	if key == f.failKey {
		return errors.New("etcd unavailable")
	}
	f.data[key] = value
	f.order = append(f.order, key)
	return nil
}

func (f *fakeBackend) Get(ctx context.Context, key string) (*kvstore.KVPair, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	// etcd hands back raw bytes
	return &kvstore.KVPair{Key: key, Value: []byte(v.(string))}, nil
}

func TestKVStoreCommitOrder(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := NewKVStore(be)

	require.NoError(t, s.Write(ctx, "gpon", "ponip", "b", "1", false))
	require.NoError(t, s.Write(ctx, "gpon", "ponip", "a", "2", false))
	assert.Empty(t, be.order)
	assert.Equal(t, 2, s.Pending())

	require.NoError(t, s.Write(ctx, "gpon", "ponip", "c", "3", true))
	assert.Equal(t, []string{"gpon/ponip/b", "gpon/ponip/a", "gpon/ponip/c"}, be.order)
	assert.Equal(t, 0, s.Pending())

	v, err := s.Read(ctx, "gpon", "ponip", "a")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestKVStoreRestageKeepsPosition(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	s := NewKVStore(be)

	require.NoError(t, s.Write(ctx, "gpon", "ponip", "x", "1", false))
	require.NoError(t, s.Write(ctx, "gpon", "ponip", "y", "1", false))
	require.NoError(t, s.Write(ctx, "gpon", "ponip", "x", "5", true))
	assert.Equal(t, []string{"gpon/ponip/x", "gpon/ponip/y"}, be.order)
	assert.Equal(t, "5", be.data["gpon/ponip/x"])
}

func TestKVStoreCommitFailure(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	be.failKey = "gpon/ponip/b"
	s := NewKVStore(be)

	require.NoError(t, s.Write(ctx, "gpon", "ponip", "a", "1", false))
	require.NoError(t, s.Write(ctx, "gpon", "ponip", "b", "2", false))
	err := s.Write(ctx, "gpon", "ponip", "c", "3", true)
	require.Error(t, err)

	// written keys stay written, the rest waits for the next commit
	assert.Equal(t, []string{"gpon/ponip/a"}, be.order)
	assert.Equal(t, 2, s.Pending())

	be.failKey = ""
	require.NoError(t, s.Write(ctx, "gpon", "ponip", "d", "4", true))
	assert.Equal(t, []string{"gpon/ponip/a", "gpon/ponip/b", "gpon/ponip/c", "gpon/ponip/d"}, be.order)
}

func TestKVStoreReadMissing(t *testing.T) {
	s := NewKVStore(newFakeBackend())
	_, err := s.Read(context.Background(), "gpon", "ponip", "cpi")
	var nf *adperrors.ErrNotFound
	assert.True(t, errors.As(err, &nf))
}
