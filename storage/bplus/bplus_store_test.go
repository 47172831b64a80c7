/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package bplus

import (
	"testing"

	"github.com/cryptotree/cryptotree/storage"
	"github.com/cryptotree/cryptotree/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBPlusTreeStore() (*BPlusTreeStore, func()) {
	store := NewBPlusTreeStore()
	return store, func() {
		store.Close()
	}
}

func TestMutate(t *testing.T) {
	store, closeF := openBPlusTreeStore()
	defer closeF()

	tests := []struct {
		testname      string
		prefix        byte
		key, value    []byte
		expectedError error
	}{
		{"Mutate Key=Value", storage.SnapshotPrefix, []byte("Key"), []byte("Value"), nil},
	}

	for _, test := range tests {
		err := store.Mutate([]*storage.Mutation{
			storage.NewMutation(test.prefix, test.key, test.value),
		})
		require.Equalf(t, test.expectedError, err, "Error mutating in test: %s", test.testname)
		_, err = store.Get(test.prefix, test.key)
		require.Equalf(t, test.expectedError, err, "Error getting key in test: %s", test.testname)
	}
}

func TestGetExistentKey(t *testing.T) {
	store, closeF := openBPlusTreeStore()
	defer closeF()

	testKey := storage.NewKVPair([]byte("Key"), []byte("Value"))

	err := store.Mutate([]*storage.Mutation{
		storage.NewMutation(storage.SnapshotPrefix, testKey.Key, testKey.Value),
	})
	require.NoError(t, err)

	stored, err := store.Get(storage.SnapshotPrefix, testKey.Key)
	require.NoError(t, err)
	assert.Equal(t, testKey.Key, stored.Key, "The stored key does not match the original")
	assert.Equal(t, testKey.Value, stored.Value, "The stored value does not match the original")
}

func TestGetNonExistentKey(t *testing.T) {
	store, closeF := openBPlusTreeStore()
	defer closeF()

	_, err := store.Get(storage.SnapshotPrefix, []byte("Key"))
	require.Equal(t, storage.ErrKeyNotFound, err)
}

func TestGetRange(t *testing.T) {
	store, closeF := openBPlusTreeStore()
	defer closeF()

	var testCases = []struct {
		size       int
		start, end byte
	}{
		{40, 10, 50},
		{0, 1, 9},
		{11, 1, 20},
		{10, 40, 60},
		{0, 60, 100},
		{0, 20, 10},
	}

	prefix := storage.SnapshotPrefix
	for i := 10; i < 50; i++ {
		store.Mutate([]*storage.Mutation{
			storage.NewMutation(prefix, []byte{byte(i)}, []byte("Value")),
		})
	}

	for _, c := range testCases {
		slice, err := store.GetRange(prefix, []byte{c.start}, []byte{c.end})
		require.NoError(t, err)
		require.Equalf(t, c.size, len(slice), "Slice length invalid: expected %d, actual %d", c.size, len(slice))
	}
}

func TestGetLast(t *testing.T) {
	store, closeF := openBPlusTreeStore()
	defer closeF()

	// Empty table
	_, err := store.GetLast(storage.SnapshotPrefix)
	require.Equal(t, storage.ErrKeyNotFound, err)

	// Insert some versions
	for i := uint64(0); i < 10; i++ {
		err := store.Mutate([]*storage.Mutation{
			storage.NewMutation(storage.SnapshotPrefix, util.Uint64AsBytes(i), util.Uint64AsBytes(i)),
		})
		require.NoError(t, err)
	}

	latest, err := store.GetLast(storage.SnapshotPrefix)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), util.BytesAsUint64(latest.Key))
	assert.Equal(t, uint64(9), util.BytesAsUint64(latest.Value))
}
