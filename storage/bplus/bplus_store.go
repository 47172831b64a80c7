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

// Package bplus implements an in-memory storage.Store on top of a
// B+ tree.
package bplus

import (
	"bytes"

	"github.com/cryptotree/cryptotree/storage"
	"github.com/google/btree"
)

type BPlusTreeStore struct {
	db *btree.BTree
}

func NewBPlusTreeStore() *BPlusTreeStore {
	return &BPlusTreeStore{btree.New(2)}
}

func (s *BPlusTreeStore) Mutate(mutations []*storage.Mutation) error {
	for _, m := range mutations {
		key := append([]byte{m.Prefix}, m.Key...)
		s.db.ReplaceOrInsert(KVItem{key, m.Value})
	}
	return nil
}

func (s BPlusTreeStore) Get(prefix byte, key []byte) (*storage.KVPair, error) {
	result := new(storage.KVPair)
	result.Key = key
	k := append([]byte{prefix}, key...)
	item := s.db.Get(KVItem{k, nil})
	if item == nil {
		return nil, storage.ErrKeyNotFound
	}
	result.Value = item.(KVItem).Value
	return result, nil
}

func (s BPlusTreeStore) GetRange(prefix byte, start, end []byte) (storage.KVRange, error) {
	result := make(storage.KVRange, 0)
	startKey := append([]byte{prefix}, start...)
	endKey := append([]byte{prefix}, end...)
	s.db.AscendGreaterOrEqual(KVItem{startKey, nil}, func(i btree.Item) bool {
		key := i.(KVItem).Key
		if bytes.Compare(key, endKey) > 0 {
			return false
		}
		result = append(result, storage.KVPair{Key: key[1:], Value: i.(KVItem).Value})
		return true
	})
	return result, nil
}

func (s BPlusTreeStore) GetLast(prefix byte) (*storage.KVPair, error) {
	result := new(storage.KVPair)
	s.db.DescendLessOrEqual(KVItem{[]byte{prefix, 0xff}, nil}, func(i btree.Item) bool {
		item := i.(KVItem)
		if len(item.Key) == 0 || item.Key[0] != prefix {
			return false
		}
		result.Key = item.Key[1:]
		result.Value = item.Value
		return false
	})
	if result.Value == nil && result.Key == nil {
		return nil, storage.ErrKeyNotFound
	}
	return result, nil
}

func (s BPlusTreeStore) Close() error {
	s.db.Clear(false)
	return nil
}

type KVItem struct {
	Key, Value []byte
}

func (p KVItem) Less(b btree.Item) bool {
	return bytes.Compare(p.Key, b.(KVItem).Key) < 0
}
