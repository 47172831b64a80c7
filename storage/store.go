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

// Package storage defines the key-value store used to keep the
// version-indexed log of published commitments.
package storage

import "errors"

// Table prefixes. A store keyspace is partitioned by a one byte prefix
// prepended to every key.
const (
	SnapshotPrefix = byte(0x0)
)

var (
	ErrKeyNotFound = errors.New("key not found")
)

type Store interface {
	Mutate(mutations []*Mutation) error
	Get(prefix byte, key []byte) (*KVPair, error)
	GetRange(prefix byte, start, end []byte) (KVRange, error)
	GetLast(prefix byte) (*KVPair, error)
	Close() error
}

type Mutation struct {
	Prefix     byte
	Key, Value []byte
}

func NewMutation(prefix byte, key, value []byte) *Mutation {
	return &Mutation{prefix, key, value}
}

type KVPair struct {
	Key, Value []byte
}

func NewKVPair(key, value []byte) KVPair {
	return KVPair{Key: key, Value: value}
}

type KVRange []KVPair
