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

// Package hashing implements the hashers used to derive node digests
// and tree commitments.
package hashing

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Digest is the output of a hasher.
type Digest []byte

// Hasher is the interface implemented by all supported hash functions.
// The digest function is an injected configuration: tree instances take
// a hasher factory so the hash function stays fixed per tree and tests
// can plug in cheap hashers.
type Hasher interface {
	Do(...[]byte) Digest
	Len() uint16
}

type KeyHasher struct {
	underlying hash.Hash
}

// NewSha256Hasher implements the Hasher interface and computes a 256 bit
// hash function using the SHA256 hashing algorithm.
func NewSha256Hasher() Hasher {
	return &KeyHasher{underlying: sha256.New()}
}

// NewBlake2bHasher implements the Hasher interface and computes a 256 bit
// hash function using the BLAKE2b hashing algorithm.
func NewBlake2bHasher() Hasher {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Sprintf("Error creating BLAKE2b hasher %v", err))
	}
	return &KeyHasher{underlying: hasher}
}

// Do function hashes input data using the hashing function given by the KeyHasher.
func (s *KeyHasher) Do(data ...[]byte) Digest {
	s.underlying.Reset()
	for i := 0; i < len(data); i++ {
		_, _ = s.underlying.Write(data[i])
	}
	return s.underlying.Sum(nil)[:]
}

// Len function returns the size of the resulting hash.
func (s KeyHasher) Len() uint16 { return uint16(s.underlying.Size()) * 8 }

// XorHasher implements the Hasher interface and computes a 8 bit hash
// function. Handy for testing hash tree implementations.
type XorHasher struct{}

func NewXorHasher() Hasher {
	return new(XorHasher)
}

// Do function hashes input data using the XOR hash function.
func (x XorHasher) Do(data ...[]byte) Digest {
	var result byte
	for _, elem := range data {
		var sum byte
		for _, b := range elem {
			sum = sum ^ b
		}
		result = result ^ sum
	}
	return []byte{result}
}

// Len function returns the size of the resulting hash.
func (x XorHasher) Len() uint16 { return uint16(8) }
