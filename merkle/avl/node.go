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

package avl

import (
	"encoding/hex"
	"errors"

	"github.com/cryptotree/cryptotree/crypto/hashing"
	"github.com/cryptotree/cryptotree/encoding/canonical"
)

// KeyField is the record field holding the unique, totally ordered key.
const KeyField = "id"

// absentDigest is the sentinel written into a hash pre-image in place
// of a missing child, and returned as the commitment of an empty tree.
const absentDigest = "0"

// ErrInvalidRecord is returned when a record is not a structured map
// carrying a string key field.
var ErrInvalidRecord = errors.New("record must be a map with a string 'id' field")

// Record is the opaque payload stored at every node. It must carry a
// non-empty string under KeyField. Records are treated as immutable
// once inserted: mutating one afterwards invalidates its node digest.
type Record map[string]interface{}

// Key extracts the record key or reports the record as invalid.
func (r Record) Key() (string, error) {
	if r == nil {
		return "", ErrInvalidRecord
	}
	value, ok := r[KeyField]
	if !ok {
		return "", ErrInvalidRecord
	}
	key, ok := value.(string)
	if !ok || key == "" {
		return "", ErrInvalidRecord
	}
	return key, nil
}

type node struct {
	key    string
	record Record

	left, right *node
	height      int
	digest      hashing.Digest
}

func newNode(record Record, key string, hasher hashing.Hasher) (*node, error) {
	n := &node{
		key:    key,
		record: record,
		height: 1,
	}
	if err := n.updateDigest(hasher); err != nil {
		return nil, err
	}
	return n, nil
}

func nodeHeight(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func (n *node) leftDigest() hashing.Digest {
	if n.left == nil {
		return nil
	}
	return n.left.digest
}

func (n *node) rightDigest() hashing.Digest {
	if n.right == nil {
		return nil
	}
	return n.right.digest
}

func (n *node) updateHeight() {
	lh, rh := nodeHeight(n.left), nodeHeight(n.right)
	if lh > rh {
		n.height = lh + 1
	} else {
		n.height = rh + 1
	}
}

func (n *node) balanceFactor() int {
	return nodeHeight(n.left) - nodeHeight(n.right)
}

// updateDigest recomputes the cached digest from the current record,
// children and height. It must run after any change to this node's
// children or height, children first, so a node digest is never derived
// from a stale child digest.
func (n *node) updateDigest(hasher hashing.Hasher) error {
	digest, err := computeDigest(hasher, n.record, n.leftDigest(), n.rightDigest(), n.height)
	if err != nil {
		return err
	}
	n.digest = digest
	return nil
}

// computeDigest derives a node digest from its pre-image: the canonical
// encoding of the record, both child digests and the height. This
// encoding is the cross-implementation hash contract.
func computeDigest(hasher hashing.Hasher, record Record, left, right hashing.Digest, height int) (hashing.Digest, error) {
	preimage, err := canonical.Marshal(map[string]interface{}{
		"transaction": map[string]interface{}(record),
		"left_hash":   digestOrAbsent(left),
		"right_hash":  digestOrAbsent(right),
		"height":      height,
	})
	if err != nil {
		return nil, err
	}
	return hasher.Do(preimage), nil
}

func digestOrAbsent(digest hashing.Digest) string {
	if digest == nil {
		return absentDigest
	}
	return hex.EncodeToString(digest)
}
