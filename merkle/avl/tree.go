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

// Package avl implements a self-balancing binary search tree whose
// every node carries a digest over its subtree. The root digest acts as
// a commitment over the whole dataset: any change of content or shape
// changes it, and membership of a single record can be proven against
// it without shipping the tree.
package avl

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/cryptotree/cryptotree/crypto/hashing"
	"github.com/cryptotree/cryptotree/log"
	"github.com/cryptotree/cryptotree/metrics"
	"github.com/cryptotree/cryptotree/protocol"
	"github.com/cryptotree/cryptotree/storage"
	"github.com/cryptotree/cryptotree/util"
)

// ErrNoSnapshotLog is returned by snapshot accessors when the tree was
// built without a backing store.
var ErrNoSnapshotLog = errors.New("tree has no snapshot log")

// Tree is the authenticated index. A single lock serializes insertions
// against reads: rotations reassign children in steps that must never
// be observed half-done.
type Tree struct {
	lock    sync.RWMutex
	hasherF func() hashing.Hasher
	hasher  hashing.Hasher

	root       *node
	size       uint64
	commitment hashing.Digest

	store storage.Store
}

// NewTree creates an empty tree deriving digests with hashers built by
// hasherF. The hash function is fixed for the tree lifetime.
func NewTree(hasherF func() hashing.Hasher) *Tree {
	return &Tree{
		hasherF: hasherF,
		hasher:  hasherF(),
	}
}

// NewTreeWithStore creates an empty tree that additionally records a
// protocol.Snapshot per successful insertion into the given store,
// keyed by version.
func NewTreeWithStore(hasherF func() hashing.Hasher, store storage.Store) *Tree {
	tree := NewTree(hasherF)
	tree.store = store
	return tree
}

// Add inserts a record keyed by its id field. It returns true when a
// new node was added and false when the key was already present, in
// which case the tree is left untouched. A record without a valid key
// fails with ErrInvalidRecord before any mutation.
func (t *Tree) Add(record Record) (bool, error) {
	key, err := record.Key()
	if err != nil {
		return false, err
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	start := time.Now()

	root, inserted, err := t.insert(t.root, record, key)
	if err != nil {
		return false, err
	}
	if !inserted {
		log.Debugf("Rejected duplicate key %s", key)
		metrics.CryptotreeDuplicateAddTotal.Inc()
		return false, nil
	}

	t.root = root
	t.size++
	t.commitment = root.digest

	metrics.CryptotreeAddTotal.Inc()
	metrics.CryptotreeAddDurationSeconds.Observe(time.Since(start).Seconds())
	log.Debugf("Added key %s at version %d", key, t.size-1)

	if t.store != nil {
		if err := t.publishSnapshot(key); err != nil {
			return true, err
		}
	}
	return true, nil
}

// insert descends to the empty slot for key and, unwinding, refreshes
// height and digest of every ancestor before rebalancing it. A node
// digest is recomputed only after its children's digests are final.
func (t *Tree) insert(n *node, record Record, key string) (*node, bool, error) {
	if n == nil {
		fresh, err := newNode(record, key, t.hasher)
		if err != nil {
			return nil, false, err
		}
		return fresh, true, nil
	}

	switch {
	case key == n.key:
		return n, false, nil
	case key < n.key:
		child, inserted, err := t.insert(n.left, record, key)
		if err != nil || !inserted {
			return n, false, err
		}
		n.left = child
	default:
		child, inserted, err := t.insert(n.right, record, key)
		if err != nil || !inserted {
			return n, false, err
		}
		n.right = child
	}

	n.updateHeight()
	if err := n.updateDigest(t.hasher); err != nil {
		return nil, false, err
	}
	n, err := t.rebalance(n)
	return n, true, err
}

// rebalance applies the applicable rotation when the subtree root got
// out of balance. An inner child leaning the opposite way forces the
// double rotation; a factor of exactly zero keeps the single one.
func (t *Tree) rebalance(n *node) (*node, error) {
	factor := n.balanceFactor()

	if factor > 1 {
		if n.left.balanceFactor() < 0 {
			left, err := t.rotateLeft(n.left)
			if err != nil {
				return nil, err
			}
			n.left = left
		}
		return t.rotateRight(n)
	}

	if factor < -1 {
		if n.right.balanceFactor() > 0 {
			right, err := t.rotateRight(n.right)
			if err != nil {
				return nil, err
			}
			n.right = right
		}
		return t.rotateLeft(n)
	}

	return n, nil
}

func (t *Tree) rotateRight(z *node) (*node, error) {
	y := z.left

	z.left = y.right
	y.right = z

	z.updateHeight()
	y.updateHeight()

	// z is the child after the rotation, so its digest goes first
	if err := z.updateDigest(t.hasher); err != nil {
		return nil, err
	}
	if err := y.updateDigest(t.hasher); err != nil {
		return nil, err
	}
	return y, nil
}

func (t *Tree) rotateLeft(z *node) (*node, error) {
	y := z.right

	z.right = y.left
	y.left = z

	z.updateHeight()
	y.updateHeight()

	if err := z.updateDigest(t.hasher); err != nil {
		return nil, err
	}
	if err := y.updateDigest(t.hasher); err != nil {
		return nil, err
	}
	return y, nil
}

// Search returns the record stored under key, or false when the key is
// not present.
func (t *Tree) Search(key string) (Record, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	metrics.CryptotreeSearchTotal.Inc()

	n := t.root
	for n != nil {
		switch {
		case key == n.key:
			return n.record, true
		case key < n.key:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil, false
}

// VerifyIntegrity recomputes every node digest from its current
// children and height and compares it with the cached one, children
// first. It returns false on the first mismatch. This is a self-check
// of internal consistency, independent of any published commitment.
func (t *Tree) VerifyIntegrity() bool {
	t.lock.RLock()
	defer t.lock.RUnlock()

	metrics.CryptotreeIntegrityChecksTotal.Inc()

	if verifyNode(t.root, t.hasherF()) {
		return true
	}
	metrics.CryptotreeIntegrityFailuresTotal.Inc()
	return false
}

func verifyNode(n *node, hasher hashing.Hasher) bool {
	if n == nil {
		return true
	}
	if !verifyNode(n.left, hasher) || !verifyNode(n.right, hasher) {
		return false
	}
	expected, err := computeDigest(hasher, n.record, n.leftDigest(), n.rightDigest(), n.height)
	if err != nil || !bytes.Equal(expected, n.digest) {
		log.Infof("Digest mismatch at key %s", n.key)
		return false
	}
	return true
}

// ProveMembership builds a membership proof for key, or reports false
// when the key is not in the tree. The audit path is ordered root to
// target and always records an entry per visited level, using the
// sentinel for an absent sibling, so replay is positionally
// unambiguous. Its length is bounded by the tree height.
func (t *Tree) ProveMembership(key string) (*MembershipProof, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	metrics.CryptotreeMembershipTotal.Inc()

	path := make([]AuditStep, 0, nodeHeight(t.root))
	n := t.root
	for n != nil {
		if key == n.key {
			return &MembershipProof{
				Key:          key,
				TargetLeft:   n.leftDigest(),
				TargetRight:  n.rightDigest(),
				TargetHeight: n.height,
				AuditPath:    path,
				hasherF:      t.hasherF,
			}, true
		}
		if key < n.key {
			path = append(path, AuditStep{
				Record:  n.record,
				Height:  n.height,
				Side:    SideRight,
				Sibling: n.rightDigest(),
			})
			n = n.left
		} else {
			path = append(path, AuditStep{
				Record:  n.record,
				Height:  n.height,
				Side:    SideLeft,
				Sibling: n.leftDigest(),
			})
			n = n.right
		}
	}
	return nil, false
}

// Size returns the number of stored records.
func (t *Tree) Size() uint64 {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.size
}

// Height returns the current tree height, 0 when empty.
func (t *Tree) Height() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return nodeHeight(t.root)
}

// Commitment returns the digest authenticating the whole dataset: the
// root digest, or the sentinel for an empty tree.
func (t *Tree) Commitment() hashing.Digest {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if t.root == nil {
		return hashing.Digest(absentDigest)
	}
	// copied so callers cannot reach the root digest through it
	commitment := make(hashing.Digest, len(t.commitment))
	copy(commitment, t.commitment)
	return commitment
}

// Ascend walks the records in ascending key order until fn returns
// false.
func (t *Tree) Ascend(fn func(Record) bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	ascend(t.root, fn)
}

func ascend(n *node, fn func(Record) bool) bool {
	if n == nil {
		return true
	}
	if !ascend(n.left, fn) {
		return false
	}
	if !fn(n.record) {
		return false
	}
	return ascend(n.right, fn)
}

func (t *Tree) publishSnapshot(key string) error {
	snapshot := &protocol.Snapshot{
		Version:    t.size - 1,
		KeyDigest:  t.hasher.Do([]byte(key)),
		Commitment: t.commitment,
	}
	value, err := snapshot.Encode()
	if err != nil {
		return err
	}
	return t.store.Mutate([]*storage.Mutation{
		storage.NewMutation(storage.SnapshotPrefix, util.Uint64AsBytes(snapshot.Version), value),
	})
}

// SnapshotAt returns the snapshot published at the given version.
func (t *Tree) SnapshotAt(version uint64) (*protocol.Snapshot, error) {
	if t.store == nil {
		return nil, ErrNoSnapshotLog
	}
	t.lock.RLock()
	defer t.lock.RUnlock()

	pair, err := t.store.Get(storage.SnapshotPrefix, util.Uint64AsBytes(version))
	if err != nil {
		return nil, err
	}
	snapshot := new(protocol.Snapshot)
	if err := snapshot.Decode(pair.Value); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// LatestSnapshot returns the most recently published snapshot.
func (t *Tree) LatestSnapshot() (*protocol.Snapshot, error) {
	if t.store == nil {
		return nil, ErrNoSnapshotLog
	}
	t.lock.RLock()
	defer t.lock.RUnlock()

	pair, err := t.store.GetLast(storage.SnapshotPrefix)
	if err != nil {
		return nil, err
	}
	snapshot := new(protocol.Snapshot)
	if err := snapshot.Decode(pair.Value); err != nil {
		return nil, err
	}
	return snapshot, nil
}
