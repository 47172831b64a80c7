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
	"bytes"

	"github.com/cryptotree/cryptotree/crypto/hashing"
	"github.com/cryptotree/cryptotree/protocol"
)

// Sides of an audit step, naming where the recorded sibling digest sits
// relative to the descent.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// AuditStep is one level of an audit path. Sibling hashes alone cannot
// be replayed, because every ancestor digest also covers that
// ancestor's own record and height; each step therefore carries the
// full pre-image of its level except the descending child digest, which
// the verifier recomputes.
type AuditStep struct {
	Record  Record
	Height  int
	Side    string
	Sibling hashing.Digest
}

// MembershipProof proves that a record belongs to the dataset behind a
// commitment. TargetLeft, TargetRight and TargetHeight complete the
// pre-image of the target node, whose record the verifier supplies.
// Verification needs no access to the tree.
type MembershipProof struct {
	Key          string
	TargetLeft   hashing.Digest
	TargetRight  hashing.Digest
	TargetHeight int
	AuditPath    []AuditStep

	hasherF func() hashing.Hasher
}

// NewMembershipProof assembles a proof from its parts, binding it to
// the hash function the tree was built with. It is meant for proofs
// received from elsewhere; proofs generated by ProveMembership come
// ready to verify.
func NewMembershipProof(key string, targetLeft, targetRight hashing.Digest, targetHeight int,
	auditPath []AuditStep, hasherF func() hashing.Hasher) *MembershipProof {
	return &MembershipProof{
		Key:          key,
		TargetLeft:   targetLeft,
		TargetRight:  targetRight,
		TargetHeight: targetHeight,
		AuditPath:    auditPath,
		hasherF:      hasherF,
	}
}

// ToMembershipResult translates a proof to the public struct
// protocol.MembershipResult for publication.
func ToMembershipResult(p *MembershipProof) *protocol.MembershipResult {
	steps := make([]protocol.AuditStepResult, len(p.AuditPath))
	for i, step := range p.AuditPath {
		steps[i] = protocol.AuditStepResult{
			Record:  step.Record,
			Height:  step.Height,
			Side:    step.Side,
			Sibling: step.Sibling,
		}
	}
	return &protocol.MembershipResult{
		Key:          p.Key,
		TargetLeft:   p.TargetLeft,
		TargetRight:  p.TargetRight,
		TargetHeight: p.TargetHeight,
		AuditPath:    steps,
	}
}

// ToMembershipProof translates a public protocol.MembershipResult back
// to a verifiable proof, binding it to the hash function the tree was
// built with.
func ToMembershipProof(mr *protocol.MembershipResult, hasherF func() hashing.Hasher) *MembershipProof {
	path := make([]AuditStep, len(mr.AuditPath))
	for i, step := range mr.AuditPath {
		path[i] = AuditStep{
			Record:  step.Record,
			Height:  step.Height,
			Side:    step.Side,
			Sibling: step.Sibling,
		}
	}
	return NewMembershipProof(mr.Key, mr.TargetLeft, mr.TargetRight, mr.TargetHeight, path, hasherF)
}

// Verify replays the digest chain from the given record up to the root
// and compares the result with the trusted commitment. Returns true
// only if the record, under this proof, reproduces the commitment
// exactly.
func (p *MembershipProof) Verify(record Record, commitment hashing.Digest) bool {
	key, err := record.Key()
	if err != nil || key != p.Key {
		return false
	}

	hasher := p.hasherF()
	digest, err := computeDigest(hasher, record, p.TargetLeft, p.TargetRight, p.TargetHeight)
	if err != nil {
		return false
	}

	// walk the audit path bottom-up, folding the running digest into
	// each ancestor's pre-image on the side the descent came from
	for i := len(p.AuditPath) - 1; i >= 0; i-- {
		step := p.AuditPath[i]
		switch step.Side {
		case SideRight:
			digest, err = computeDigest(hasher, step.Record, digest, step.Sibling, step.Height)
		case SideLeft:
			digest, err = computeDigest(hasher, step.Record, step.Sibling, digest, step.Height)
		default:
			return false
		}
		if err != nil {
			return false
		}
	}

	return bytes.Equal(digest, commitment)
}
