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

// Package protocol defines the structs published to consumers of the
// tree: per-version snapshots of the commitment and their signed
// counterparts, with a compact binary encoding.
package protocol

import (
	"bytes"

	"github.com/cryptotree/cryptotree/crypto/hashing"
	"github.com/cryptotree/cryptotree/crypto/sign"
	"github.com/cryptotree/cryptotree/log"
	"github.com/hashicorp/go-msgpack/codec"
)

// Snapshot is published after every successful insertion. Version is
// the insertion sequence number, KeyDigest the digest of the inserted
// key and Commitment the root digest covering the whole dataset at
// that version.
type Snapshot struct {
	Version    uint64
	KeyDigest  hashing.Digest
	Commitment hashing.Digest
}

// SignedSnapshot pairs a snapshot with a signature over its encoding,
// so consumers can authenticate published commitments.
type SignedSnapshot struct {
	Snapshot  *Snapshot
	Signature []byte
}

func (b *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
	if err := encoder.Encode(b); err != nil {
		log.Infof("Failed to encode snapshot: %v", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Snapshot) Decode(msg []byte) error {
	reader := bytes.NewReader(msg)
	decoder := codec.NewDecoder(reader, &codec.MsgpackHandle{})
	if err := decoder.Decode(b); err != nil {
		log.Infof("Failed to decode snapshot: %v", err)
		return err
	}
	return nil
}

// NewSignedSnapshot signs the encoded snapshot with the given signer.
func NewSignedSnapshot(snapshot *Snapshot, signer sign.Signer) (*SignedSnapshot, error) {
	encoded, err := snapshot.Encode()
	if err != nil {
		return nil, err
	}
	signature, err := signer.Sign(encoded)
	if err != nil {
		return nil, err
	}
	return &SignedSnapshot{Snapshot: snapshot, Signature: signature}, nil
}

// VerifySignature checks the snapshot signature with the given signer.
func (b *SignedSnapshot) VerifySignature(signer sign.Signer) (bool, error) {
	encoded, err := b.Snapshot.Encode()
	if err != nil {
		return false, err
	}
	return signer.Verify(encoded, b.Signature)
}

func (b *SignedSnapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf, &codec.MsgpackHandle{})
	if err := encoder.Encode(b); err != nil {
		log.Infof("Failed to encode signed snapshot: %v", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *SignedSnapshot) Decode(msg []byte) error {
	reader := bytes.NewReader(msg)
	decoder := codec.NewDecoder(reader, &codec.MsgpackHandle{})
	if err := decoder.Decode(b); err != nil {
		log.Infof("Failed to decode signed snapshot: %v", err)
		return err
	}
	return nil
}

// AuditStepResult is one level of a MembershipResult audit path.
type AuditStepResult struct {
	Record  map[string]interface{}
	Height  int
	Side    string
	Sibling hashing.Digest
}

// MembershipResult is the wire form of a membership proof. It carries
// the proof's public parts with plain types, so consumers can decode
// it without the tree packages; avl.ToMembershipProof rebuilds a
// verifiable proof from it.
type MembershipResult struct {
	Key          string
	TargetLeft   hashing.Digest
	TargetRight  hashing.Digest
	TargetHeight int
	AuditPath    []AuditStepResult
}

// Record values must come back as strings, not raw bytes, for the
// digest replay to match.
func membershipHandle() *codec.MsgpackHandle {
	return &codec.MsgpackHandle{RawToString: true}
}

func (b *MembershipResult) Encode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := codec.NewEncoder(&buf, membershipHandle())
	if err := encoder.Encode(b); err != nil {
		log.Infof("Failed to encode membership result: %v", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *MembershipResult) Decode(msg []byte) error {
	reader := bytes.NewReader(msg)
	decoder := codec.NewDecoder(reader, membershipHandle())
	if err := decoder.Decode(b); err != nil {
		log.Infof("Failed to decode membership result: %v", err)
		return err
	}
	return nil
}
