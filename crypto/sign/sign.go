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

// Package sign implements functionality to create signers, which are
// able to sign published commitments and verify signed ones.
package sign

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/ed25519"
)

// Signer is the interface implemented by any value that has Sign and Verify methods.
// Signers are able to sign messages and verify them using a signature.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	Verify(message, sig []byte) (bool, error)
}

type Ed25519Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewEd25519Signer creates an ed25519 signer with a freshly generated
// key pair.
func NewEd25519Signer() Signer {

	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}

	return &Ed25519Signer{
		privateKey,
		publicKey,
	}
}

// NewEd25519SignerFromKeys creates an ed25519 signer from existing keys,
// checking that the pair is usable before returning it.
func NewEd25519SignerFromKeys(privateKey ed25519.PrivateKey, publicKey ed25519.PublicKey) (Signer, error) {

	signer := &Ed25519Signer{
		privateKey,
		publicKey,
	}

	message := []byte("test message")
	sig, _ := signer.Sign(message)
	result, _ := signer.Verify(message, sig)
	if result != true {
		return nil, errors.New("key pair is unusable")
	}

	return signer, nil
}

func (s *Ed25519Signer) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.privateKey, message), nil
}

func (s *Ed25519Signer) Verify(message, sig []byte) (bool, error) {
	return ed25519.Verify(s.publicKey, message, sig), nil
}
