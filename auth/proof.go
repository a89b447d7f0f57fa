// Copyright (C) 2025 skw-network
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package auth implements the ownership-proof and usage-certification
// primitives that gate access to a stored share (spec.md §4.5).
package auth

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

// ErrValidationFailed is returned when a Proof's signature does not verify.
var ErrValidationFailed = errors.New("auth: proof validation failed")

// Proof is an Ed25519 self-proveable proof: a 32-byte payload (normally a
// credential hash) and the service's signature over it.
type Proof struct {
	Payload   [32]byte `json:"payload"`
	Signature [64]byte `json:"signature"`
}

// GenerateProof signs payload under secretKey, issuing a Proof the holder can
// present back to the service. secretKey is an Ed25519 seed (32 bytes).
func GenerateProof(secretKey [32]byte, payload [32]byte) (Proof, error) {
	priv := ed25519.NewKeyFromSeed(secretKey[:])
	sig := ed25519.Sign(priv, payload[:])
	var out Proof
	out.Payload = payload
	copy(out.Signature[:], sig)
	return out, nil
}

// VerifierKey derives the Ed25519 public key corresponding to secretKey.
func VerifierKey(secretKey [32]byte) ed25519.PublicKey {
	priv := ed25519.NewKeyFromSeed(secretKey[:])
	return priv.Public().(ed25519.PublicKey)
}

// VerifyProof checks proof's signature under publicKey.
func VerifyProof(publicKey ed25519.PublicKey, proof Proof) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("auth: invalid verifier key size %d", len(publicKey))
	}
	if !ed25519.Verify(publicKey, proof.Payload[:], proof.Signature[:]) {
		return ErrValidationFailed
	}
	return nil
}
