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

package auth

import (
	"crypto/ed25519"
	"fmt"

	"golang.org/x/crypto/blake2s"
)

// IssueUsageCertification certifies that an already-verified ownership
// proof authorizes use of the share identified by keygenID, ported from
// original_source/crates/skw-mpc-auth/src/usage/mpc.rs's
// MpcUsageCertification::issue_usage_certification. ownershipVerifierKey
// re-checks ownershipProof before certifying; usageServiceKey signs the
// resulting linkage hash.
func IssueUsageCertification(ownershipVerifierKey ed25519.PublicKey, usageServiceKey [32]byte, keygenID [32]byte, ownershipProof Proof) (Proof, error) {
	if err := VerifyProof(ownershipVerifierKey, ownershipProof); err != nil {
		return Proof{}, fmt.Errorf("auth: ownership proof invalid, refusing to certify usage: %w", err)
	}

	linkage, err := linkageHash(ownershipProof.Payload, keygenID)
	if err != nil {
		return Proof{}, err
	}

	proof, err := GenerateProof(usageServiceKey, linkage)
	if err != nil {
		return Proof{}, fmt.Errorf("auth: issue usage certification: %w", err)
	}
	return proof, nil
}

// VerifyUsageCertification checks that usageCertification was issued over
// Blake2s256(credentialHash || keygenID) and verifies under
// usageVerifierKey, ported from the same file's
// verify_usage_certification.
func VerifyUsageCertification(usageVerifierKey ed25519.PublicKey, keygenID [32]byte, credentialHash [32]byte, usageCertification Proof) error {
	linkage, err := linkageHash(credentialHash, keygenID)
	if err != nil {
		return err
	}
	if linkage != usageCertification.Payload {
		return ErrValidationFailed
	}
	return VerifyProof(usageVerifierKey, usageCertification)
}

func linkageHash(credentialHash [32]byte, keygenID [32]byte) ([32]byte, error) {
	hasher, err := blake2s.New256(nil)
	if err != nil {
		return [32]byte{}, fmt.Errorf("auth: linkage hash: %w", err)
	}
	hasher.Write(credentialHash[:])
	hasher.Write(keygenID[:])
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
