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

	"golang.org/x/crypto/blake2s"
)

// Header carries two mandatory ownership proofs and an optional third
// (spec.md §3). Both mandatory proofs must verify for admission; the
// original source has a call site where validation is a literal
// true/false guard — this is exactly the bug spec.md §9 calls out, and
// Validate here always performs the real check.
type Header struct {
	Primary    Proof  `json:"primary"`
	Secondary  Proof  `json:"secondary"`
	Additional *Proof `json:"additional,omitempty"`
}

// Validate verifies every proof present in h under the service's ownership
// verifier key. Both Primary and Secondary must verify; Additional, if
// present, must verify too.
func (h Header) Validate(verifierKey ed25519.PublicKey) error {
	if err := VerifyProof(verifierKey, h.Primary); err != nil {
		return err
	}
	if err := VerifyProof(verifierKey, h.Secondary); err != nil {
		return err
	}
	if h.Additional != nil {
		if err := VerifyProof(verifierKey, *h.Additional); err != nil {
			return err
		}
	}
	return nil
}

// ShareID derives the share_id this header refers to: Blake2s256(primary.payload || secondary.payload).
func (h Header) ShareID() ([32]byte, error) {
	hasher, err := blake2s.New256(nil)
	if err != nil {
		return [32]byte{}, err
	}
	hasher.Write(h.Primary.Payload[:])
	hasher.Write(h.Secondary.Payload[:])
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out, nil
}
