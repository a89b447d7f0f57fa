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
	"crypto/sha256"
	"fmt"

	"github.com/skw-network/tss-node/internal/config"
)

// EmailOwnership issues and verifies the email-delivered HOTP ownership
// proof (spec.md §4.5's "primary" proof), ported from
// original_source/crates/skw-mpc-auth/src/auth.rs.
type EmailOwnership struct {
	secret          [32]byte
	timeDiscrepancy uint64
}

// NewEmailOwnership builds an EmailOwnership prover from cfg and the raw
// secret bytes resolved from cfg.SecretEnv by the caller.
func NewEmailOwnership(cfg *config.HOTPConfig, secret [32]byte) *EmailOwnership {
	discrepancy := uint64(1)
	if cfg != nil && cfg.TimeDiscrepancy > 0 {
		discrepancy = uint64(cfg.TimeDiscrepancy)
	}
	return &EmailOwnership{secret: secret, timeDiscrepancy: discrepancy}
}

// IssueCode returns the current HOTP code for presentation to the email
// holder out of band (e.g. in an email body).
func (e *EmailOwnership) IssueCode() (string, error) {
	return Code(e.secret, timeCounter(0))
}

// VerifyAndProve checks code against the accepted time window and, if it
// matches, mints a Proof over Blake2s-free sha256(email) so the credential
// itself never has to be re-disclosed to later verifiers. serviceKey is the
// ownership-verifier's Ed25519 seed.
func (e *EmailOwnership) VerifyAndProve(serviceKey [32]byte, email, code string) (Proof, error) {
	if !VerifyCode(e.secret, code, e.timeDiscrepancy, 0) {
		return Proof{}, ErrBadCode
	}
	payload := sha256.Sum256([]byte(email))
	proof, err := GenerateProof(serviceKey, payload)
	if err != nil {
		return Proof{}, fmt.Errorf("auth: issue email ownership proof: %w", err)
	}
	return proof, nil
}
