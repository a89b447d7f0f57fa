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

// GAOwnership issues and verifies the Google-Authenticator TOTP ownership
// proof (spec.md §4.5's "secondary" proof), ported from
// original_source/crates/skw-mpc-auth/src/auth.rs's ga_token path.
type GAOwnership struct {
	secret          [32]byte
	timeDiscrepancy uint64
	period          uint64
}

// NewGAOwnership builds a GAOwnership prover from cfg and the raw secret
// bytes resolved from cfg.SecretEnv by the caller.
func NewGAOwnership(cfg *config.TOTPConfig, secret [32]byte) *GAOwnership {
	discrepancy := uint64(1)
	period := uint64(30)
	if cfg != nil {
		if cfg.TimeDiscrepancy > 0 {
			discrepancy = uint64(cfg.TimeDiscrepancy)
		}
		if cfg.PeriodSeconds > 0 {
			period = uint64(cfg.PeriodSeconds)
		}
	}
	return &GAOwnership{secret: secret, timeDiscrepancy: discrepancy, period: period}
}

// Secret returns the base32 form of the shared secret, as presented to an
// authenticator app during enrollment.
func (g *GAOwnership) Secret() string { return EncodeSecret(g.secret) }

// VerifyAndProve checks code against the accepted time window and mints a
// Proof over sha256(accountID) under serviceKey.
func (g *GAOwnership) VerifyAndProve(serviceKey [32]byte, accountID, code string) (Proof, error) {
	if !VerifyCode(g.secret, code, g.timeDiscrepancy, 0) {
		return Proof{}, ErrBadCode
	}
	payload := sha256.Sum256([]byte(accountID))
	proof, err := GenerateProof(serviceKey, payload)
	if err != nil {
		return Proof{}, fmt.Errorf("auth: issue GA ownership proof: %w", err)
	}
	return proof, nil
}
