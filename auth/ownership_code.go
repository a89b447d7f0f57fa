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
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ErrWrongSecretSize is returned when a base32 HOTP/TOTP secret does not
// decode to 32 raw bytes, mirroring original_source's MpcAuthError::WrongSecretSize.
var ErrWrongSecretSize = errors.New("auth: wrong secret size")

// ErrBadCode is returned when a presented code does not match any code in
// the accepted time window.
var ErrBadCode = errors.New("auth: bad code")

const secretLen = 32

// codePeriodSeconds is the RFC 6238 time-step; the email ownership proof
// treats its code-lifetime as a single step of this duration, the GA
// ownership proof uses the standard 30s step.
const codePeriodSeconds = 30

// DecodeSecret decodes a base32 (RFC 4648, padded) secret string into its
// raw 32-byte form, as produced by EncodeSecret.
func DecodeSecret(secret string) ([32]byte, error) {
	var out [32]byte
	decoded, err := base32.StdEncoding.DecodeString(secret)
	if err != nil {
		return out, fmt.Errorf("auth: %w: %w", ErrWrongSecretSize, err)
	}
	if len(decoded) != secretLen {
		return out, ErrWrongSecretSize
	}
	copy(out[:], decoded)
	return out, nil
}

// EncodeSecret encodes a 32-byte secret into its base32 presentation form.
func EncodeSecret(secret [32]byte) string {
	return base32.StdEncoding.EncodeToString(secret[:])
}

// timeCounter returns the RFC 6238 time-step counter for t, or the current
// one if t is zero — the get_time(0) convention from original_source.
func timeCounter(t uint64) uint64 {
	if t == 0 {
		return uint64(time.Now().Unix()) / codePeriodSeconds
	}
	return t
}

// Code computes the 6-digit HOTP/TOTP code for secret at time-step counter.
// This is a direct RFC 4226/6238 HMAC-SHA1-truncate port of
// original_source/crates/skw-mpc-auth/src/auth.rs's MpcAuth::get_code.
func Code(secret [32]byte, counter uint64) (string, error) {
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], counter)

	mac := hmac.New(sha1.New, secret[:])
	mac.Write(counterBytes[:])
	hash := mac.Sum(nil)

	offset := hash[len(hash)-1] & 0x0F
	truncated := binary.BigEndian.Uint32(hash[offset : offset+4])
	truncated &= 0x7FFFFFFF

	code := truncated % 1_000_000
	return fmt.Sprintf("%06d", code), nil
}

// VerifyCode checks code against secret across [now-discrepancy, now+discrepancy]
// time steps, following original_source's verify_code sliding window.
func VerifyCode(secret [32]byte, code string, discrepancy uint64, at uint64) bool {
	t := timeCounter(at)

	lower := uint64(0)
	if t > discrepancy {
		lower = t - discrepancy
	}
	upper := t + discrepancy

	for step := lower; step <= upper; step++ {
		candidate, err := Code(secret, step)
		if err == nil && candidate == code {
			return true
		}
	}
	return false
}
