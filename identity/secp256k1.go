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

package identity

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1KeyPair implements KeyPair for secp256k1 keys. It exists for
// components that need to validate signatures made with the curve the
// threshold public key itself lives on (e.g. a client checking a combined
// signature out-of-band), not for the MPC rounds themselves — those go
// through mpc.RoundMachine and tss-lib directly.
type secp256k1KeyPair struct {
	privateKey *secp256k1.PrivateKey
	publicKey  *secp256k1.PublicKey
	id         string
}

// GenerateSecp256k1KeyPair generates a new secp256k1 key pair.
func GenerateSecp256k1KeyPair() (KeyPair, error) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return newSecp256k1KeyPair(privateKey), nil
}

func newSecp256k1KeyPair(privateKey *secp256k1.PrivateKey) *secp256k1KeyPair {
	publicKey := privateKey.PubKey()
	hash := sha256.Sum256(publicKey.SerializeCompressed())
	return &secp256k1KeyPair{
		privateKey: privateKey,
		publicKey:  publicKey,
		id:         hex.EncodeToString(hash[:8]),
	}
}

func (kp *secp256k1KeyPair) PublicKey() crypto.PublicKey   { return kp.publicKey.ToECDSA() }
func (kp *secp256k1KeyPair) PrivateKey() crypto.PrivateKey { return kp.privateKey.ToECDSA() }
func (kp *secp256k1KeyPair) Type() KeyType                 { return KeyTypeSecp256k1 }
func (kp *secp256k1KeyPair) ID() string                    { return kp.id }

func (kp *secp256k1KeyPair) Sign(message []byte) ([]byte, error) {
	hash := sha256.Sum256(message)
	r, s, err := ecdsa.Sign(rand.Reader, kp.privateKey.ToECDSA(), hash[:])
	if err != nil {
		return nil, err
	}
	return serializeSignature(r, s), nil
}

func (kp *secp256k1KeyPair) Verify(message, signature []byte) error {
	hash := sha256.Sum256(message)
	r, s, err := deserializeSignature(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !ecdsa.Verify(kp.publicKey.ToECDSA(), hash[:], r, s) {
		return ErrInvalidSignature
	}
	return nil
}

func serializeSignature(r, s *big.Int) []byte {
	rBytes := r.Bytes()
	sBytes := s.Bytes()

	signature := make([]byte, 64)
	copy(signature[32-len(rBytes):32], rBytes)
	copy(signature[64-len(sBytes):64], sBytes)
	return signature
}

func deserializeSignature(data []byte) (*big.Int, *big.Int, error) {
	if len(data) != 64 {
		return nil, nil, ErrInvalidSignature
	}
	r := new(big.Int).SetBytes(data[:32])
	s := new(big.Int).SetBytes(data[32:])
	return r, s, nil
}
