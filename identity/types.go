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

// Package identity provides the signing identity a node presents to its
// peers: an Ed25519 key pair (the node's persistent identity key; the
// transport does not sign requests with it), and a
// secp256k1 convenience key for components that need EC point arithmetic
// compatible with the threshold ECDSA public key itself.
package identity

import (
	"crypto"
	"errors"
)

// KeyType identifies the algorithm backing a KeyPair.
type KeyType string

const (
	KeyTypeEd25519   KeyType = "Ed25519"
	KeyTypeSecp256k1 KeyType = "Secp256k1"
)

// KeyPair is a signing identity: a public/private key pair that can sign and
// verify opaque byte messages and exposes a stable ID derived from the
// public key.
type KeyPair interface {
	PublicKey() crypto.PublicKey
	PrivateKey() crypto.PrivateKey
	Type() KeyType
	Sign(message []byte) ([]byte, error)
	Verify(message, signature []byte) error
	ID() string
}

// Common errors
var (
	ErrInvalidKeyType   = errors.New("identity: invalid key type")
	ErrInvalidKeyFormat = errors.New("identity: invalid key format")
	ErrInvalidSignature = errors.New("identity: invalid signature")
)
