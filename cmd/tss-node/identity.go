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

package main

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skw-network/tss-node/identity"
)

var identityKeyPath string

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Print this peer's Ed25519 identity, generating one if it doesn't exist yet",
	Long: `identity loads the Ed25519 signing identity at --key, creating and
persisting a fresh one if the file doesn't exist (identity.LoadOrGenerate),
and prints its id and public key. Run it once before "serve" to provision a
peer's identity ahead of time.`,
	RunE: runIdentity,
}

func init() {
	rootCmd.AddCommand(identityCmd)
	identityCmd.Flags().StringVar(&identityKeyPath, "key", "", "path to the identity's PEM file")
	_ = identityCmd.MarkFlagRequired("key")
}

func runIdentity(cmd *cobra.Command, args []string) error {
	kp, err := identity.LoadOrGenerate(identityKeyPath)
	if err != nil {
		return fmt.Errorf("load or generate identity: %w", err)
	}

	fmt.Printf("id:         %s\n", kp.ID())
	fmt.Printf("type:       %s\n", kp.Type())
	fmt.Printf("public_key: %s\n", hex.EncodeToString(publicKeyBytes(kp)))
	return nil
}

// publicKeyBytes recovers the raw public key bytes behind the crypto.PublicKey
// returned by KeyPair.PublicKey. identity.LoadOrGenerate only ever produces
// Ed25519 identities, but secp256k1KeyPair implements the same interface,
// so both concrete types are handled here.
func publicKeyBytes(kp identity.KeyPair) []byte {
	switch pub := kp.PublicKey().(type) {
	case ed25519.PublicKey:
		return []byte(pub)
	case *ecdsa.PublicKey:
		return elliptic.MarshalCompressed(pub.Curve, pub.X, pub.Y)
	default:
		return nil
	}
}
