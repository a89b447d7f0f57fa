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
	"encoding/pem"
	"fmt"
	"os"
)

const pemBlockType = "TSS NODE IDENTITY KEY"

// WriteSeedPEM persists an Ed25519 identity's seed to a PEM file.
func WriteSeedPEM(path string, kp KeyPair) error {
	ed, ok := kp.(*ed25519KeyPair)
	if !ok {
		return ErrInvalidKeyType
	}
	block := &pem.Block{Type: pemBlockType, Bytes: ed.Seed()}
	return os.WriteFile(path, pem.EncodeToMemory(block), 0o600)
}

// ReadSeedPEM loads an Ed25519 identity previously written by WriteSeedPEM.
func ReadSeedPEM(path string) (KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity: read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockType {
		return nil, ErrInvalidKeyFormat
	}
	return Ed25519KeyPairFromSeed(block.Bytes)
}

// LoadOrGenerate reads the identity at path, creating and persisting a new
// one if the file does not yet exist. This is the bootstrap path a
// supervisor uses to give a node a stable identity across restarts.
func LoadOrGenerate(path string) (KeyPair, error) {
	if _, err := os.Stat(path); err == nil {
		return ReadSeedPEM(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("identity: stat key file: %w", err)
	}

	kp, err := GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	if err := WriteSeedPEM(path, kp); err != nil {
		return nil, err
	}
	return kp, nil
}
