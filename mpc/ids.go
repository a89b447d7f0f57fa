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

// Package mpc drives the GG20 round machines (github.com/bnb-chain/tss-lib/v2)
// for keygen, sign-offline/finalize, and key-refresh, translating between
// tss-lib's tss.Party/tss.Message world and the payload.RoundMessage wire
// envelope. Control flow (local index derivation, t-1 convention, the
// Rotator/Joiner branch of refresh) is ported from
// original_source/crates/skw-mpc-node/src/node/job_manager.rs.
package mpc

import (
	"fmt"
	"math/big"

	"github.com/bnb-chain/tss-lib/v2/tss"

	"github.com/skw-network/tss-node/payload"
)

// PartyIDs builds tss-lib party identities for every peer in header, keyed
// by their 1-based position (the same "position-in-peers + 1" convention
// job_manager.rs uses for local_index), and returns them pre-sorted the way
// tss.NewParameters requires.
func PartyIDs(header payload.Header) tss.SortedPartyIDs {
	ids := make(tss.UnSortedPartyIDs, 0, len(header.Peers))
	for i, p := range header.Peers {
		ids = append(ids, tss.NewPartyID(p.ID, p.ID, big.NewInt(int64(i+1))))
	}
	return tss.SortPartyIDs(ids)
}

// LocalPartyID returns the PartyID belonging to peerID within ids.
func LocalPartyID(ids tss.SortedPartyIDs, peerID string) (*tss.PartyID, error) {
	for _, id := range ids {
		if id.Id == peerID {
			return id, nil
		}
	}
	return nil, fmt.Errorf("mpc: peer %q not present in party list", peerID)
}

// PartyIDAt returns the PartyID at 1-based index idx (the index tss-lib
// messages carry in their routing Key), matching payload.Header.PeerAt's
// bound.
func PartyIDAt(ids tss.SortedPartyIDs, idx uint16) (*tss.PartyID, error) {
	for _, id := range ids {
		if id.KeyInt().Int64() == int64(idx) {
			return id, nil
		}
	}
	return nil, fmt.Errorf("mpc: no party at index %d", idx)
}
