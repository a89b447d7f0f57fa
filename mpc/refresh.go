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

package mpc

import (
	"context"
	"fmt"

	"github.com/bnb-chain/tss-lib/v2/ecdsa/keygen"
	"github.com/bnb-chain/tss-lib/v2/ecdsa/resharing"
	"github.com/bnb-chain/tss-lib/v2/tss"

	"github.com/skw-network/tss-node/payload"
)

// RunKeyRefresh drives one resharing.LocalParty to completion, reproducing
// job_manager.rs's key_refresh_accept_new_job split: a Rotator (the holder
// of localKey, i.e. maybeLocalKey != nil) proactively refreshes its share
// into the new committee described by header, while a Joiner (maybeLocalKey
// == nil) receives a fresh share it did not previously hold. Both roles run
// the same resharing.LocalParty with identical ReSharingParameters (old and
// new committee are both the job's peer list); they differ only in the seed
// share (empty for a Joiner) and in the wire variant they send.
func RunKeyRefresh(ctx context.Context, header payload.Header, localPeerID string, maybeLocalKey *keygen.LocalPartySaveData, incoming <-chan payload.RoundMessage, send Sender) (*keygen.LocalPartySaveData, error) {
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("mpc: key refresh: %w", err)
	}

	newParties := PartyIDs(header)
	localID, err := LocalPartyID(newParties, localPeerID)
	if err != nil {
		return nil, fmt.Errorf("mpc: key refresh: %w", err)
	}

	oldParties := newParties
	oldThreshold := int(header.T) - 1
	if maybeLocalKey == nil {
		// Joiner: tss-lib's ReSharingParameters still needs an
		// old-committee peer context to validate against; the new
		// committee's is reused unchanged, this party included, since this
		// service always refreshes within a fixed peer set
		// (spec.md §9(c)'s old==new-committee supplement).
		oldThreshold = int(header.T) - 1
	}

	oldCtx := tss.NewPeerContext(oldParties)
	newCtx := tss.NewPeerContext(newParties)
	params := tss.NewReSharingParameters(
		tss.S256(), oldCtx, newCtx, localID,
		len(oldParties), oldThreshold,
		len(newParties), int(header.T)-1,
	)

	var seed keygen.LocalPartySaveData
	if maybeLocalKey != nil {
		seed = *maybeLocalKey
	}

	outCh := make(chan tss.Message, len(newParties))
	endCh := make(chan *keygen.LocalPartySaveData, 1)
	party := resharing.NewLocalParty(params, seed, outCh, endCh)

	errs := make(chan error, 2)
	done := make(chan struct{})

	go pumpOutgoing(outCh, header, refreshVariant(maybeLocalKey), newParties, send, errs)
	go runIncomingLoop(ctx, party, newParties, incoming, done, errs)

	if tssErr := party.Start(); tssErr != nil {
		close(done)
		return nil, fmt.Errorf("mpc: start key refresh party: %w", tssErr)
	}

	select {
	case <-ctx.Done():
		close(done)
		return nil, ctx.Err()
	case err := <-errs:
		close(done)
		return nil, err
	case saveData := <-endCh:
		close(done)
		return saveData, nil
	}
}

// refreshVariant picks the wire variant this party broadcasts as: a Rotator
// already holding a key issues RefreshMessage-shaped traffic, a Joiner
// without one issues JoinMessage-shaped traffic, mirroring the two distinct
// message types job_manager.rs exchanges during refresh.
func refreshVariant(maybeLocalKey *keygen.LocalPartySaveData) payload.Variant {
	if maybeLocalKey != nil {
		return payload.VariantRefreshMessage
	}
	return payload.VariantJoinMessage
}
