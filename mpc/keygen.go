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
	"github.com/bnb-chain/tss-lib/v2/tss"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/skw-network/tss-node/payload"
)

// RunKeygen drives one keygen.LocalParty to completion against header's
// peer list, sending outgoing round messages over send and applying
// messages arriving on incoming, mirroring job_manager.rs's
// keygen_accept_new_job: local_index is the peer's 1-based position, and
// threshold is passed to tss-lib as t-1 per kzen-curv's VSS convention the
// original also follows.
func RunKeygen(ctx context.Context, header payload.Header, localPeerID string, incoming <-chan payload.RoundMessage, send Sender) (*keygen.LocalPartySaveData, error) {
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("mpc: keygen: %w", err)
	}

	parties := PartyIDs(header)
	localID, err := LocalPartyID(parties, localPeerID)
	if err != nil {
		return nil, fmt.Errorf("mpc: keygen: %w", err)
	}

	ctx2 := tss.NewPeerContext(parties)
	params := tss.NewParameters(tss.S256(), ctx2, localID, len(parties), int(header.T)-1)

	outCh := make(chan tss.Message, len(parties))
	endCh := make(chan *keygen.LocalPartySaveData, 1)
	party := keygen.NewLocalParty(params, outCh, endCh)

	errs := make(chan error, 2)
	done := make(chan struct{})

	go pumpOutgoing(outCh, header, payload.VariantKeygen, parties, send, errs)
	go runIncomingLoop(ctx, party, parties, incoming, done, errs)

	if tssErr := party.Start(); tssErr != nil {
		close(done)
		return nil, fmt.Errorf("mpc: start keygen party: %w", tssErr)
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

// PublicKeyFromSaveData recovers the compressed secp256k1 public key for
// the generated share set, for callers that need it without importing
// tss-lib's internal curve types directly.
func PublicKeyFromSaveData(saveData *keygen.LocalPartySaveData) ([]byte, error) {
	if saveData == nil || saveData.ECDSAPub == nil {
		return nil, fmt.Errorf("mpc: keygen save data missing public key")
	}
	var x, y secp256k1.FieldVal
	x.SetByteSlice(saveData.ECDSAPub.X().Bytes())
	y.SetByteSlice(saveData.ECDSAPub.Y().Bytes())
	pub := secp256k1.NewPublicKey(&x, &y)
	return pub.SerializeCompressed(), nil
}
