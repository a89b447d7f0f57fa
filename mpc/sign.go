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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/bnb-chain/tss-lib/v2/common"
	"github.com/bnb-chain/tss-lib/v2/ecdsa/keygen"
	"github.com/bnb-chain/tss-lib/v2/ecdsa/signing"
	"github.com/bnb-chain/tss-lib/v2/tss"

	"github.com/skw-network/tss-node/payload"
)

// RunSignOffline drives one signing.LocalParty to completion over
// messageHash. tss-lib's signing protocol already produces the final
// signature by the time it ends (unlike the curv-based precompute-without-
// message design job_manager.rs's sign_accept_new_job was written against),
// so this "offline" phase carries the full computation; FinalizeSignature
// below only has to reconcile what every party already independently
// produced.
func RunSignOffline(ctx context.Context, header payload.Header, localPeerID string, localKey keygen.LocalPartySaveData, messageHash [32]byte, incoming <-chan payload.RoundMessage, send Sender) (*common.SignatureData, error) {
	if err := header.Validate(); err != nil {
		return nil, fmt.Errorf("mpc: sign offline: %w", err)
	}

	parties := PartyIDs(header)
	localID, err := LocalPartyID(parties, localPeerID)
	if err != nil {
		return nil, fmt.Errorf("mpc: sign offline: %w", err)
	}

	ctx2 := tss.NewPeerContext(parties)
	params := tss.NewParameters(tss.S256(), ctx2, localID, len(parties), int(header.T)-1)

	outCh := make(chan tss.Message, len(parties))
	endCh := make(chan *common.SignatureData, 1)
	msg := new(big.Int).SetBytes(messageHash[:])
	party := signing.NewLocalParty(msg, params, localKey, outCh, endCh)

	errs := make(chan error, 2)
	done := make(chan struct{})

	go pumpOutgoing(outCh, header, payload.VariantSignOffline, parties, send, errs)
	go runIncomingLoop(ctx, party, parties, incoming, done, errs)

	if tssErr := party.Start(); tssErr != nil {
		close(done)
		return nil, fmt.Errorf("mpc: start sign party: %w", tssErr)
	}

	select {
	case <-ctx.Done():
		close(done)
		return nil, ctx.Err()
	case err := <-errs:
		close(done)
		return nil, err
	case sig := <-endCh:
		close(done)
		return sig, nil
	}
}

// PartialSignature is the wire-encoded local signature a peer broadcasts in
// sign-finalize, wrapping the outcome RunSignOffline already produced.
type PartialSignature struct {
	From      uint16 `json:"from"`
	Signature []byte `json:"signature"`
	R         []byte `json:"r"`
	S         []byte `json:"s"`
}

// FinalizeSignature broadcasts the local partial signature, collects peers'
// partials until t+1 of them (self included, per spec.md §3) carry the same
// signature, and returns that signature —
// tss-lib already finished the real combination inside RunSignOffline, so
// finalize's job is reconciling what every honest party already computed,
// not re-deriving it.
func FinalizeSignature(ctx context.Context, header payload.Header, localIndex uint16, local *common.SignatureData, incoming <-chan payload.RoundMessage, send Sender) ([]byte, error) {
	quorum := int(header.T) + 1

	self := PartialSignature{From: localIndex, Signature: local.Signature, R: local.R, S: local.S}
	selfBody, err := encodePartial(self)
	if err != nil {
		return nil, fmt.Errorf("mpc: sign finalize: %w", err)
	}
	if err := send(payload.RoundMessage{Header: header, Variant: payload.VariantPartialSignature, From: localIndex, Body: selfBody}); err != nil {
		return nil, fmt.Errorf("mpc: broadcast partial signature: %w", err)
	}

	counts := map[string]int{signatureKey(local.Signature): quorumSeedCount()}
	winner := local.Signature

	for counts[signatureKey(winner)] < quorum {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case rm, ok := <-incoming:
			if !ok {
				return nil, fmt.Errorf("mpc: sign finalize: incoming channel closed before quorum reached")
			}
			partial, err := decodePartial(rm.Body)
			if err != nil {
				return nil, fmt.Errorf("mpc: sign finalize: %w", err)
			}
			key := signatureKey(partial.Signature)
			counts[key]++
			if counts[key] > counts[signatureKey(winner)] {
				winner = partial.Signature
			}
		}
	}
	return winner, nil
}

func quorumSeedCount() int { return 1 }

func signatureKey(sig []byte) string { return string(sig) }

func encodePartial(p PartialSignature) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode partial signature: %w", err)
	}
	return b, nil
}

func decodePartial(raw []byte) (PartialSignature, error) {
	var p PartialSignature
	if err := json.Unmarshal(raw, &p); err != nil {
		return PartialSignature{}, fmt.Errorf("decode partial signature: %w", err)
	}
	return p, nil
}
