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

	"github.com/bnb-chain/tss-lib/v2/tss"

	"github.com/skw-network/tss-node/payload"
)

// Sender delivers one outbound round message to its peer(s); implemented by
// the job manager's outbound routing.
type Sender func(payload.RoundMessage) error

// pumpOutgoing drains a tss.Party's message channel and forwards each
// message over send, tagging it with variant and the header it belongs to.
// It runs until out is closed or send/WireBytes fails, reporting the first
// error on errs.
func pumpOutgoing(out <-chan tss.Message, header payload.Header, variant payload.Variant, parties tss.SortedPartyIDs, send Sender, errs chan<- error) {
	for msg := range out {
		wireBytes, routing, err := msg.WireBytes()
		if err != nil {
			errs <- fmt.Errorf("mpc: encode outgoing %s message: %w", variant, err)
			return
		}
		rm := payload.RoundMessage{
			Header:  header,
			Variant: variant,
			From:    uint16(routing.From.KeyInt().Int64()),
			Body:    wireBytes,
		}
		if !routing.IsBroadcast && len(routing.To) > 0 {
			idx := uint16(routing.To[0].KeyInt().Int64())
			rm.To = &idx
		}
		if err := send(rm); err != nil {
			errs <- fmt.Errorf("mpc: send outgoing %s message: %w", variant, err)
			return
		}
	}
}

// feedIncoming applies one received RoundMessage to party, looking up the
// sender's PartyID by the 1-based index the wire envelope carries.
func feedIncoming(party tss.Party, parties tss.SortedPartyIDs, rm payload.RoundMessage) error {
	from, err := PartyIDAt(parties, rm.From)
	if err != nil {
		return fmt.Errorf("mpc: incoming message from unknown party: %w", err)
	}
	if ok, tssErr := party.UpdateFromBytes(rm.Body, from, rm.IsBroadcast()); !ok {
		if tssErr != nil {
			return fmt.Errorf("mpc: apply incoming message: %w", tssErr)
		}
		return fmt.Errorf("mpc: apply incoming message: rejected")
	}
	return nil
}

// runIncomingLoop applies every message received on incoming to party until
// ctx is done, done fires (the protocol finished or errored), or incoming
// closes.
func runIncomingLoop(ctx context.Context, party tss.Party, parties tss.SortedPartyIDs, incoming <-chan payload.RoundMessage, done <-chan struct{}, errs chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case rm, ok := <-incoming:
			if !ok {
				return
			}
			if err := feedIncoming(party, parties, rm); err != nil {
				select {
				case errs <- err:
				default:
				}
				return
			}
		}
	}
}
