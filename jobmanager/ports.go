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

package jobmanager

import (
	"sync"

	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/payload"
)

// portBufferSize is the incoming-channel depth for one job's input port;
// four in-flight round messages is enough slack for the driver goroutine to
// keep pace without unbounded buffering.
const portBufferSize = 4

// portSet is one of the five per-kind payload_id -> input port maps
// spec.md §4.3 requires, guarded by its own mutex since both the transport's
// read loop and job-accepting callers touch it concurrently.
type portSet struct {
	mu    sync.Mutex
	ports map[[32]byte]chan payload.RoundMessage
}

func newPortSet() *portSet {
	return &portSet{ports: make(map[[32]byte]chan payload.RoundMessage)}
}

func (p *portSet) register(payloadID [32]byte) chan payload.RoundMessage {
	ch := make(chan payload.RoundMessage, portBufferSize)
	p.mu.Lock()
	p.ports[payloadID] = ch
	p.mu.Unlock()
	return ch
}

func (p *portSet) unregister(payloadID [32]byte) {
	p.mu.Lock()
	ch, ok := p.ports[payloadID]
	if ok {
		delete(p.ports, payloadID)
	}
	p.mu.Unlock()
	if ok {
		close(ch)
	}
}

// deliver routes rm to the port registered under its payload_id, reporting
// whether a port was found. A miss is never an error here: the caller logs
// it as a dropped warning per spec.md §7's "inbound messages for unknown or
// finished jobs are warnings, not errors".
func (p *portSet) deliver(rm payload.RoundMessage) bool {
	p.mu.Lock()
	ch, ok := p.ports[rm.Header.PayloadID]
	p.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- rm:
	default:
		// port's buffer is full: the driving worker has fallen behind or
		// exited without unregistering; drop rather than block the shared
		// read loop.
	}
	return true
}

// ports bundles the five per-kind portSets the Manager owns.
type ports struct {
	keygen          *portSet
	signOffline     *portSet
	partialSig      *portSet
	joinMessage     *portSet
	refreshMessage  *portSet
}

func newPorts() *ports {
	return &ports{
		keygen:         newPortSet(),
		signOffline:    newPortSet(),
		partialSig:     newPortSet(),
		joinMessage:    newPortSet(),
		refreshMessage: newPortSet(),
	}
}

func (p *ports) forVariant(v payload.Variant) *portSet {
	switch v {
	case payload.VariantKeygen:
		return p.keygen
	case payload.VariantSignOffline:
		return p.signOffline
	case payload.VariantPartialSignature:
		return p.partialSig
	case payload.VariantJoinMessage:
		return p.joinMessage
	case payload.VariantRefreshMessage:
		return p.refreshMessage
	default:
		return nil
	}
}

// handleIncoming decodes raw and delivers it to the matching port, logging
// (but not failing) unknown payload_ids, and returning ErrInputUnknown only
// when the variant tag itself is unrecognized.
func (p *ports) handleIncoming(raw []byte, log logger.Logger) error {
	rm, err := payload.Decode(raw)
	if err != nil {
		return err
	}
	set := p.forVariant(rm.Variant)
	if set == nil {
		return ErrInputUnknown
	}
	if !set.deliver(rm) {
		log.Warn("dropping round message for unknown or finished job",
			logger.String("variant", string(rm.Variant)))
	}
	return nil
}
