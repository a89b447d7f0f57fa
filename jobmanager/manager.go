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
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnb-chain/tss-lib/v2/ecdsa/keygen"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/mpc"
	"github.com/skw-network/tss-node/payload"
	"github.com/skw-network/tss-node/transport"
)

// Transport is the subset of *transport.Swarm the Manager drives outbound
// traffic through; narrowed to an interface so tests can substitute a fake.
type Transport interface {
	SendRequest(ctx context.Context, peerID, addr string, req *transport.Request) (*transport.Response, error)
}

// Manager hosts one protocol worker per active job for a single peer,
// exactly as spec.md §4.3 describes: it owns the five per-kind input-port
// maps and routes every worker's outgoing round messages back out through
// Transport. Unlike job_manager.rs's explicit per-kind mpsc outbound
// channels drained by a supervisor select loop, each worker here calls
// Manager.send directly from its own goroutine — Go's scheduler already
// gives every job an independent concurrent context, so the outbound
// channel layer job_manager.rs needs to multiplex onto one task collapses
// into a plain method call; the per-kind *inbound* port maps remain because
// those really are shared mutable state the transport's read loop and the
// job workers both touch.
type Manager struct {
	localPeerID string
	transport   Transport
	log         logger.Logger
	ports       *ports
}

// NewManager constructs a Manager for localPeerID, routing outbound traffic
// through transport.
func NewManager(localPeerID string, transport Transport, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewDefaultLogger()
	}
	return &Manager{
		localPeerID: localPeerID,
		transport:   transport,
		log:         log,
		ports:       newPorts(),
	}
}

// HandleIncoming demuxes one raw wire message to the job it belongs to,
// implementing transport.RawMessageHandler.
func (m *Manager) HandleIncoming(_ context.Context, raw []byte) error {
	return m.ports.handleIncoming(raw, m.log)
}

// InitiateJob dials every remote peer in header's list and issues StartJob
// before any local acceptance happens (spec.md §4.3's "light peer" flow):
// if any remote replies non-Ok, initiation fails and no local job state is
// created.
func (m *Manager) InitiateJob(ctx context.Context, authHeader auth.Header, header payload.Header) error {
	rawHeader, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("jobmanager: encode job header: %w", err)
	}
	for _, p := range header.Peers {
		if p.ID == m.localPeerID {
			continue
		}
		resp, err := m.transport.SendRequest(ctx, p.ID, p.Addr, &transport.Request{
			Kind:       transport.RequestStartJob,
			AuthHeader: &authHeader,
			JobHeader:  rawHeader,
		})
		if err != nil {
			return fmt.Errorf("jobmanager: initiate job with %s: %w", p.ID, err)
		}
		if resp.Status != transport.StatusOK {
			return fmt.Errorf("%w: peer %s replied %s: %s", ErrRemoteStartJobFailed, p.ID, resp.Status, resp.Error)
		}
	}
	return nil
}

// send implements mpc.Sender: it resolves rm's receiver(s) from rm.Header's
// peer list, stamps the outgoing sender field, and issues a RawMessage
// request per target. A point-to-point message targets one 1-based index
// (validated against [1, n]); a broadcast targets every other peer.
func (m *Manager) send(ctx context.Context, rm payload.RoundMessage) error {
	out := rm
	out.Header.Sender = m.localPeerID

	if rm.To != nil {
		peer, err := rm.Header.PeerAt(*rm.To)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOutgoingParameter, err)
		}
		return m.sendTo(ctx, peer, out)
	}

	for _, peer := range rm.Header.Peers {
		if peer.ID == m.localPeerID {
			continue
		}
		if err := m.sendTo(ctx, peer, out); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) sendTo(ctx context.Context, peer payload.Peer, rm payload.RoundMessage) error {
	body, err := rm.Encode()
	if err != nil {
		return fmt.Errorf("jobmanager: encode outgoing round message: %w", err)
	}
	resp, err := m.transport.SendRequest(ctx, peer.ID, peer.Addr, &transport.Request{
		Kind:    transport.RequestRawMessage,
		Payload: body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", transport.ErrOutboundFailure, err)
	}
	if resp.Status != transport.StatusOK {
		return fmt.Errorf("%w: peer %s replied %s: %s", transport.ErrOutboundFailure, peer.ID, resp.Status, resp.Error)
	}
	return nil
}

// AcceptKeygen registers the job's input port, spawns the keygen worker,
// and returns a channel the caller receives exactly one Outcome or error on.
func (m *Manager) AcceptKeygen(ctx context.Context, shareID [32]byte, header payload.Header) (<-chan Outcome, <-chan error) {
	outcomes := make(chan Outcome, 1)
	errs := make(chan error, 1)

	incoming := m.ports.keygen.register(header.PayloadID)
	send := func(rm payload.RoundMessage) error { return m.send(ctx, rm) }

	go func() {
		defer m.ports.keygen.unregister(header.PayloadID)

		saveData, err := mpc.RunKeygen(ctx, header, m.localPeerID, incoming, send)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorKeyGen, err)
			return
		}

		keyBytes, err := json.Marshal(saveData)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorKeyGen, fmt.Errorf("encode local key: %w", err))
			return
		}

		outcomes <- Outcome{
			Kind:      OutcomeKeyGen,
			PeerID:    m.localPeerID,
			PayloadID: header.PayloadID,
			ShareID:   shareID,
			LocalKey:  keyBytes,
		}
	}()

	return outcomes, errs
}

// AcceptSign registers the offline and partial-signature input ports,
// drives sign-offline to completion, then finalizes against the collected
// partial signatures, mirroring job_manager.rs's sign_accept_new_job.
func (m *Manager) AcceptSign(ctx context.Context, shareID [32]byte, header payload.Header, localKey keygen.LocalPartySaveData, messageHash [32]byte) (<-chan Outcome, <-chan error) {
	outcomes := make(chan Outcome, 1)
	errs := make(chan error, 1)

	offlineIncoming := m.ports.signOffline.register(header.PayloadID)
	partialIncoming := m.ports.partialSig.register(header.PayloadID)
	send := func(rm payload.RoundMessage) error { return m.send(ctx, rm) }

	go func() {
		defer m.ports.signOffline.unregister(header.PayloadID)
		defer m.ports.partialSig.unregister(header.PayloadID)

		localIndex, err := header.LocalIndex(m.localPeerID)
		if err != nil {
			errs <- err
			return
		}

		sig, err := mpc.RunSignOffline(ctx, header, m.localPeerID, localKey, messageHash, offlineIncoming, send)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorSign, err)
			return
		}

		finalizeHeader := header
		finalizeHeader.Kind = payload.KindSignFinalize

		winner, err := mpc.FinalizeSignature(ctx, finalizeHeader, localIndex, sig, partialIncoming, send)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorSign, err)
			return
		}

		outcomes <- Outcome{
			Kind:      OutcomeSign,
			PeerID:    m.localPeerID,
			PayloadID: header.PayloadID,
			ShareID:   shareID,
			Signature: winner,
		}
	}()

	return outcomes, errs
}

// AcceptKeyRefresh registers the join and refresh input ports (spec.md
// §4.3's two refresh-kind maps), fans both into the single stream
// mpc.RunKeyRefresh drives tss-lib's resharing party from, and resolves with
// the new share.
func (m *Manager) AcceptKeyRefresh(ctx context.Context, shareID [32]byte, header payload.Header, maybeLocalKey *keygen.LocalPartySaveData) (<-chan Outcome, <-chan error) {
	outcomes := make(chan Outcome, 1)
	errs := make(chan error, 1)

	joinIncoming := m.ports.joinMessage.register(header.PayloadID)
	refreshIncoming := m.ports.refreshMessage.register(header.PayloadID)
	merged := mergeRoundMessages(ctx, joinIncoming, refreshIncoming)
	send := func(rm payload.RoundMessage) error { return m.send(ctx, rm) }

	go func() {
		defer m.ports.joinMessage.unregister(header.PayloadID)
		defer m.ports.refreshMessage.unregister(header.PayloadID)

		saveData, err := mpc.RunKeyRefresh(ctx, header, m.localPeerID, maybeLocalKey, merged, send)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorKeyRefresh, err)
			return
		}

		keyBytes, err := json.Marshal(saveData)
		if err != nil {
			errs <- newProtocolError(ProtocolErrorKeyRefresh, fmt.Errorf("encode local key: %w", err))
			return
		}

		outcomes <- Outcome{
			Kind:      OutcomeKeyRefresh,
			PeerID:    m.localPeerID,
			PayloadID: header.PayloadID,
			ShareID:   shareID,
			LocalKey:  keyBytes,
		}
	}()

	return outcomes, errs
}

// mergeRoundMessages fans two input ports into one channel for callers that
// need a single ordered stream regardless of which wire variant arrived;
// used by AcceptKeyRefresh since tss-lib's resharing party accepts both
// JoinMessage- and RefreshMessage-tagged traffic through one UpdateFromBytes
// call.
func mergeRoundMessages(ctx context.Context, a, b <-chan payload.RoundMessage) <-chan payload.RoundMessage {
	out := make(chan payload.RoundMessage, portBufferSize*2)
	go func() {
		defer close(out)
		for a != nil || b != nil {
			select {
			case <-ctx.Done():
				return
			case rm, ok := <-a:
				if !ok {
					a = nil
					continue
				}
				out <- rm
			case rm, ok := <-b:
				if !ok {
					b = nil
					continue
				}
				out <- rm
			}
		}
	}()
	return out
}
