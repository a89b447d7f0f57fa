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

// Package payload defines the wire envelope carried between peers: the
// PayloadHeader routing descriptor and the RoundMessage body every MPC round
// message is wrapped in.
package payload

import "fmt"

// Kind identifies which of the four job kinds a PayloadHeader describes.
type Kind string

const (
	KindKeyGen       Kind = "keygen"
	KindSignOffline  Kind = "sign_offline"
	KindSignFinalize Kind = "sign_finalize"
	KindKeyRefresh   Kind = "key_refresh"
)

// Peer is one addressable participant in a job's peer list.
type Peer struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

// Header is the on-wire routing descriptor carried on every MPC message, so
// recipients can route it to the correct job instance (spec.md §3).
type Header struct {
	PayloadID [32]byte `json:"payload_id"`
	Kind      Kind     `json:"kind"`
	// MessageHash is set only for SignOffline (and the SignFinalize that
	// continues it under the same payload_id).
	MessageHash [32]byte `json:"message_hash,omitempty"`
	Peers       []Peer   `json:"peers"`
	Sender      string   `json:"sender"`
	T           uint16   `json:"t"`
	N           uint16   `json:"n"`
}

// Validate checks the structural invariants from spec.md §3: 1 <= t < n,
// every peer addressable, sender present in the peer list, and a peer count
// consistent with the job kind (= n for keygen/refresh, >= t+1 for sign).
func (h Header) Validate() error {
	if h.T < 1 || h.T >= h.N {
		return fmt.Errorf("payload: invalid threshold t=%d n=%d", h.T, h.N)
	}
	for _, p := range h.Peers {
		if p.ID == "" || p.Addr == "" {
			return fmt.Errorf("payload: peer %q missing id or address", p.ID)
		}
	}
	if !h.hasSender() {
		return fmt.Errorf("payload: sender %q not present in peer list", h.Sender)
	}
	switch h.Kind {
	case KindKeyGen, KindKeyRefresh:
		if len(h.Peers) != int(h.N) {
			return fmt.Errorf("payload: expected %d peers for %s, got %d", h.N, h.Kind, len(h.Peers))
		}
	case KindSignOffline, KindSignFinalize:
		if len(h.Peers) < int(h.T)+1 {
			return fmt.Errorf("payload: expected at least t+1=%d peers for %s, got %d", h.T+1, h.Kind, len(h.Peers))
		}
	default:
		return fmt.Errorf("payload: unknown kind %q", h.Kind)
	}
	return nil
}

func (h Header) hasSender() bool {
	for _, p := range h.Peers {
		if p.ID == h.Sender {
			return true
		}
	}
	return false
}

// LocalIndex returns the 1-based position of peerID within the header's peer
// list (the local party index tss-lib and the spec's reshare machinery
// expect), or an error if peerID does not appear — the position-in-peers + 1
// derivation from original_source's job_manager.rs, made an explicit error
// instead of a panic on the unwrap.
func (h Header) LocalIndex(peerID string) (uint16, error) {
	for i, p := range h.Peers {
		if p.ID == peerID {
			return uint16(i + 1), nil
		}
	}
	return 0, fmt.Errorf("payload: peer %q not present in header peer list", peerID)
}

// PeerAt returns the peer at 1-based index idx, validating 1 <= idx <= n
// (spec.md §4.3's InvalidOutgoingParameter bound).
func (h Header) PeerAt(idx uint16) (Peer, error) {
	if idx < 1 || int(idx) > len(h.Peers) {
		return Peer{}, fmt.Errorf("payload: receiver index %d out of range [1,%d]", idx, len(h.Peers))
	}
	return h.Peers[idx-1], nil
}
