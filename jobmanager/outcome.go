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

// Package jobmanager hosts one protocol worker per active job, routes its
// outgoing round messages through the transport, and demuxes incoming wire
// traffic to the right worker by payload_id (spec.md §4.3). Grounded on
// original_source/crates/skw-mpc-node/src/node/job_manager.rs.
package jobmanager

// OutcomeKind tags which ClientOutcome variant a completed job produced.
type OutcomeKind string

const (
	OutcomeKeyGen     OutcomeKind = "keygen"
	OutcomeSign       OutcomeKind = "sign"
	OutcomeKeyRefresh OutcomeKind = "key_refresh"
)

// Outcome is the typed result a job's worker resolves its caller's result
// port with on completion, mirroring job_manager.rs's ClientOutcome enum.
type Outcome struct {
	Kind      OutcomeKind
	PeerID    string
	PayloadID [32]byte
	ShareID   [32]byte

	// LocalKey carries the JSON-serialized GG20 LocalPartySaveData for
	// KeyGen and KeyRefresh outcomes.
	LocalKey []byte

	// Signature carries the recoverable ECDSA signature for Sign outcomes.
	Signature []byte
}
