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

import "errors"

// Node errors (spec.md §7's "Node errors").
var (
	// ErrInputUnknown is returned when an inbound message's variant matches
	// none of the five registered protocol types.
	ErrInputUnknown = errors.New("jobmanager: input unknown")

	// ErrInvalidOutgoingParameter is returned when an outgoing round
	// message's receiver index falls outside [1, n].
	ErrInvalidOutgoingParameter = errors.New("jobmanager: invalid outgoing parameter")

	// ErrLocalKeyMissing is returned when a sign job is accepted without the
	// local share it needs; a key-refresh job without one runs as a joiner.
	ErrLocalKeyMissing = errors.New("jobmanager: local key missing")

	// ErrRemoteStartJobFailed is returned when initiating a job and a
	// remote peer's StartJob response is not Ok.
	ErrRemoteStartJobFailed = errors.New("jobmanager: remote StartJob rejected")
)

// ProtocolErrorKind tags which state machine produced a ProtocolError.
type ProtocolErrorKind string

const (
	ProtocolErrorKeyGen     ProtocolErrorKind = "keygen"
	ProtocolErrorSign       ProtocolErrorKind = "sign"
	ProtocolErrorKeyRefresh ProtocolErrorKind = "key_refresh"
)

// ProtocolError wraps a state machine failure with the kind that produced
// it, mirroring spec.md §7's KeyGenError/SignError/KeyRefreshError(detail).
type ProtocolError struct {
	Kind   ProtocolErrorKind
	Detail error
}

func (e *ProtocolError) Error() string {
	return "jobmanager: " + string(e.Kind) + " error: " + e.Detail.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Detail }

func newProtocolError(kind ProtocolErrorKind, err error) *ProtocolError {
	return &ProtocolError{Kind: kind, Detail: err}
}
