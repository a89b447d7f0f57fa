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

// Package transport implements the peer-to-peer swarm transport (spec.md
// §4.2): typed request/response over WebSocket connections, dial
// management, and inbound admission control. Grounded on the teacher's
// pkg/agent/transport/websocket/{client,server}.go (pending-response table
// keyed by message id, ensureConnected dial-once idiom, Upgrader +
// MessageHandler callback). Each connection has a single read loop; the
// package sends no ping/pong keepalive and sets no read or write deadline
// on an open connection.
package transport

import (
	"encoding/json"
	"errors"

	"github.com/skw-network/tss-node/auth"
)

// RequestKind tags the three request variants spec.md §4.2 carries over one
// connection.
type RequestKind string

const (
	RequestStartJob                RequestKind = "start_job"
	RequestRawMessage              RequestKind = "raw_message"
	RequestPartialSignaturePull    RequestKind = "request_partial_signature"
)

// Status is the outcome tag every response carries; Ok on success, or one
// of the named transport/admission failures spec.md §7 lists.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusBadAuthHeader       Status = "bad_auth_header"
	StatusUnknownPeers        Status = "unknown_peers"
	StatusOutboundFailure     Status = "outbound_failure"
	StatusFailToListen        Status = "fail_to_listen"
	StatusFailToDial          Status = "fail_to_dial"
)

// ErrOutboundFailure mirrors spec.md §7's OutboundFailure transport error.
var ErrOutboundFailure = errors.New("transport: outbound failure")

// ErrFailToDial mirrors spec.md §7's FailToDial transport error.
var ErrFailToDial = errors.New("transport: fail to dial")

// ErrFailToListen mirrors spec.md §7's FailToListen transport error.
var ErrFailToListen = errors.New("transport: fail to listen")

// ErrBadAuthHeader mirrors spec.md §7's BadAuthHeader admission error.
var ErrBadAuthHeader = errors.New("transport: bad auth header")

// ErrUnknownPeers mirrors spec.md §7's UnknownPeers admission error.
var ErrUnknownPeers = errors.New("transport: unknown peers")

// ErrResponseTooLarge names a peer response that exceeds the configured
// MaxResponseBytes. The Swarm does not return it: an oversized response
// ends that connection's read loop, and the waiting SendRequest fails with
// ErrOutboundFailure once RequestTimeout elapses.
var ErrResponseTooLarge = errors.New("transport: response exceeds configured size limit")

// Peer identifies one addressable participant by its stable peer id and
// dialable network address.
type Peer struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

// Request is the wire envelope for one outbound request, tagged by Kind so
// the receiving server can dispatch without attempting a decode for every
// variant in turn — the same explicit-tag hardening payload.RoundMessage
// applies to round messages (spec.md §9).
type Request struct {
	Kind       RequestKind `json:"kind"`
	AuthHeader *auth.Header `json:"auth_header,omitempty"`
	JobHeader  json.RawMessage `json:"job_header,omitempty"`
	Payload    []byte      `json:"payload,omitempty"`
	PayloadID  [32]byte    `json:"payload_id,omitempty"`
}

// Response is the wire envelope for a reply to one Request.
type Response struct {
	Kind   RequestKind `json:"kind"`
	Status Status      `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// wireEnvelope carries a Request/Response plus the correlation id the
// pending-request table keys on, the way the teacher's wireMessage/
// wireResponse pair carries a message id over the same connection.
type wireEnvelope struct {
	ID       string   `json:"id"`
	Request  *Request  `json:"request,omitempty"`
	Response *Response `json:"response,omitempty"`
}
