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

package transport

import (
	"context"
	"encoding/json"

	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/internal/metrics"
	"github.com/skw-network/tss-node/payload"
)

// handleStartJob implements spec.md §4.2's admission policy: verify both
// mandatory ownership proofs under the service's verifier key, reject a
// sender equal to the receiver (self-admission loop guard), reject a peer
// list that does not resolve the local peer id or leaves a peer
// unaddressable, and only then hand the job header to the Job Manager and
// pre-populate the dial cache with every referenced peer's address.
func (s *Swarm) handleStartJob(ctx context.Context, req *Request) *Response {
	if req.AuthHeader == nil {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusBadAuthHeader, Error: "missing auth header"}
	}
	if err := req.AuthHeader.Validate(s.cfg.VerifierKey); err != nil {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusBadAuthHeader, Error: err.Error()}
	}

	var header payload.Header
	if err := json.Unmarshal(req.JobHeader, &header); err != nil {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusUnknownPeers, Error: "malformed job header"}
	}
	if err := header.Validate(); err != nil {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusUnknownPeers, Error: err.Error()}
	}
	if header.Sender == s.cfg.LocalPeerID {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusBadAuthHeader, Error: "self-admission loop"}
	}
	if _, err := header.LocalIndex(s.cfg.LocalPeerID); err != nil {
		metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
		return &Response{Kind: RequestStartJob, Status: StatusUnknownPeers, Error: err.Error()}
	}

	if s.cfg.OnStartJob != nil {
		if err := s.cfg.OnStartJob(ctx, header, *req.AuthHeader); err != nil {
			metrics.AdmissionDecisions.WithLabelValues("rejected").Inc()
			return &Response{Kind: RequestStartJob, Status: StatusUnknownPeers, Error: err.Error()}
		}
	}

	for _, p := range header.Peers {
		if p.ID == s.cfg.LocalPeerID {
			continue
		}
		s.dials.touch(p.ID, p.Addr)
	}

	metrics.AdmissionDecisions.WithLabelValues("accepted").Inc()
	return &Response{Kind: RequestStartJob, Status: StatusOK}
}

// handleRawMessage forwards a RawMessage request's payload bytes straight
// to the Job Manager's inbound demux; unknown or finished jobs are the Job
// Manager's concern to drop as a warning (spec.md §7), not this layer's.
func (s *Swarm) handleRawMessage(ctx context.Context, req *Request) *Response {
	if s.cfg.OnRawMessage == nil {
		return &Response{Kind: RequestRawMessage, Status: StatusOK}
	}
	if err := s.cfg.OnRawMessage(ctx, req.Payload); err != nil {
		s.log.Warn("raw message handling failed", logger.Error(err))
	}
	return &Response{Kind: RequestRawMessage, Status: StatusOK}
}
