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
	"crypto/ed25519"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/internal/metrics"
	"github.com/skw-network/tss-node/payload"
)

// StartJobHandler is invoked on an admitted StartJob request, after both
// ownership proofs in authHeader have verified; it should enqueue jobHeader
// with the local Job Manager and return promptly. authHeader is passed
// through (not just validated) because the supervisor derives the job's
// share_id from it (spec.md §3), and every participant must derive the same
// share_id the initiator used.
type StartJobHandler func(ctx context.Context, jobHeader payload.Header, authHeader auth.Header) error

// RawMessageHandler is invoked on a RawMessage request; it should forward
// raw to the local Job Manager's inbound demux.
type RawMessageHandler func(ctx context.Context, raw []byte) error

// Config controls one Swarm instance.
type Config struct {
	LocalPeerID      string
	VerifierKey      ed25519.PublicKey
	DialTimeout      time.Duration
	RequestTimeout   time.Duration
	MaxRequestBytes  int64
	MaxResponseBytes int64
	OnStartJob       StartJobHandler
	OnRawMessage     RawMessageHandler
	Log              logger.Logger
}

// Swarm is the peer-to-peer transport (spec.md §4.2): it owns the dial
// cache and pending-request table exclusively (spec.md §5's single-writer
// rule), multiplexing StartJob/RawMessage request-response traffic over
// persistent WebSocket connections, one per remote peer.
type Swarm struct {
	cfg     Config
	log     logger.Logger
	dials   *dialCache
	pending *pendingTable

	upgrader websocket.Upgrader
	listener net.Listener
	server   *http.Server

	connsMu sync.Mutex
	conns   map[string]*websocket.Conn
}

// NewSwarm constructs a Swarm ready to listen and dial; defaults are filled
// in for zero-valued timeouts/limits.
func NewSwarm(cfg Config) *Swarm {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRequestBytes == 0 {
		cfg.MaxRequestBytes = 1 << 20
	}
	if cfg.MaxResponseBytes == 0 {
		cfg.MaxResponseBytes = 10 << 10
	}
	if cfg.Log == nil {
		cfg.Log = logger.NewDefaultLogger()
	}
	return &Swarm{
		cfg:     cfg,
		log:     cfg.Log,
		dials:   newDialCache(cfg.DialTimeout),
		pending: newPendingTable(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*websocket.Conn),
	}
}

// StartListening binds addr and begins accepting inbound peer connections
// in the background, returning once the socket is bound.
func (s *Swarm) StartListening(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailToListen, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle("/swarm", http.HandlerFunc(s.handleUpgrade))
	s.server = &http.Server{Handler: mux}

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("swarm listener stopped", logger.Error(err))
		}
	}()
	return nil
}

// Close stops listening and closes every tracked connection.
func (s *Swarm) Close() error {
	if s.server != nil {
		_ = s.server.Close()
	}
	s.connsMu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = make(map[string]*websocket.Conn)
	s.connsMu.Unlock()
	return nil
}

func (s *Swarm) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("swarm upgrade failed", logger.Error(err))
		return
	}
	conn.SetReadLimit(s.cfg.MaxRequestBytes)
	go s.readLoop(conn, "")
}

// readLoop pumps one connection until it closes, dispatching requests and
// delivering responses to the pending table. peerID is the dialed peer for
// an outbound connection and empty for an accepted one; when it is set, a
// read error also drops that peer from the dial cache.
func (s *Swarm) readLoop(conn *websocket.Conn, peerID string) {
	defer conn.Close()
	for {
		var env wireEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			if peerID != "" {
				s.dials.Drop(peerID)
			}
			return
		}

		switch {
		case env.Request != nil:
			resp := s.dispatch(context.Background(), env.Request)
			_ = conn.WriteJSON(wireEnvelope{ID: env.ID, Response: resp})
		case env.Response != nil:
			s.pending.deliver(env.ID, env.Response)
		}
	}
}

func (s *Swarm) dispatch(ctx context.Context, req *Request) *Response {
	start := time.Now()
	var resp *Response
	switch req.Kind {
	case RequestStartJob:
		resp = s.handleStartJob(ctx, req)
	case RequestRawMessage:
		resp = s.handleRawMessage(ctx, req)
	default:
		resp = &Response{Kind: req.Kind, Status: StatusBadAuthHeader, Error: "unknown request kind"}
	}
	metrics.RequestsTotal.WithLabelValues(string(req.Kind), string(resp.Status)).Inc()
	metrics.RequestDuration.WithLabelValues(string(req.Kind)).Observe(time.Since(start).Seconds())
	return resp
}

// Dial establishes (or reuses) a connection to peerID at addr, per spec.md
// §3's dial-cache invariant: at most one outstanding dial per peer id.
func (s *Swarm) Dial(ctx context.Context, peerID, addr string) error {
	wsAddr := wsURL(addr)
	conn, err := s.dials.Dial(ctx, peerID, wsAddr)
	if err != nil {
		return err
	}
	s.connsMu.Lock()
	if _, tracked := s.conns[peerID]; !tracked {
		conn.SetReadLimit(s.cfg.MaxResponseBytes)
		s.conns[peerID] = conn
		go s.readLoop(conn, peerID)
	}
	s.connsMu.Unlock()
	return nil
}

// SendRequest dials peerID if needed and issues req, waiting for the
// correlated response or RequestTimeout, whichever comes first.
func (s *Swarm) SendRequest(ctx context.Context, peerID, addr string, req *Request) (*Response, error) {
	if err := s.Dial(ctx, peerID, addr); err != nil {
		return nil, err
	}

	s.connsMu.Lock()
	conn, ok := s.conns[peerID]
	s.connsMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: no connection tracked for peer %q", ErrOutboundFailure, peerID)
	}

	id := uuid.NewString()
	waiter := s.pending.register(id)
	defer s.pending.cancel(id)

	if err := conn.WriteJSON(wireEnvelope{ID: id, Request: req}); err != nil {
		s.dials.Drop(peerID)
		return nil, fmt.Errorf("%w: %v", ErrOutboundFailure, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	select {
	case resp := <-waiter:
		return resp, nil
	case <-reqCtx.Done():
		return nil, fmt.Errorf("%w: %v", ErrOutboundFailure, reqCtx.Err())
	}
}

// RememberPeer registers an already-open connection under peerID in the
// dial cache. Admission does not use it: handleStartJob only records each
// referenced peer's address through dialCache.touch.
func (s *Swarm) RememberPeer(peerID string, conn *websocket.Conn) {
	s.dials.Set(peerID, conn)
}

func wsURL(addr string) string {
	return "ws://" + addr + "/swarm"
}
