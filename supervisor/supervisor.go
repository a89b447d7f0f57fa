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

// Package supervisor bootstraps one peer: it owns the Storage Engine, the
// Swarm Transport, and the Job Manager, wiring them together and running the
// single-threaded cooperative main loop spec.md §4.4 describes. External
// HTTP handlers call the Supervisor's client facade (MpcRequest); they never
// touch store, transport, or jobmanager directly.
package supervisor

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/skw-network/tss-node/identity"
	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/jobmanager"
	"github.com/skw-network/tss-node/store"
	"github.com/skw-network/tss-node/transport"
)

// AuthKeys carries the service-wide secrets spec.md §4.5 requires: the
// ownership prover key signs the proofs a client presents in an auth
// header; the usage prover key signs the usage certification linking a
// credential pair to a specific share_id. A peer only needs the
// corresponding *verifier* keys to admit StartJob requests (derived from
// these secrets via auth.VerifierKey), but the supervisor that runs the
// auth/OAuth front-end holds the secrets themselves.
type AuthKeys struct {
	OwnershipSecret [32]byte
	UsageSecret     [32]byte
}

// Config bootstraps one Supervisor (spec.md §4.4's BootstrapNode).
type Config struct {
	// IdentityKeyPath is a PEM file holding this node's Ed25519 identity
	// seed; created on first boot if absent (identity.LoadOrGenerate).
	IdentityKeyPath string
	// PeerID is this node's own id as it appears in job peer lists.
	PeerID string
	// ListenAddr is the address the swarm transport binds and listens on.
	ListenAddr string
	// StorageDir names the bbolt database file for persisted shares; if
	// empty, an in-memory backend is used instead (tests, ephemeral peers).
	StorageDir string

	OwnershipVerifierKey ed25519.PublicKey
	Auth                 *AuthKeys

	DialTimeout      time.Duration
	RequestTimeout   time.Duration
	MaxRequestBytes  int64
	MaxResponseBytes int64

	Log logger.Logger
}

// Supervisor owns one peer's lifecycle: one Storage Engine, one Swarm
// Transport, one Job Manager, and the set of jobs currently in flight.
type Supervisor struct {
	cfg      Config
	log      logger.Logger
	identity identity.KeyPair
	store    *store.Engine
	swarm    *transport.Swarm
	jobs     *jobmanager.Manager

	mu       sync.Mutex
	inflight map[[32]byte]chan struct{} // payload_id -> closed on completion

	shutdownOnce sync.Once
}

// BootstrapNode derives (or loads) this node's identity, starts the
// Storage Engine, constructs the Swarm Transport and a Job Manager wired to
// it, and only then registers ListenAddr: identity, storage, transport,
// job manager, listen, then the node is ready to serve.
func BootstrapNode(cfg Config) (*Supervisor, error) {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefaultLogger()
	}

	kp, err := identity.LoadOrGenerate(cfg.IdentityKeyPath)
	if err != nil {
		return nil, fmt.Errorf("supervisor: bootstrap identity: %w", err)
	}

	var backend store.Backend
	if cfg.StorageDir == "" {
		backend = store.NewMemoryBackend()
	} else {
		backend, err = store.NewBoltBackend(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("supervisor: open storage: %w", err)
		}
	}
	engine := store.NewEngine(backend, log)

	sup := &Supervisor{
		cfg:      cfg,
		log:      log,
		identity: kp,
		store:    engine,
		inflight: make(map[[32]byte]chan struct{}),
	}

	swarmCfg := transport.Config{
		LocalPeerID:      cfg.PeerID,
		VerifierKey:      cfg.OwnershipVerifierKey,
		DialTimeout:      cfg.DialTimeout,
		RequestTimeout:   cfg.RequestTimeout,
		MaxRequestBytes:  cfg.MaxRequestBytes,
		MaxResponseBytes: cfg.MaxResponseBytes,
		Log:              log,
		OnStartJob:       sup.onStartJob,
		// sup.jobs is assigned below, before the transport ever has a
		// chance to invoke this handler, so the closure's late binding is
		// safe; it breaks the swarm/job-manager construction cycle (the
		// manager needs a *transport.Swarm to send through, the swarm
		// needs the manager's demux to dispatch to).
		OnRawMessage: func(ctx context.Context, raw []byte) error {
			return sup.jobs.HandleIncoming(ctx, raw)
		},
	}
	sup.swarm = transport.NewSwarm(swarmCfg)
	sup.jobs = jobmanager.NewManager(cfg.PeerID, sup.swarm, log)

	if err := sup.swarm.StartListening(cfg.ListenAddr); err != nil {
		_ = engine.Shutdown()
		return nil, fmt.Errorf("supervisor: start listening: %w", err)
	}

	log.Info("node bootstrapped",
		logger.String("peer_id", cfg.PeerID),
		logger.String("listen_addr", cfg.ListenAddr))

	return sup, nil
}

// Shutdown drains the transport, then flushes and closes storage, per
// spec.md §5: exit is successful only if storage flush-and-close reported
// success. Safe to call more than once.
func (s *Supervisor) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		s.log.Info("shutting down", logger.String("peer_id", s.cfg.PeerID))
		_ = s.swarm.Close()
		err = s.store.Shutdown()
	})
	return err
}

// PeerID returns this node's own peer id.
func (s *Supervisor) PeerID() string { return s.cfg.PeerID }

// Identity returns this node's signing identity, e.g. for building the
// multiaddr/peer-book entry other nodes dial.
func (s *Supervisor) Identity() identity.KeyPair { return s.identity }

// InFlightJobs returns the number of jobs this node is currently hosting a
// protocol worker for (spec.md §4.3's Created/Running states), whether
// initiated locally via MpcRequest or admitted from a remote StartJob.
func (s *Supervisor) InFlightJobs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

func (s *Supervisor) track(payloadID [32]byte) (done func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.inflight[payloadID] = ch
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.inflight, payloadID)
		s.mu.Unlock()
		close(ch)
	}
}
