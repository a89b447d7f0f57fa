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

package supervisor

import (
	"context"
	"time"

	"github.com/skw-network/tss-node/internal/logger"
)

// statusInterval is how often Run logs a heartbeat of in-flight job count;
// there is no per-job deadline in the core (spec.md §5), so this is purely
// an operability aid, not a liveness mechanism.
const statusInterval = 30 * time.Second

// Run is the node's cooperative main loop (spec.md §4.4). The transport's
// read loop and each job's protocol worker already run on their own
// goroutines and deliver results independently (new job assignments arrive
// via onStartJob/MpcRequest, outbound messages go straight out through
// Manager.send, completed outcomes are persisted by watch/persist) — so the
// one thing actually left for this loop to select over is the heartbeat
// ticker and the shutdown signal carried by ctx. Run blocks until ctx is
// canceled, then shuts the node down and returns the shutdown error.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.Info("node heartbeat",
				logger.String("peer_id", s.cfg.PeerID),
				logger.Int("in_flight_jobs", s.InFlightJobs()))
		case <-ctx.Done():
			return s.Shutdown()
		}
	}
}
