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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsStarted counts jobs accepted or initiated by kind.
	JobsStarted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "started_total",
			Help:      "Total jobs started, by kind and role",
		},
		[]string{"kind", "role"}, // keygen/sign_offline/key_refresh; initiator/participant
	)

	// JobsCompleted counts jobs that reached a terminal state, by kind and outcome.
	JobsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "completed_total",
			Help:      "Total jobs completed, by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: success/failure
	)

	// JobDuration tracks end-to-end job duration by kind.
	JobDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Job duration in seconds from accept/initiate to terminal state",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"kind"},
	)

	// RoundMessages counts inbound round messages routed to a job, by kind.
	RoundMessages = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "round_messages_total",
			Help:      "Total round messages routed to an in-flight job",
		},
		[]string{"kind", "direction"}, // direction: inbound/outbound
	)
)
