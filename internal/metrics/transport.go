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
	// DialsTotal counts outbound dial attempts, by outcome.
	DialsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "dials_total",
			Help:      "Total outbound dial attempts",
		},
		[]string{"outcome"}, // ok/cached/error
	)

	// DialDuration tracks dial latency.
	DialDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "dial_duration_seconds",
			Help:      "Outbound dial latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// RequestsTotal counts dispatched requests by kind and outcome status.
	RequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Total dispatched requests by kind and status",
		},
		[]string{"kind", "status"},
	)

	// RequestDuration tracks request/response round-trip latency.
	RequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "request_duration_seconds",
			Help:      "Request/response round-trip latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// AdmissionDecisions counts StartJob admission control outcomes.
	AdmissionDecisions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "admission_decisions_total",
			Help:      "StartJob admission control outcomes",
		},
		[]string{"decision"}, // accepted/rejected
	)

	// ActiveConnections reports the current number of live peer connections.
	ActiveConnections = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "active_connections",
			Help:      "Current number of live peer connections",
		},
	)
)
