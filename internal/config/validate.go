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

package config

import "fmt"

// ValidationIssue is a single configuration problem found by ValidateConfiguration.
type ValidationIssue struct {
	Field   string
	Message string
	Level   string // "error" or "warning"
}

// ValidateConfiguration checks a loaded Config for problems that would prevent
// a node from bootstrapping. Error-level issues should abort startup; warnings
// are logged but not fatal.
func ValidateConfiguration(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Node == nil || cfg.Node.ListenAddr == "" {
		issues = append(issues, ValidationIssue{
			Field: "node.listen_addr", Level: "error",
			Message: "a listen address is required to start the swarm transport",
		})
	}
	if cfg.Node != nil && cfg.Node.PeerID == "" {
		issues = append(issues, ValidationIssue{
			Field: "node.peer_id", Level: "warning",
			Message: "no peer_id configured; it must be supplied at bootstrap time instead",
		})
	}
	if cfg.Node != nil && !cfg.Node.InMemoryStorage && cfg.Node.StorageDir == "" {
		issues = append(issues, ValidationIssue{
			Field: "node.storage_dir", Level: "error",
			Message: "storage_dir must be set unless in_memory_storage is enabled",
		})
	}
	if len(cfg.Peers) == 0 {
		issues = append(issues, ValidationIssue{
			Field: "peers", Level: "warning",
			Message: "no static peers configured; jobs naming unknown peers will fail to dial",
		})
	}
	for i, p := range cfg.Peers {
		if p.ID == "" || p.Addr == "" {
			issues = append(issues, ValidationIssue{
				Field: fmt.Sprintf("peers[%d]", i), Level: "error",
				Message: "peer entries require both id and addr",
			})
		}
	}
	if cfg.Transport != nil && cfg.Transport.MaxResponseBytes < 0 {
		issues = append(issues, ValidationIssue{
			Field: "transport.max_response_bytes", Level: "error",
			Message: "max_response_bytes cannot be negative",
		})
	}

	return issues
}
