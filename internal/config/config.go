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

// Package config loads and validates the node's runtime configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a tss-node process.
type Config struct {
	Environment string           `yaml:"environment" json:"environment"`
	Node        *NodeConfig      `yaml:"node" json:"node"`
	Auth        *AuthConfig      `yaml:"auth" json:"auth"`
	Transport   *TransportConfig `yaml:"transport" json:"transport"`
	Peers       []PeerConfig     `yaml:"peers" json:"peers"`
	Logging     *LoggingConfig   `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig   `yaml:"metrics" json:"metrics"`
}

// NodeConfig describes this node's own identity and storage.
type NodeConfig struct {
	// ListenAddr is the address the swarm transport listens on, e.g. "0.0.0.0:7000".
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
	// PeerID is this node's own peer identifier as used in job peer lists.
	PeerID string `yaml:"peer_id" json:"peer_id"`
	// IdentityKeyPath is a PEM file holding this node's Ed25519 identity key.
	IdentityKeyPath string `yaml:"identity_key_path" json:"identity_key_path"`
	// StorageDir is the path of the bbolt share database file.
	StorageDir string `yaml:"storage_dir" json:"storage_dir"`
	// InMemoryStorage bypasses bbolt entirely and keeps shares in a map, for tests.
	InMemoryStorage bool `yaml:"in_memory_storage" json:"in_memory_storage"`
}

// PeerConfig is one entry of the static peer address book.
type PeerConfig struct {
	ID   string `yaml:"id" json:"id"`
	Addr string `yaml:"addr" json:"addr"`
}

// TransportConfig controls the swarm transport's dialing and framing behavior.
type TransportConfig struct {
	DialTimeout      time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxResponseBytes int64         `yaml:"max_response_bytes" json:"max_response_bytes"`
}

// AuthConfig holds the prover settings for the ownership and usage certification layer.
type AuthConfig struct {
	EmailHOTP *HOTPConfig  `yaml:"email_hotp" json:"email_hotp"`
	GATOTP    *TOTPConfig  `yaml:"ga_totp" json:"ga_totp"`
	OAuth     *OAuthConfig `yaml:"oauth" json:"oauth"`
	TimeSkew  time.Duration `yaml:"time_skew" json:"time_skew"`
	// OwnershipSecretEnv names the environment variable holding the
	// service-wide, base32-encoded 32-byte ownership-proof signing secret
	// (spec.md §4.5). Its derived public key is what the swarm transport
	// verifies every StartJob's auth header against.
	OwnershipSecretEnv string `yaml:"ownership_secret_env" json:"ownership_secret_env"`
	// UsageSecretEnv names the environment variable holding the service-wide,
	// base32-encoded 32-byte usage-certification signing secret.
	UsageSecretEnv string `yaml:"usage_secret_env" json:"usage_secret_env"`
}

// HOTPConfig configures the email-delivered one-time-code ownership proof.
type HOTPConfig struct {
	SecretEnv       string `yaml:"secret_env" json:"secret_env"`
	TimeDiscrepancy int    `yaml:"time_discrepancy" json:"time_discrepancy"`
	Digits          int    `yaml:"digits" json:"digits"`
}

// TOTPConfig configures the Google Authenticator ownership proof.
type TOTPConfig struct {
	SecretEnv       string `yaml:"secret_env" json:"secret_env"`
	TimeDiscrepancy int    `yaml:"time_discrepancy" json:"time_discrepancy"`
	Digits          int    `yaml:"digits" json:"digits"`
	PeriodSeconds   int    `yaml:"period_seconds" json:"period_seconds"`
}

// OAuthConfig configures the optional third ownership proof backed by an OAuth JWT.
type OAuthConfig struct {
	Issuer      string        `yaml:"issuer" json:"issuer"`
	Audience    string        `yaml:"audience" json:"audience"`
	JWKSPath    string        `yaml:"jwks_path" json:"jwks_path"`
	MaxTokenAge time.Duration `yaml:"max_token_age" json:"max_token_age"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig represents metrics server configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
	Path    string `yaml:"path" json:"path"`
}

// LoadFromFile loads configuration from a YAML (or JSON) file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}

	// Try to parse as YAML first
	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Try JSON if YAML fails
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing format by extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for configuration.
func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Node == nil {
		cfg.Node = &NodeConfig{}
	}
	if cfg.Node.ListenAddr == "" {
		cfg.Node.ListenAddr = "0.0.0.0:7000"
	}
	if cfg.Node.StorageDir == "" {
		cfg.Node.StorageDir = ".tss-node/shares"
	}

	if cfg.Transport == nil {
		cfg.Transport = &TransportConfig{}
	}
	if cfg.Transport.DialTimeout == 0 {
		cfg.Transport.DialTimeout = 10 * time.Second
	}
	if cfg.Transport.RequestTimeout == 0 {
		cfg.Transport.RequestTimeout = 30 * time.Second
	}
	if cfg.Transport.MaxResponseBytes == 0 {
		cfg.Transport.MaxResponseBytes = 10 * 1024
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.TimeSkew == 0 {
		cfg.Auth.TimeSkew = 30 * time.Second
	}
	if cfg.Auth.EmailHOTP == nil {
		cfg.Auth.EmailHOTP = &HOTPConfig{}
	}
	if cfg.Auth.EmailHOTP.Digits == 0 {
		cfg.Auth.EmailHOTP.Digits = 6
	}
	if cfg.Auth.EmailHOTP.TimeDiscrepancy == 0 {
		cfg.Auth.EmailHOTP.TimeDiscrepancy = 1
	}
	if cfg.Auth.GATOTP == nil {
		cfg.Auth.GATOTP = &TOTPConfig{}
	}
	if cfg.Auth.GATOTP.Digits == 0 {
		cfg.Auth.GATOTP.Digits = 6
	}
	if cfg.Auth.GATOTP.PeriodSeconds == 0 {
		cfg.Auth.GATOTP.PeriodSeconds = 30
	}
	if cfg.Auth.GATOTP.TimeDiscrepancy == 0 {
		cfg.Auth.GATOTP.TimeDiscrepancy = 1
	}
	if cfg.Auth.OwnershipSecretEnv == "" {
		cfg.Auth.OwnershipSecretEnv = "TSS_NODE_OWNERSHIP_SECRET"
	}
	if cfg.Auth.UsageSecretEnv == "" {
		cfg.Auth.UsageSecretEnv = "TSS_NODE_USAGE_SECRET"
	}

	if cfg.Logging == nil {
		cfg.Logging = &LoggingConfig{}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
