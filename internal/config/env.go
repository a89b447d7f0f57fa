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

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR} or ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment variable values
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// SubstituteEnvVarsInConfig recursively substitutes environment variables in config
func SubstituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Node != nil {
		cfg.Node.ListenAddr = SubstituteEnvVars(cfg.Node.ListenAddr)
		cfg.Node.PeerID = SubstituteEnvVars(cfg.Node.PeerID)
		cfg.Node.IdentityKeyPath = SubstituteEnvVars(cfg.Node.IdentityKeyPath)
		cfg.Node.StorageDir = SubstituteEnvVars(cfg.Node.StorageDir)
	}

	for i := range cfg.Peers {
		cfg.Peers[i].ID = SubstituteEnvVars(cfg.Peers[i].ID)
		cfg.Peers[i].Addr = SubstituteEnvVars(cfg.Peers[i].Addr)
	}

	if cfg.Auth != nil {
		if cfg.Auth.EmailHOTP != nil {
			cfg.Auth.EmailHOTP.SecretEnv = SubstituteEnvVars(cfg.Auth.EmailHOTP.SecretEnv)
		}
		if cfg.Auth.GATOTP != nil {
			cfg.Auth.GATOTP.SecretEnv = SubstituteEnvVars(cfg.Auth.GATOTP.SecretEnv)
		}
		if cfg.Auth.OAuth != nil {
			cfg.Auth.OAuth.Issuer = SubstituteEnvVars(cfg.Auth.OAuth.Issuer)
			cfg.Auth.OAuth.Audience = SubstituteEnvVars(cfg.Auth.OAuth.Audience)
			cfg.Auth.OAuth.JWKSPath = SubstituteEnvVars(cfg.Auth.OAuth.JWKSPath)
		}
	}

	if cfg.Logging != nil {
		cfg.Logging.Level = SubstituteEnvVars(cfg.Logging.Level)
		cfg.Logging.Format = SubstituteEnvVars(cfg.Logging.Format)
		cfg.Logging.Output = SubstituteEnvVars(cfg.Logging.Output)
		cfg.Logging.FilePath = SubstituteEnvVars(cfg.Logging.FilePath)
	}

	if cfg.Metrics != nil {
		cfg.Metrics.Addr = SubstituteEnvVars(cfg.Metrics.Addr)
		cfg.Metrics.Path = SubstituteEnvVars(cfg.Metrics.Path)
	}
}

// GetEnvironment returns the current environment from TSS_NODE_ENV or defaults to development
func GetEnvironment() string {
	env := os.Getenv("TSS_NODE_ENV")
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	if env == "" {
		env = "development"
	}
	return strings.ToLower(env)
}

// IsProduction returns true if running in production environment
func IsProduction() bool {
	return GetEnvironment() == "production"
}

// IsDevelopment returns true if running in development or local environment
func IsDevelopment() bool {
	env := GetEnvironment()
	return env == "development" || env == "local"
}
