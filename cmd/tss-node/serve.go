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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skw-network/tss-node/auth"
	"github.com/skw-network/tss-node/internal/config"
	"github.com/skw-network/tss-node/internal/logger"
	"github.com/skw-network/tss-node/internal/metrics"
	"github.com/skw-network/tss-node/supervisor"
)

var (
	configDir   string
	environment string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Bootstrap this peer and serve its swarm transport until terminated",
	Long: `serve loads node configuration, derives (or loads) this peer's Ed25519
identity, starts the storage engine and swarm transport, and blocks until
SIGINT/SIGTERM, at which point it drains the transport and flushes storage
before exiting (spec.md §4.4, §5).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&configDir, "config-dir", "config", "directory containing environment config files")
	serveCmd.Flags().StringVar(&environment, "environment", "", "environment name (overrides TSS_NODE_ENV)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: configDir, Environment: environment})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.NewDefaultLogger()
	if cfg.Logging != nil {
		log.SetLevel(parseLevel(cfg.Logging.Level))
	}

	ownershipSecret, err := loadSecret(cfg.Auth.OwnershipSecretEnv)
	if err != nil {
		return fmt.Errorf("load ownership secret: %w", err)
	}
	verifierKey := auth.VerifierKey(ownershipSecret)

	storageDir := cfg.Node.StorageDir
	if cfg.Node.InMemoryStorage {
		storageDir = ""
	}

	sup, err := supervisor.BootstrapNode(supervisor.Config{
		IdentityKeyPath:      cfg.Node.IdentityKeyPath,
		PeerID:               cfg.Node.PeerID,
		ListenAddr:           cfg.Node.ListenAddr,
		StorageDir:           storageDir,
		OwnershipVerifierKey: verifierKey,
		DialTimeout:          cfg.Transport.DialTimeout,
		RequestTimeout:       cfg.Transport.RequestTimeout,
		MaxResponseBytes:     cfg.Transport.MaxResponseBytes,
		Log:                  log,
	})
	if err != nil {
		return fmt.Errorf("bootstrap node: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	group, gctx := errgroup.WithContext(ctx)
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}

		group.Go(func() error {
			log.Info("metrics server listening", logger.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-gctx.Done()
			return metricsSrv.Close()
		})
	}
	group.Go(func() error {
		return sup.Run(gctx)
	})

	return group.Wait()
}

func loadSecret(envVar string) ([32]byte, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return [32]byte{}, fmt.Errorf("environment variable %s is not set", envVar)
	}
	return auth.DecodeSecret(raw)
}

func parseLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.DebugLevel
	case "warn":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}
