// Copyright 2021 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/erigontech/vetkeys-core/clock"
	"github.com/erigontech/vetkeys-core/config"
	"github.com/erigontech/vetkeys-core/encryptedmaps"
	"github.com/erigontech/vetkeys-core/errs"
	"github.com/erigontech/vetkeys-core/keymanager"
	"github.com/erigontech/vetkeys-core/kv/boltdb"
	"github.com/erigontech/vetkeys-core/metrics"
	"github.com/erigontech/vetkeys-core/oracle"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a vetkeysd TOML configuration file",
}

func main() {
	app := &cli.App{
		Name:  "vetkeysd",
		Usage: "key-derivation access-control façade",
		Commands: []*cli.Command{
			initDBCommand,
			serveCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "vetkeysd:", err)
		os.Exit(1)
	}
}

var initDBCommand = &cli.Command{
	Name:  "init-db",
	Usage: "create the bolt data file and persist the domain separator",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		_, _, err = wireCores(context.Background(), cfg, zap.NewNop())
		if errors.Is(err, errs.ErrAlreadyInitialized) {
			fmt.Println("already initialized:", cfg.BoltDataDir)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println("initialized:", cfg.BoltDataDir)
		return nil
	},
}

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP façade",
	Flags: []cli.Flag{configFlag},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		logger, err := zap.NewProduction()
		if err != nil {
			return err
		}
		defer logger.Sync()

		km, em, err := wireCores(c.Context, cfg, logger)
		if err != nil {
			return err
		}

		s := &server{km: km, em: em, logger: logger}
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		return http.ListenAndServe(cfg.ListenAddr, newRouter(s))
	},
}

func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// wireCores opens the bolt data file, constructs the oracle client, and
// initializes keymanager/encryptedmaps against it. init-db and serve
// share this so both commands fail the same way on a malformed config.
func wireCores(ctx context.Context, cfg config.Config, logger *zap.Logger) (*keymanager.KeyManager, *encryptedmaps.EncryptedMaps, error) {
	if err := boltdb.EnsureDir(cfg.BoltDataDir); err != nil {
		return nil, nil, err
	}
	db, err := boltdb.Open(cfg.BoltDataDir + "/vetkeys.db")
	if err != nil {
		return nil, nil, err
	}

	oracleClient := oracle.NewSingleflightClient(oracle.NewHTTPClient(cfg.OracleEndpoint, nil))
	collector := metrics.New(prometheus.DefaultRegisterer)

	km, err := keymanager.Init(ctx, db, keymanager.Config{
		DomainSeparator: cfg.DomainSeparator,
		OracleClient:    oracleClient,
		OracleKeyID:     cfg.OracleKeyID(),
		Clock:           clock.System{},
		AuditEnabled:    cfg.AuditEnabled,
		Logger:          logger.Named("keymanager"),
		Metrics:         collector,
	})
	if err != nil {
		return nil, nil, err
	}

	em := encryptedmaps.New(km, encryptedmaps.Config{
		Logger:  logger.Named("encryptedmaps"),
		Metrics: collector,
	})
	return km, em, nil
}
