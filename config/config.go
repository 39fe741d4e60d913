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

// Package config decodes cmd/vetkeysd's TOML configuration file, the
// same non-flag settings format erigon itself uses.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/erigontech/vetkeys-core/oracle"
)

// Config is cmd/vetkeysd's full runtime configuration.
type Config struct {
	// DomainSeparator is mixed into every derivation-path request.
	DomainSeparator string `toml:"domain_separator"`

	// OracleEndpoint is the base URL of the external key-derivation
	// oracle's HTTP API.
	OracleEndpoint string `toml:"oracle_endpoint"`

	// OracleCurve/OracleKeyName override oracle.DefaultKeyId when set.
	OracleCurve   string `toml:"oracle_curve"`
	OracleKeyName string `toml:"oracle_key_name"`

	// AuditEnabled gates whether audit_logs is written at all.
	AuditEnabled bool `toml:"audit_enabled"`

	// BoltDataDir is the directory holding the bbolt data file.
	BoltDataDir string `toml:"bolt_data_dir"`

	// ListenAddr is the HTTP listen address for cmd/vetkeysd's façade.
	ListenAddr string `toml:"listen_addr"`
}

// Default returns the configuration cmd/vetkeysd uses when no file is
// given.
func Default() Config {
	return Config{
		DomainSeparator: "vetkeys-core",
		OracleEndpoint:  "http://127.0.0.1:8787",
		BoltDataDir:     "./data",
		ListenAddr:      "127.0.0.1:8080",
	}
}

// Load decodes the TOML file at path into a Config seeded with Default().
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// OracleKeyID resolves the configured oracle.KeyId, falling back to
// oracle.DefaultKeyId when either field is unset.
func (c Config) OracleKeyID() oracle.KeyId {
	if c.OracleCurve == "" || c.OracleKeyName == "" {
		return oracle.DefaultKeyId
	}
	return oracle.KeyId{Curve: oracle.Curve(c.OracleCurve), Name: c.OracleKeyName}
}
