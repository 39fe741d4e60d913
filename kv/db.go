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

// Package kv is the capability boundary this repository calls OrderedMap<K,V>: a
// durable, ordered, byte-keyed store abstraction with two implementations
// (kv/memdb for tests, kv/boltdb for durability) and no dynamic dispatch
// beyond this one interface seam.
package kv

import "context"

// Table names for the five durable maps (the audit log among them, written
// only when auditing is enabled) and the domain-separator metadata bucket. Naming mirrors the bucket-name
// constants in erigon-lib/kv/tables.go.
const (
	TableAccessControl = "AccessControl"
	TableSharedKeys    = "SharedKeys"
	TableMapKeyVals    = "MapKeyVals"
	TableTombstones    = "Tombstones"
	TableAuditLogs     = "AuditLogs"
	TableMeta          = "Meta"
)

// AllTables lists every bucket a DB implementation must create on Open,
// audit logs included — whether audit_logs is actually written to is
// gated by KeyManager's auditEnabled flag, not by table existence.
var AllTables = []string{
	TableAccessControl,
	TableSharedKeys,
	TableMapKeyVals,
	TableTombstones,
	TableAuditLogs,
	TableMeta,
}

// MetaDomainSeparatorKey is the key under TableMeta holding the durable
// domain separator string set at Init.
var MetaDomainSeparatorKey = []byte("domain_separator")

// Tx is a read-only view over one or more tables, observing a consistent
// snapshot taken at the start of the operation.
type Tx interface {
	// Get returns the value for key in table, or (nil, false, nil) if
	// absent.
	Get(table string, key []byte) ([]byte, bool, error)

	// Cursor opens an ordered cursor over table, released by the
	// caller via Cursor.Close.
	Cursor(table string) (Cursor, error)
}

// RwTx additionally allows durable mutation. Every public KeyManager and
// EncryptedMaps method opens exactly one Tx/RwTx, performs all its reads
// and writes inside it, and commits before returning — no operation's
// mutations are observable until it returns.
type RwTx interface {
	Tx
	Put(table string, key, value []byte) error
	Delete(table string, key []byte) error
}

// Cursor iterates a table in lexicographic key order.
type Cursor interface {
	// Seek positions the cursor at the first key >= seek and returns it,
	// or (nil, nil, nil) if the table has no such key.
	Seek(seek []byte) (key, value []byte, err error)

	// Next advances to the next key in order, or returns (nil, nil, nil)
	// at the end of the table.
	Next() (key, value []byte, err error)

	Close()
}

// DB opens read-only and read-write transactions over the durable tables.
type DB interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx RwTx) error) error
	Close() error
}
