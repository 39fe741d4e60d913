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

// Package boltdb is the durable kv.DB backend: a single go.etcd.io/bbolt
// file holding one bucket per table. This is the "survives process
// restarts" half of the durable ordered-map split —
// everything above the kv.DB interface is unaware which backend it runs
// against.
package boltdb

import (
	"context"
	"os"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/erigontech/vetkeys-core/kv"
)

// DB wraps a *bbolt.DB opened with every kv.AllTables bucket present.
type DB struct {
	bolt *bolt.DB
}

// Open opens (creating if necessary) a bbolt file at path and ensures
// every table bucket exists.
func Open(path string) (*DB, error) {
	b, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt db at %s", path)
	}
	err = b.Update(func(tx *bolt.Tx) error {
		for _, t := range kv.AllTables {
			if _, err := tx.CreateBucketIfNotExists([]byte(t)); err != nil {
				return errors.Wrapf(err, "create bucket %s", t)
			}
		}
		return nil
	})
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &DB{bolt: b}, nil
}

func (d *DB) View(_ context.Context, fn func(tx kv.Tx) error) error {
	return d.bolt.View(func(btx *bolt.Tx) error {
		return fn(&txn{tx: btx})
	})
}

func (d *DB) Update(_ context.Context, fn func(tx kv.RwTx) error) error {
	return d.bolt.Update(func(btx *bolt.Tx) error {
		return fn(&txn{tx: btx})
	})
}

func (d *DB) Close() error { return d.bolt.Close() }

type txn struct{ tx *bolt.Tx }

func (t *txn) bucket(table string) *bolt.Bucket {
	b := t.tx.Bucket([]byte(table))
	if b == nil {
		// Open ensures every kv.AllTables bucket exists up front; a nil
		// bucket here means a caller asked for a table name that was
		// never registered.
		panic("boltdb: unknown table " + table)
	}
	return b
}

func (t *txn) Get(table string, key []byte) ([]byte, bool, error) {
	v := t.bucket(table).Get(key)
	if v == nil {
		return nil, false, nil
	}
	// bbolt's Get result is only valid for the lifetime of the
	// transaction; copy it out before returning to the caller.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (t *txn) Put(table string, key, value []byte) error {
	return t.bucket(table).Put(key, value)
}

func (t *txn) Delete(table string, key []byte) error {
	return t.bucket(table).Delete(key)
}

func (t *txn) Cursor(table string) (kv.Cursor, error) {
	return &cursor{c: t.bucket(table).Cursor()}, nil
}

type cursor struct{ c *bolt.Cursor }

func (c *cursor) Seek(seek []byte) ([]byte, []byte, error) {
	k, v := c.c.Seek(seek)
	return cloneKV(k, v)
}

func (c *cursor) Next() ([]byte, []byte, error) {
	k, v := c.c.Next()
	return cloneKV(k, v)
}

func (c *cursor) Close() {}

func cloneKV(k, v []byte) ([]byte, []byte, error) {
	if k == nil {
		return nil, nil, nil
	}
	ck := make([]byte, len(k))
	copy(ck, k)
	var cv []byte
	if v != nil {
		cv = make([]byte, len(v))
		copy(cv, v)
	}
	return ck, cv, nil
}

// EnsureDir creates dir, and any missing parents, if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
