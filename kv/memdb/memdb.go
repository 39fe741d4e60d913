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

// Package memdb is the in-process kv.DB backend used by every unit test in
// this repository and by KeyManager/EncryptedMaps test helpers. It keeps
// one tidwall/btree ordered tree per table; no locking is done beyond a
// single mutex guarding transaction admission, matching the single-
// threaded cooperative execution model this repository assumes.
package memdb

import (
	"bytes"
	"context"
	"sync"

	"github.com/tidwall/btree"

	"github.com/erigontech/vetkeys-core/kv"
)

type item struct {
	key, value []byte
}

func less(a, b item) bool { return bytes.Compare(a.key, b.key) < 0 }

// DB is an in-memory kv.DB. The zero value is not usable; use New.
type DB struct {
	mu     sync.Mutex
	tables map[string]*btree.BTreeG[item]
}

// New returns an empty DB with every table in kv.AllTables pre-created.
func New() *DB {
	d := &DB{tables: make(map[string]*btree.BTreeG[item])}
	for _, t := range kv.AllTables {
		d.tables[t] = btree.NewBTreeG(less)
	}
	return d
}

func (d *DB) View(_ context.Context, fn func(tx kv.Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(&txn{db: d})
}

func (d *DB) Update(_ context.Context, fn func(tx kv.RwTx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(&txn{db: d})
}

func (d *DB) Close() error { return nil }

// txn is both a Tx and an RwTx: memdb has no separate snapshot isolation,
// callers are serialized by DB.mu for the whole transaction body, which is
// sufficient under the single-threaded cooperative model this core assumes.
// Writes go straight to the tables: Update does not undo the writes fn
// made before returning an error.
type txn struct{ db *DB }

func (t *txn) tree(table string) *btree.BTreeG[item] {
	tr, ok := t.db.tables[table]
	if !ok {
		tr = btree.NewBTreeG(less)
		t.db.tables[table] = tr
	}
	return tr
}

func (t *txn) Get(table string, key []byte) ([]byte, bool, error) {
	it, ok := t.tree(table).Get(item{key: key})
	if !ok {
		return nil, false, nil
	}
	return it.value, true, nil
}

func (t *txn) Put(table string, key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	t.tree(table).Set(item{key: k, value: v})
	return nil
}

func (t *txn) Delete(table string, key []byte) error {
	t.tree(table).Delete(item{key: key})
	return nil
}

func (t *txn) Cursor(table string) (kv.Cursor, error) {
	return &cursor{tree: t.tree(table)}, nil
}

type cursor struct {
	tree *btree.BTreeG[item]
	last item
	ok   bool
}

func (c *cursor) Seek(seek []byte) ([]byte, []byte, error) {
	var found item
	hit := false
	c.tree.Ascend(item{key: seek}, func(it item) bool {
		found = it
		hit = true
		return false
	})
	if !hit {
		c.ok = false
		return nil, nil, nil
	}
	c.last = found
	c.ok = true
	return found.key, found.value, nil
}

func (c *cursor) Next() ([]byte, []byte, error) {
	if !c.ok {
		return nil, nil, nil
	}
	var found item
	hit := false
	skippedPivot := false
	c.tree.Ascend(c.last, func(it item) bool {
		if !skippedPivot {
			skippedPivot = true
			return true // skip the pivot itself, which Ascend always visits first
		}
		found = it
		hit = true
		return false
	})
	if !hit {
		c.ok = false
		return nil, nil, nil
	}
	c.last = found
	return found.key, found.value, nil
}

func (c *cursor) Close() {}
