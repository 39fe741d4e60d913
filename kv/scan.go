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

package kv

import "bytes"

// ScanPrefix seeks to prefix and calls fn for every (key, value) whose key
// starts with prefix, in lexicographic order, stopping early if fn returns
// false. This is the O(log N + k) prefix range scan required for
// "by owner" and "by KeyId" lookups.
func ScanPrefix(tx Tx, table string, prefix []byte, fn func(key, value []byte) (bool, error)) error {
	c, err := tx.Cursor(table)
	if err != nil {
		return err
	}
	defer c.Close()

	k, v, err := c.Seek(prefix)
	for {
		if err != nil {
			return err
		}
		if k == nil || !bytes.HasPrefix(k, prefix) {
			return nil
		}
		cont, ferr := fn(k, v)
		if ferr != nil {
			return ferr
		}
		if !cont {
			return nil
		}
		k, v, err = c.Next()
	}
}
