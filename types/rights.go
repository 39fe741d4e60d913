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

package types

// Rights is the access level granted to a non-owner principal.
type Rights uint8

const (
	Read            Rights = 0
	ReadWrite       Rights = 1
	ReadWriteManage Rights = 2
)

func (r Rights) String() string {
	switch r {
	case Read:
		return "read"
	case ReadWrite:
		return "read_write"
	case ReadWriteManage:
		return "read_write_manage"
	default:
		return "unknown_rights"
	}
}

// CanWrite reports whether r permits insert/remove/restore operations.
func (r Rights) CanWrite() bool {
	return r == ReadWrite || r == ReadWriteManage
}

// CanManage reports whether r permits set_user_rights/remove_user/purge.
func (r Rights) CanManage() bool {
	return r == ReadWriteManage
}
