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

import (
	"encoding/binary"
	"fmt"

	"github.com/erigontech/vetkeys-core/errs"
)

// accessRightsEncodedLen is the fixed on-disk width of AccessRights: 1
// byte rights enum + 8 bytes little-endian start + 8 bytes little-endian
// end, with 0 standing in for "unset".
const accessRightsEncodedLen = 17

// AccessRights grants a principal a level of access to a KeyId, optionally
// bounded to a half-open time window [Start, End).
type AccessRights struct {
	Rights Rights
	Start  *uint64
	End    *uint64
}

// NewAccessRights validates that Start <= End when both are set
// and returns the constructed value.
func NewAccessRights(rights Rights, start, end *uint64) (AccessRights, error) {
	if start != nil && end != nil && *start > *end {
		return AccessRights{}, fmt.Errorf("%w: start (%d) must be <= end (%d)", errs.ErrInvalidInput, *start, *end)
	}
	return AccessRights{Rights: rights, Start: start, End: end}, nil
}

// ReadOnly returns an unbounded Read grant.
func ReadOnly() AccessRights { return AccessRights{Rights: Read} }

// ReadWriteRights returns an unbounded ReadWrite grant.
func ReadWriteRights() AccessRights { return AccessRights{Rights: ReadWrite} }

// ReadWriteManageRights returns an unbounded ReadWriteManage grant, the
// implicit grant held by a KeyId's owner.
func ReadWriteManageRights() AccessRights { return AccessRights{Rights: ReadWriteManage} }

// IsLiveAt reports whether the grant's time window is live at now, per the
// mandated convention: the window [Start, End) is live iff
// Start <= now < End, applied uniformly to reads and writes.
func (a AccessRights) IsLiveAt(now uint64) bool {
	if a.Start != nil && now < *a.Start {
		return false
	}
	if a.End != nil && now >= *a.End {
		return false
	}
	return true
}

// MarshalBinary implements the 17-byte storable encoding.
func (a AccessRights) MarshalBinary() ([]byte, error) {
	out := make([]byte, accessRightsEncodedLen)
	out[0] = byte(a.Rights)
	var start, end uint64
	if a.Start != nil {
		start = *a.Start
	}
	if a.End != nil {
		end = *a.End
	}
	binary.LittleEndian.PutUint64(out[1:9], start)
	binary.LittleEndian.PutUint64(out[9:17], end)
	return out, nil
}

// UnmarshalBinary decodes the 17-byte storable encoding, rejecting any
// other length.
func (a *AccessRights) UnmarshalBinary(b []byte) error {
	if len(b) != accessRightsEncodedLen {
		return fmt.Errorf("%w: AccessRights requires %d bytes, got %d", errs.ErrInvalidInput, accessRightsEncodedLen, len(b))
	}
	a.Rights = Rights(b[0])
	start := binary.LittleEndian.Uint64(b[1:9])
	end := binary.LittleEndian.Uint64(b[9:17])
	a.Start = nil
	a.End = nil
	if start != 0 {
		a.Start = &start
	}
	if end != 0 {
		a.End = &end
	}
	return nil
}
