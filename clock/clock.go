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

// Package clock supplies the monotonic "now()" source the core consumes
// but never produces itself. KeyManager and EncryptedMaps never call
// time.Now directly.
package clock

import "time"

// Source returns the current time as a monotonic, non-decreasing uint64
// used to evaluate AccessRights time windows. Units are caller-defined as
// long as they're consistent with the values stored in AccessRights.Start
// and AccessRights.End; System uses Unix nanoseconds.
type Source interface {
	Now() uint64
}

// System is the real wall-clock Source, reporting Unix nanoseconds.
type System struct{}

func (System) Now() uint64 { return uint64(time.Now().UnixNano()) }

// Fixed is a Source that always reports the same instant, used by tests
// that need to control "now" exactly.
type Fixed uint64

func (f Fixed) Now() uint64 { return uint64(f) }
