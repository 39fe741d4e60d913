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

import "encoding/json"

// AuditType enumerates the significant authorization and data events
// recorded in audit_logs. The log is append-only: no operation
// removes or reorders entries.
type AuditType string

const (
	AuditCreated            AuditType = "Created"
	AuditUpdated            AuditType = "Updated"
	AuditDeleted            AuditType = "Deleted"
	AuditShare              AuditType = "Share"
	AuditUnshare            AuditType = "Unshare"
	AuditAccessVetKey       AuditType = "AccessVetKey"
	AuditAccessSharedVetKey AuditType = "AccessSharedVetKey"
	AuditSoftDeleted        AuditType = "SoftDeleted"
	AuditRestored           AuditType = "Restored"
)

// AuditEntry is one append-only record in a KeyId's audit log.
type AuditEntry struct {
	Type      AuditType     `json:"type"`
	Timestamp uint64        `json:"timestamp"`
	Caller    Principal     `json:"caller"`
	User      *Principal    `json:"user,omitempty"`
	Rights    *AccessRights `json:"rights,omitempty"`
}

// auditEntryWire is the JSON-serializable shadow of AuditEntry: Principal
// and AccessRights don't expose their internals directly, so MarshalJSON
// swaps in raw principal bytes (base64 in JSON) and the decoded rights
// fields for a stable on-disk and over-the-wire shape.
type auditEntryWire struct {
	Type      AuditType `json:"type"`
	Timestamp uint64    `json:"timestamp"`
	Caller    []byte    `json:"caller"`
	User      []byte    `json:"user,omitempty"`
	Rights    *struct {
		Rights Rights  `json:"rights"`
		Start  *uint64 `json:"start,omitempty"`
		End    *uint64 `json:"end,omitempty"`
	} `json:"rights,omitempty"`
}

// MarshalJSON implements the self-describing stable encoding required so
// process restarts recover exact AuditEntry state. Principal and
// AccessRights don't expose their internals directly, so this swaps in the
// wire shadow rather than relying on reflection over unexported fields.
func (e AuditEntry) MarshalJSON() ([]byte, error) {
	w := auditEntryWire{
		Type:      e.Type,
		Timestamp: e.Timestamp,
		Caller:    e.Caller.Bytes(),
	}
	if e.User != nil {
		w.User = e.User.Bytes()
	}
	if e.Rights != nil {
		w.Rights = &struct {
			Rights Rights  `json:"rights"`
			Start  *uint64 `json:"start,omitempty"`
			End    *uint64 `json:"end,omitempty"`
		}{Rights: e.Rights.Rights, Start: e.Rights.Start, End: e.Rights.End}
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (e *AuditEntry) UnmarshalJSON(b []byte) error {
	var w auditEntryWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	e.Type = w.Type
	e.Timestamp = w.Timestamp
	e.Caller = PrincipalFromBytes(w.Caller)
	e.User = nil
	if w.User != nil {
		u := PrincipalFromBytes(w.User)
		e.User = &u
	}
	e.Rights = nil
	if w.Rights != nil {
		e.Rights = &AccessRights{Rights: w.Rights.Rights, Start: w.Rights.Start, End: w.Rights.End}
	}
	return nil
}

// MarshalBinary implements AuditEntry's fixed storable form for single-entry
// contexts (unused by AuditLog, which stores the whole slice at once, but
// kept for parity with the other types.Storable implementations).
func (e AuditEntry) MarshalBinary() ([]byte, error) { return json.Marshal(e) }

// UnmarshalBinary is the inverse of MarshalBinary.
func (e *AuditEntry) UnmarshalBinary(b []byte) error { return json.Unmarshal(b, e) }

// AuditLog is the sequence of entries recorded for a single KeyId, in
// arrival order.
type AuditLog struct {
	Entries []AuditEntry
}

// MarshalBinary encodes the whole log as a single JSON array, relying on
// AuditEntry's own MarshalJSON for each element.
func (l AuditLog) MarshalBinary() ([]byte, error) {
	return json.Marshal(l.Entries)
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (l *AuditLog) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		l.Entries = nil
		return nil
	}
	var entries []AuditEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	l.Entries = entries
	return nil
}
