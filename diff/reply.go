// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diff

import (
	"encoding/binary"

	"github.com/lcfs-project/lcfs/layer"
)

// recordHeaderSize is the fixed prefix of a packed change record: a
// one-byte ChangeType followed by a big-endian uint16 path length.
const recordHeaderSize = 3

// encodeRecord packs one PackedChange record: {type byte; len uint16;
// path []byte}.
func encodeRecord(ctype ChangeType, path string) []byte {
	rec := make([]byte, recordHeaderSize+len(path))
	rec[0] = byte(ctype)
	binary.BigEndian.PutUint16(rec[1:3], uint16(len(path)))
	copy(rec[3:], path)
	return rec
}

// packInto drains as many records as fit into a frame of the
// given size, mutating cl so a later call resumes exactly where this one
// left off. The frame is always exactly size bytes: unused space is
// zero-filled, and an all-zero frame signals the diff session is
// complete.
//
// The root directory's own change status is always suppressed — it
// always exists, so reporting it as added/modified/removed would be
// noise — but a record for it (type NONE, path "/") is still emitted
// whenever root has pending Files, since those file records need a
// directory record ahead of them to attach to.
func packInto(cl *changeList, rootIno layer.Ino, size int) ([]byte, int) {
	buf := make([]byte, 0, size)
	records := 0

loop:
	for cl.head != nil {
		cd := cl.head
		if cd.Ino == rootIno {
			cd.Type = ChangeNone
		}

		if cd.Type != ChangeNone || cd.Files != nil {
			rec := encodeRecord(cd.Type, cd.Path)
			if len(buf)+len(rec) >= size {
				break loop
			}
			buf = append(buf, rec...)
			records++
			cd.Type = ChangeNone
		}

		for cd.Files != nil {
			rec := encodeRecord(cd.Files.Type, cd.Files.Name)
			if len(buf)+len(rec) >= size {
				break loop
			}
			buf = append(buf, rec...)
			records++
			cd.Files = cd.Files.Next
		}

		// This directory is now fully drained. Drop it from the list
		// unless it's the only node left and this round has packed
		// something — keeping an empty placeholder there lets the next
		// call still see a non-nil list and come back for one more
		// (empty) pass before reporting completion, exactly mirroring
		// how a fresh call with nothing left to send produces the
		// all-zero terminating frame.
		if cd.Next != nil || len(buf) == 0 {
			cl.head = cd.Next
		} else {
			cd.Path = ""
			break loop
		}
	}

	if len(buf) < size {
		buf = append(buf, make([]byte, size-len(buf))...)
	}
	return buf, records
}

// PackedChange is one decoded wire record: a path-level change plus the
// path or name it applies to.
type PackedChange struct {
	Type ChangeType
	Path string
}

// DecodePackedChanges parses every PackedChange record out of one frame
// returned by LayerDiff. It stops at the first all-zero record, which
// either ends the frame's real content (the rest is zero padding) or, for
// a fully all-zero frame, signals end-of-stream to the caller.
func DecodePackedChanges(frame []byte) []PackedChange {
	var changes []PackedChange
	for off := 0; off+recordHeaderSize <= len(frame); {
		ctype := ChangeType(frame[off])
		plen := int(binary.BigEndian.Uint16(frame[off+1 : off+3]))
		if ctype == ChangeNone && plen == 0 {
			break
		}
		if off+recordHeaderSize+plen > len(frame) {
			break
		}
		path := string(frame[off+recordHeaderSize : off+recordHeaderSize+plen])
		changes = append(changes, PackedChange{Type: ctype, Path: path})
		off += recordHeaderSize + plen
	}
	return changes
}
