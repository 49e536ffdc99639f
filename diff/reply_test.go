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
	"testing"

	"github.com/lcfs-project/lcfs/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackInto_AllZeroFrameWhenEmpty(t *testing.T) {
	cl := newChangeList()
	buf, records := packInto(cl, layer.RootIno, 16)

	assert.Equal(t, 0, records)
	assert.Equal(t, make([]byte, 16), buf)
	assert.Empty(t, DecodePackedChanges(buf))
}

// TestPackInto_RootChangeStatusNeverEmittedWithoutFiles covers the case
// the root suppression rule actually guarantees: a root with no pending
// Files never gets a record at all, regardless of its own Type.
func TestPackInto_RootChangeStatusNeverEmittedWithoutFiles(t *testing.T) {
	cl := newChangeList()
	cl.head = &ChangedDir{Ino: layer.RootIno, Type: ChangeModified, Path: "/"}

	buf, records := packInto(cl, layer.RootIno, 16)

	assert.Equal(t, 0, records)
	assert.Empty(t, DecodePackedChanges(buf))
}

// TestPackInto_RootRecordEmittedWhenFilesPending covers the other half of
// the rule: root's own (NONE, "/") record is still emitted ahead of its
// file records whenever Files is non-nil, even though root's own
// add/modify/remove status is always forced to NONE.
func TestPackInto_RootRecordEmittedWhenFilesPending(t *testing.T) {
	cl := newChangeList()
	root := &ChangedDir{Ino: layer.RootIno, Type: ChangeModified, Path: "/"}
	root.addFile("b.txt", ChangeAdded)
	cl.head = root

	buf, records := packInto(cl, layer.RootIno, 64)

	assert.Equal(t, 2, records)
	changes := DecodePackedChanges(buf)
	require.Len(t, changes, 2)
	assert.Equal(t, PackedChange{Type: ChangeNone, Path: "/"}, changes[0])
	assert.Equal(t, PackedChange{Type: ChangeAdded, Path: "b.txt"}, changes[1])
}

// TestPackInto_SplitsAcrossMultipleCalls covers resumable framing: a
// directory with more file records than fit in one frame keeps the list
// head pinned across calls. Because root still has Files pending on
// every resumed call, its own (NONE, "/") header is re-announced each
// time too, exactly as the original's lc_replyDiff does — there's no
// per-session "already sent the header" bit, only the per-call Files
// check.
func TestPackInto_SplitsAcrossMultipleCalls(t *testing.T) {
	cl := newChangeList()
	root := &ChangedDir{Ino: layer.RootIno, Path: "/"}
	root.addFile("a.txt", ChangeAdded)
	root.addFile("b.txt", ChangeAdded)
	root.addFile("c.txt", ChangeAdded)
	cl.head = root

	const frameSize = 16 // fits one 4-byte header + one 8-byte file record per call
	var got []PackedChange
	for {
		buf, _ := packInto(cl, layer.RootIno, frameSize)
		changes := DecodePackedChanges(buf)
		if len(changes) == 0 {
			break
		}
		got = append(got, changes...)
	}

	var files []PackedChange
	for _, c := range got {
		if c.Type == ChangeNone {
			assert.Equal(t, "/", c.Path)
			continue
		}
		files = append(files, c)
	}

	require.Len(t, files, 3)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "b.txt", files[1].Path)
	assert.Equal(t, "c.txt", files[2].Path)
}

func TestDecodePackedChanges_StopsAtPadding(t *testing.T) {
	rec := encodeRecord(ChangeAdded, "x")
	buf := append(append([]byte{}, rec...), make([]byte, 5)...)

	changes := DecodePackedChanges(buf)

	require.Len(t, changes, 1)
	assert.Equal(t, PackedChange{Type: ChangeAdded, Path: "x"}, changes[0])
}

func TestDecodePackedChanges_TruncatedRecordIgnored(t *testing.T) {
	buf := []byte{byte(ChangeAdded), 0, 10, 'a', 'b'} // claims a 10-byte path, only 2 bytes follow

	assert.Empty(t, DecodePackedChanges(buf))
}
