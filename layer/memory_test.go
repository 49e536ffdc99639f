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

package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLayer_CheckInvariantsOKOnFreshLayer(t *testing.T) {
	l := NewMemoryLayer(nil, RootIno)
	assert.NotPanics(t, func() { l.checkInvariants() })
}

func TestMemoryLayer_CheckInvariantsPanicsOnMissingRoot(t *testing.T) {
	l := NewMemoryLayer(nil, RootIno)
	delete(l.inodes, RootIno)
	assert.Panics(t, func() { l.checkInvariants() })
}

func TestMemoryLayer_CheckInvariantsPanicsOnNonDirRoot(t *testing.T) {
	l := NewMemoryLayer(nil, RootIno)
	l.inodes[RootIno] = &Inode{Ino: RootIno, IsDir: false}
	assert.Panics(t, func() { l.checkInvariants() })
}

// TestBucketFor_Deterministic covers the property AddDirent callers on both
// sides of a diff rely on: the same name must always land in the same
// bucket, in range, so a parent and child layer that both hash "the same
// way" keep matching inos in the same relative bucket position.
func TestBucketFor_Deterministic(t *testing.T) {
	for _, name := range []string{"a.txt", "sub", "a-rather-longer-filename.bin", ""} {
		first := BucketFor(name)
		assert.GreaterOrEqual(t, first, 0)
		assert.Less(t, first, DirCacheSize)
		assert.Equal(t, first, BucketFor(name), "BucketFor must be deterministic for %q", name)
	}
}

// TestMemoryLayer_AddDirentPreservesInsertionOrderWithinBucket covers a
// bucket collision directly, by handing AddDirent the same bucket index
// for two different names: processDirectory's ordered walk depends on
// AddDirent appending rather than prepending, so dirents sharing a bucket
// come out in the order they went in.
func TestMemoryLayer_AddDirentPreservesInsertionOrderWithinBucket(t *testing.T) {
	l := NewMemoryLayer(nil, RootIno)
	l.PutDir(RootIno, RootIno, FlagDHashed)

	const bucket = 5
	l.AddDirent(RootIno, bucket, "first", 2, false, 5)
	l.AddDirent(RootIno, bucket, "second", 3, false, 6)
	l.AddDirent(RootIno, bucket, "third", 4, false, 5)

	root, ok := l.GetInode(RootIno)
	require.True(t, ok)

	var names []string
	for d := root.Bucket(bucket); d != nil; d = d.Next {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

// TestMemoryLayer_AddDirentFlatLayoutIgnoresBucket covers the non-hashed
// directory case: AddDirent forces every dirent into bucket 0 regardless
// of what the caller asks for.
func TestMemoryLayer_AddDirentFlatLayoutIgnoresBucket(t *testing.T) {
	l := NewMemoryLayer(nil, RootIno)
	l.PutDir(RootIno, RootIno, 0)

	l.AddDirent(RootIno, 40, "only", 2, false, 4)

	root, ok := l.GetInode(RootIno)
	require.True(t, ok)
	require.NotNil(t, root.Bucket(0))
	assert.Equal(t, "only", root.Bucket(0).Name)
	assert.Nil(t, root.Bucket(40))
}

// TestMemoryLayer_LookupDirentByIno_CursorAdvancesPastPrev covers a
// directory holding several hard-link names for the same inode: starting
// from nil returns the first match, and handing back that match as prev
// returns the next one rather than looping back to the start, which is
// what lets the diff driver enumerate every link name once (spec §4.5).
func TestMemoryLayer_LookupDirentByIno_CursorAdvancesPastPrev(t *testing.T) {
	const fileIno = 2

	l := NewMemoryLayer(nil, RootIno)
	l.PutDir(RootIno, RootIno, FlagDHashed)
	l.PutFile(fileIno, RootIno, FlagMLinks, 2)
	l.AddDirent(RootIno, 0, "other", 3, false, 5)
	l.AddDirent(RootIno, 0, "link-a", fileIno, false, 6)
	l.AddDirent(RootIno, 0, "link-b", fileIno, false, 6)

	first, ok := l.LookupDirentByIno(RootIno, fileIno, nil)
	require.True(t, ok)
	assert.Equal(t, "link-a", first.Name)

	second, ok := l.LookupDirentByIno(RootIno, fileIno, first)
	require.True(t, ok)
	assert.Equal(t, "link-b", second.Name)

	_, ok = l.LookupDirentByIno(RootIno, fileIno, second)
	assert.False(t, ok, "no third link name exists")
}
