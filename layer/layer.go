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

// Package layer defines the storage-side collaborators that the diff engine
// reads from: layers, inodes, dirents and the per-inode hard-link table. A
// real mount backs these with on-disk or in-memory structures; this package
// only speaks the contract the engine needs. Layer also ships a reference
// in-memory implementation (see memory.go) used by the engine's own tests
// and by the CLI demo — it is not a production layer store.
package layer

import "github.com/jacobsa/fuse/fuseops"

// Ino identifies an inode within a single layer. Inode numbers are not
// comparable across layers except via the root-inode translation rule (see
// Layer.Root and the diff package's translateParent).
type Ino uint64

// RootIno is the inode number of the root directory of every layer,
// reusing the FUSE kernel's own root inode identifier so a layer's root can
// be handed directly to a mounted file system without translation.
const RootIno = Ino(fuseops.RootInodeID)

// InvalidIno marks the absence of an inode, e.g. a failed dirent lookup.
const InvalidIno = Ino(0)

// DirCacheSize is the fixed bucket count of a hashed-layout directory (the
// "dir-cache size" of spec §4.3).
const DirCacheSize = 128

// InodeFlags is a bitmask of the per-inode flags the diff engine reads and,
// in the case of CTRACKED, mutates.
type InodeFlags uint32

const (
	// FlagShared marks a directory identical to its counterpart in the
	// parent layer; the comparator skips it outright.
	FlagShared InodeFlags = 1 << iota

	// FlagDHashed marks a directory using the hashed (DirCacheSize-bucket)
	// dirent layout rather than a single flat list.
	FlagDHashed

	// FlagMLinks marks a file inode with hard links from more than one
	// parent directory, tracked in the layer's hard-link table.
	FlagMLinks

	// FlagRemoved marks an inode logically deleted; it is skipped by the
	// diff driver's inode-cache passes.
	FlagRemoved

	// FlagCTracked is owned by the diff engine: set on every inode already
	// represented in the in-progress change list, cleared in one pass at
	// the end of a diff session.
	FlagCTracked
)

// Has reports whether all bits in want are set.
func (f InodeFlags) Has(want InodeFlags) bool { return f&want == want }

// HasAny reports whether any bit in mask is set.
func (f InodeFlags) HasAny(mask InodeFlags) bool { return f&mask != 0 }

// HardLink is one (parent directory, link count) contribution to a
// multi-parent file's total nlink, per spec §3.1's hard-link table.
type HardLink struct {
	ParentIno Ino
	NLink     uint32
}

// Layer is the read-only (from the diff engine's point of view, aside from
// CTRACKED) storage collaborator for one point-in-time overlay.
//
// Layer has no dirent-enumeration method of its own: callers walk a
// directory's entries via its *Inode directly, through Inode.BucketCount
// and Inode.Bucket(i) (diff/comparator.go's processDirectory and
// compareDirectory both do this). Implementations must guarantee: dirents
// with equal Ino are enumerated in the same relative order by Inode.Bucket
// in both a layer and its parent, within a given bucket index — this is
// the invariant Strategy A (spec §4.3) depends on for correctness.
type Layer interface {
	// Lock/Unlock guard this layer's mutable state: its change list and
	// the CTRACKED bit of its inodes. Diffing a child layer takes this
	// lock on the child for the duration of the request and on the
	// parent only while building the change list (spec §5); the
	// "shared" read locks described there degenerate to this single
	// exclusive lock here, which is what jacobsa/syncutil.InvariantMutex
	// (the teacher's lock type) exposes.
	Lock()
	Unlock()

	// Root returns this layer's root inode number. It is always RootIno.
	Root() Ino

	// Parent returns the parent layer, or nil if this is the base layer.
	Parent() Layer

	// LastIno returns the highest inode number assigned as of the moment
	// this layer was forked from its parent (spec's "lastIno").
	LastIno() Ino

	// Removed reports whether the layer itself has been torn down.
	Removed() bool

	// RootRestarting reports whether the root layer is mid-restart; the
	// diff engine refuses requests in that state (spec §7).
	RootRestarting() bool

	// Size returns the layer's total size in bytes, as reported by the
	// swap-layers-for-commit bypass reply (spec §4.6 mode 2).
	Size() uint64

	// GetInode returns the inode with the given number, or (nil, false) if
	// it does not exist in this layer.
	GetInode(ino Ino) (*Inode, bool)

	// IterateInodeCache calls fn once per inode currently cached by this
	// layer, across every cache bucket, directories and files alike, in
	// no specified order. The driver calls it twice, filtering to
	// directories on the first pass and to files on the second (spec §4.6).
	IterateInodeCache(fn func(*Inode))

	// LookupDirent finds the child of dir named name, returning
	// InvalidIno if absent.
	LookupDirent(dir Ino, name string) (Ino, bool)

	// LookupDirentByIno returns the next dirent of dir whose Ino matches
	// ino, starting after prev (nil to start from dir's first dirent, in
	// bucket order). It is used to enumerate every link
	// name a multi-parent file has within one directory (spec §4.5).
	LookupDirentByIno(dir Ino, ino Ino, prev *Dirent) (*Dirent, bool)

	// HardLinks returns the hard-link table entries for ino, valid only
	// when the inode has FlagMLinks set.
	HardLinks(ino Ino) []HardLink
}
