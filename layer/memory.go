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
	"hash/fnv"

	"github.com/jacobsa/syncutil"
)

// MemoryLayer is a reference, in-memory implementation of Layer. It is
// deliberately not a production layer store: it exists so the diff engine's
// tests and the CLI demo have something concrete to diff against. Callers
// build a MemoryLayer by hand with PutDir/PutFile/AddDirent/SetHardLinks,
// then wire one layer as the Parent of another.
type MemoryLayer struct {
	mu syncutil.InvariantMutex

	parent         Layer
	lastIno        Ino
	removed        bool
	rootRestarting bool
	size           uint64

	inodes    map[Ino]*Inode
	hardlinks map[Ino][]HardLink
}

// NewMemoryLayer creates an empty layer forked from parent (nil for the
// base layer of a tree) with the given lastIno snapshot, and an empty root
// directory.
func NewMemoryLayer(parent Layer, lastIno Ino) *MemoryLayer {
	l := &MemoryLayer{
		parent:    parent,
		lastIno:   lastIno,
		inodes:    make(map[Ino]*Inode),
		hardlinks: make(map[Ino][]HardLink),
	}
	l.mu = syncutil.NewInvariantMutex(l.checkInvariants)
	l.inodes[RootIno] = &Inode{
		Ino:     RootIno,
		Parent:  RootIno,
		IsDir:   true,
		NLink:   1,
		Flags:   FlagShared,
		Buckets: make([]*Dirent, 1),
	}
	return l
}

func (l *MemoryLayer) checkInvariants() {
	root, ok := l.inodes[RootIno]
	if !ok || !root.IsDir {
		panic("layer: root inode missing or not a directory")
	}
}

func (l *MemoryLayer) Lock()   { l.mu.Lock() }
func (l *MemoryLayer) Unlock() { l.mu.Unlock() }

func (l *MemoryLayer) Root() Ino           { return RootIno }
func (l *MemoryLayer) Parent() Layer       { return l.parent }
func (l *MemoryLayer) LastIno() Ino        { return l.lastIno }
func (l *MemoryLayer) SetLastIno(ino Ino)  { l.lastIno = ino }
func (l *MemoryLayer) Removed() bool       { return l.removed }
func (l *MemoryLayer) SetRemoved(v bool)   { l.removed = v }

func (l *MemoryLayer) RootRestarting() bool     { return l.rootRestarting }
func (l *MemoryLayer) SetRootRestarting(v bool) { l.rootRestarting = v }

func (l *MemoryLayer) Size() uint64     { return l.size }
func (l *MemoryLayer) SetSize(n uint64) { l.size = n }

func (l *MemoryLayer) GetInode(ino Ino) (*Inode, bool) {
	i, ok := l.inodes[ino]
	return i, ok
}

// IterateInodeCache visits every inode this layer has instantiated. The
// driver (spec §4.6) makes two calls, one filtering to directories and one
// to files; map iteration order is otherwise unspecified, matching the
// source's own cache-bucket traversal order not being part of the contract.
func (l *MemoryLayer) IterateInodeCache(fn func(*Inode)) {
	for _, i := range l.inodes {
		fn(i)
	}
}

func (l *MemoryLayer) LookupDirent(dir Ino, name string) (Ino, bool) {
	d, ok := l.inodes[dir]
	if !ok || !d.IsDir {
		return InvalidIno, false
	}
	for _, head := range d.Buckets {
		for e := head; e != nil; e = e.Next {
			if e.Name == name {
				return e.Ino, true
			}
		}
	}
	return InvalidIno, false
}

func (l *MemoryLayer) LookupDirentByIno(dir Ino, ino Ino, prev *Dirent) (*Dirent, bool) {
	d, ok := l.inodes[dir]
	if !ok || !d.IsDir {
		return nil, false
	}
	started := prev == nil
	for _, head := range d.Buckets {
		for e := head; e != nil; e = e.Next {
			if !started {
				if e == prev {
					started = true
				}
				continue
			}
			if e.Ino == ino {
				return e, true
			}
		}
	}
	return nil, false
}

func (l *MemoryLayer) HardLinks(ino Ino) []HardLink {
	return l.hardlinks[ino]
}

////////////////////////////////////////////////////////////////////////
// Fixture construction
////////////////////////////////////////////////////////////////////////

// PutDir inserts (or replaces) a directory inode.
func (l *MemoryLayer) PutDir(ino, parent Ino, flags InodeFlags) *Inode {
	n := DirCacheSize
	if !flags.Has(FlagDHashed) {
		n = 1
	}
	in := &Inode{
		Ino:     ino,
		Parent:  parent,
		IsDir:   true,
		NLink:   1,
		Flags:   flags,
		Buckets: make([]*Dirent, n),
	}
	l.inodes[ino] = in
	return in
}

// PutFile inserts (or replaces) a non-directory inode.
func (l *MemoryLayer) PutFile(ino, parent Ino, flags InodeFlags, nlink uint32) *Inode {
	in := &Inode{
		Ino:    ino,
		Parent: parent,
		IsDir:  false,
		NLink:  nlink,
		Flags:  flags,
	}
	l.inodes[ino] = in
	return in
}

// BucketFor returns the bucket index a hashed-layout directory would store
// name in. Parent and child layers must agree on this for a given name, so
// both sides of a fixture should call the same function; a flat-layout
// directory always uses bucket 0.
func BucketFor(name string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return int(h.Sum32() % DirCacheSize)
}

// AddDirent appends a dirent to the end of dir's bucket chain (appending,
// not prepending, preserves insertion order — the property Strategy A
// relies on when parent and child assign matching inos to the same
// relative position) and bumps dir.Size. bucket is ignored (forced to 0)
// when dir uses the flat layout.
func (l *MemoryLayer) AddDirent(dir Ino, bucket int, name string, childIno Ino, isDir bool, size int) {
	d := l.inodes[dir]
	if !d.Flags.Has(FlagDHashed) {
		bucket = 0
	}
	e := &Dirent{Ino: childIno, Name: name, Size: size, IsDir: isDir}
	head := d.Buckets[bucket]
	if head == nil {
		d.Buckets[bucket] = e
	} else {
		cur := head
		for cur.Next != nil {
			cur = cur.Next
		}
		cur.Next = e
	}
	d.Size++
}

// SetHardLinks installs the hard-link table entries for a multi-parent
// file and sets FlagMLinks on it.
func (l *MemoryLayer) SetHardLinks(ino Ino, links []HardLink) {
	l.hardlinks[ino] = links
	if in, ok := l.inodes[ino]; ok {
		in.Flags |= FlagMLinks
	}
}
