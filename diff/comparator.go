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

import "github.com/lcfs-project/lcfs/layer"

// compareDirectories decides which comparison strategy applies to dir
// against pdir and runs it. When dir and pdir are the very same
// directory carried over between layers (the root, or an inode whose
// number is unchanged) and both use the same dirent layout, the ordered
// walk of processDirectory applies; otherwise the two directories are
// compared by name with compareDirectory.
func compareDirectories(cl *changeList, child, parent layer.Layer, dir, pdir *layer.Inode, lastIno layer.Ino, cd *ChangedDir) {
	if pdir != nil &&
		(dir.Ino == child.Root() || pdir.Ino == dir.Ino) &&
		dir.Flags.Has(layer.FlagDHashed) == pdir.Flags.Has(layer.FlagDHashed) {
		processDirectory(cl, child, parent, dir, pdir, lastIno, cd)
		return
	}
	compareDirectory(cl, child, parent, dir, pdir, lastIno, cd)
}

// processDirectory implements the ordered-walk comparison (Strategy A):
// dir and pdir are the same directory's two layer revisions, so their
// dirents with equal Ino appear in the same relative order within each
// bucket. A single linear pass per bucket is enough to detect renames
// (same ino, different name or length), removals, and additions, without
// any name lookups.
func processDirectory(cl *changeList, child, parent layer.Layer, dir, pdir *layer.Inode, lastIno layer.Ino, cd *ChangedDir) {
	if dir.Flags.Has(layer.FlagShared) {
		return
	}

	for i := 0; i < dir.BucketCount(); i++ {
		dirent := dir.Bucket(i)
		pdirent := pdir.Bucket(i)
		first := dirent
		var anchor *layer.Dirent

		for pdirent != nil {
			last := dirent
			for dirent != nil && dirent.Ino != pdirent.Ino {
				dirent = dirent.Next
			}
			if dirent != nil {
				if anchor == nil {
					anchor = dirent
				}
				if dirent.Size != pdirent.Size || dirent.Name != pdirent.Name {
					addName(cl, child, parent, cd, pdirent.Ino, pdirent.Name, pdirent.IsDir, lastIno, ChangeRemoved)
					addName(cl, child, parent, cd, dirent.Ino, dirent.Name, dirent.IsDir, lastIno, ChangeAdded)
				}
				dirent = dirent.Next
			} else {
				addName(cl, child, parent, cd, pdirent.Ino, pdirent.Name, pdirent.IsDir, lastIno, ChangeRemoved)
				dirent = last
			}
			pdirent = pdirent.Next
		}

		for dirent = first; dirent != anchor; dirent = dirent.Next {
			addName(cl, child, parent, cd, dirent.Ino, dirent.Name, dirent.IsDir, lastIno, ChangeAdded)
		}
	}
}

// compareDirectory implements the name-lookup comparison (Strategy B),
// used when dir and pdir are two unrelated directory objects that merely
// share a path (e.g. a removed-and-recreated directory). Every entry of
// dir missing from pdir is an addition; every entry of pdir missing from
// dir is a removal. pdir may be nil, meaning "dir is entirely new".
func compareDirectory(cl *changeList, child, parent layer.Layer, dir, pdir *layer.Inode, lastIno layer.Ino, cd *ChangedDir) {
	for i := 0; i < dir.BucketCount(); i++ {
		for d := dir.Bucket(i); d != nil; d = d.Next {
			found := false
			if pdir != nil {
				_, found = dirLookup(pdir, d.Name)
			}
			if !found {
				addName(cl, child, parent, cd, d.Ino, d.Name, d.IsDir, lastIno, ChangeAdded)
			}
		}
	}
	if pdir == nil {
		return
	}
	for i := 0; i < pdir.BucketCount(); i++ {
		for d := pdir.Bucket(i); d != nil; d = d.Next {
			if _, found := dirLookup(dir, d.Name); !found {
				addName(cl, child, parent, cd, d.Ino, d.Name, d.IsDir, lastIno, ChangeRemoved)
			}
		}
	}
}

// dirLookup walks an already-resolved directory inode's buckets looking
// for name, without going through a Layer — both sides of compareDirectory
// already hold the *layer.Inode they need.
func dirLookup(dir *layer.Inode, name string) (layer.Ino, bool) {
	for i := 0; i < dir.BucketCount(); i++ {
		for d := dir.Bucket(i); d != nil; d = d.Next {
			if d.Name == name {
				return d.Ino, true
			}
		}
	}
	return layer.InvalidIno, false
}

// addName records one comparator decision. A directory entry recurses
// into addDirectory so its own subtree gets processed; anything else is
// a plain file-level record against cd.
func addName(cl *changeList, child, parent layer.Layer, cd *ChangedDir, ino layer.Ino, name string, isDir bool, lastIno layer.Ino, ctype ChangeType) {
	if isDir && ctype != ChangeRemoved {
		dir, ok := child.GetInode(ino)
		if ok && (!dir.Flags.Has(layer.FlagCTracked) || ctype == ChangeAdded) {
			addDirectory(cl, child, parent, dir, name, lastIno, ctype)
		}
		return
	}

	cd.addFile(name, ctype)
	if ctype != ChangeRemoved {
		if inode, ok := child.GetInode(ino); ok {
			if ino > lastIno || !inode.Flags.Has(layer.FlagMLinks) {
				inode.Flags |= layer.FlagCTracked
			}
		}
	}
}
