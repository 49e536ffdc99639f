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

// addDirectory ensures dir has a change-list entry, creating entries for
// every ancestor on the way up to the root if needed, then walks dir's
// own subtree exactly once. It is mutually recursive with
// addDirectoryTree/compareDirectories/addName: adding a directory's
// ancestor can, as a side effect of comparing that ancestor's subtree,
// end up adding dir itself before this call gets back around to it.
func addDirectory(cl *changeList, child, parent layer.Layer, dir *layer.Inode, name string, lastIno layer.Ino, ctype ChangeType) *ChangedDir {
	ino := dir.Ino
	parentIno := translateParent(child, dir.Parent)

	var pcd *ChangedDir
	triedParent := false
	for {
		if cd := cl.findDir(ino); cd != nil {
			return cd
		}
		if dir.Flags.Has(layer.FlagCTracked) {
			panic("diff: directory already tracked but missing its change-list entry")
		}
		if ino != parentIno && !triedParent {
			triedParent = true
			if pdir, ok := child.GetInode(parentIno); ok && !pdir.Flags.Has(layer.FlagCTracked) {
				pcd = addDirectory(cl, child, parent, pdir, "", lastIno, changeForIno(pdir.Ino, lastIno))
			}
			continue
		}
		break
	}

	newCd, _ := cl.findOrCreateDir(ino, ctype)
	addDirectoryPath(cl, child, ino, parentIno, newCd, pcd, name)

	if !dir.Flags.Has(layer.FlagCTracked) {
		dir.Flags |= layer.FlagCTracked
		if ino == parentIno {
			pcd = newCd
		}
		addDirectoryTree(cl, child, parent, dir, newCd, pcd, lastIno)
	}
	return newCd
}

// addDirectoryPath links a freshly created directory record into the
// change list immediately after its parent's record, and computes its
// full path. The root directory is always the list head, with path "/".
func addDirectoryPath(cl *changeList, child layer.Layer, ino, parentIno layer.Ino, newCd, pcd *ChangedDir, name string) {
	if ino == child.Root() {
		if cl.head != nil {
			panic("diff: change list already has a root entry")
		}
		cl.head = newCd
		newCd.Path = "/"
		return
	}

	cdir := pcd
	if cdir == nil {
		cdir = cl.findDir(parentIno)
	}
	if cdir == nil {
		panic("diff: parent directory missing from change list")
	}

	newCd.Next = cdir.Next
	cdir.Next = newCd

	if name == "" {
		if d, ok := firstDirentByIno(child, parentIno, ino); ok {
			name = d.Name
		}
	}

	// A directory replacing a file of the same name: the file's removal
	// was already recorded under the parent, so fold it into this
	// directory's own record instead of reporting both.
	if cdir.Type == ChangeModified && newCd.Type == ChangeAdded && cdir.removeFileNamed(name) {
		newCd.Type = ChangeModified
	}

	newCd.Path = buildPath(cdir.Path, name)
}

// addDirectoryTree compares dir's full contents against whatever
// directory occupies the same path in the parent layer, choosing the
// ordered-walk fast path when that's literally the same directory object
// carried forward, and the full name-lookup comparison otherwise.
func addDirectoryTree(cl *changeList, child, parent layer.Layer, dir *layer.Inode, cd, pcd *ChangedDir, lastIno layer.Ino) {
	parentIno := translateParent(child, dir.Parent)
	if pcd == nil {
		pcd = cl.findDir(parentIno)
	}

	if pcd != nil && pcd.Type == ChangeModified {
		var pdir *layer.Inode
		if parent != nil {
			if dir.Ino == child.Root() {
				pdir, _ = parent.GetInode(parent.Root())
			} else {
				pdir = pathLookup(parent, cd.Path)
			}
		}
		if pdir != nil {
			cd.Type = ChangeModified
			if pdir.Size > 0 {
				compareDirectories(cl, child, parent, dir, pdir, lastIno, cd)
				return
			}
		}
	}

	compareDirectories(cl, child, parent, dir, nil, lastIno, cd)
}
