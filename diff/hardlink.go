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

// addModifiedInode records every link name of a non-directory inode
// against its owning parent directories. A file without FlagMLinks is
// looked up only in inode.Parent, and the name recorded there is the
// first dirent pointing at it; a hard-linked file may be linked from
// several parent directories at once, tracked in the layer's hard-link
// table (layer.HardLink), each contributing some of its link names.
func addModifiedInode(cl *changeList, child, parent layer.Layer, inode *layer.Inode, lastIno layer.Ino) {
	ino := inode.Ino
	nlink := inode.NLink

	var links []layer.HardLink
	linkIdx := 0
	if inode.Flags.Has(layer.FlagMLinks) {
		links = child.HardLinks(ino)
	}

	for nlink > 0 {
		var parentIno layer.Ino
		var plink uint32
		if !inode.Flags.Has(layer.FlagMLinks) {
			parentIno = inode.Parent
			plink = 1
		} else {
			if linkIdx >= len(links) {
				panic("diff: hard-link table exhausted before nlink satisfied")
			}
			parentIno = links[linkIdx].ParentIno
			plink = links[linkIdx].NLink
			linkIdx++
		}
		parentIno = translateParent(child, parentIno)

		cd := cl.findDir(parentIno)
		if cd == nil {
			dir, ok := child.GetInode(parentIno)
			if !ok {
				panic("diff: hard-link parent directory missing from layer")
			}
			cd = addDirectory(cl, child, parent, dir, "", lastIno, ChangeModified)
		}
		if plink > nlink {
			panic("diff: hard-link count exceeds inode nlink")
		}
		nlink -= plink

		var prev *layer.Dirent
		for ; plink > 0; plink-- {
			d, ok := child.LookupDirentByIno(cd.Ino, ino, prev)
			if !ok {
				panic("diff: missing dirent for hard-linked inode")
			}
			cd.addFile(d.Name, changeForIno(ino, lastIno))
			prev = d
		}
	}

	inode.Flags |= layer.FlagCTracked
}
