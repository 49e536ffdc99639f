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

// ChangedFile is one file-level record pending under a ChangedDir: a
// single name plus the type of change observed for it.
type ChangedFile struct {
	Name string
	Type ChangeType
	Next *ChangedFile
}

// ChangedDir is one directory-level record in the change list: the
// directory's own add/modify status, its full path (computed once, at
// insertion time), and the files changed directly inside it. Directories
// are singly linked in the order they were discovered, with a new entry
// spliced in immediately after its parent's entry — the order the reply
// serializer later walks in.
type ChangedDir struct {
	Ino  layer.Ino
	Type ChangeType
	Path string

	Files     *ChangedFile
	filesTail *ChangedFile

	Next *ChangedDir
}

// addFile records a change to name under this directory, coalescing
// against an existing record the way the original change list does: a
// REMOVED record later overwritten by an ADDED one becomes MODIFIED
// (i.e. a rename-in-place or replace), a repeat ADDED or MODIFIED report
// on an ADDED or MODIFIED record keeps the existing record, and any other
// repeat report is an invariant violation.
func (cd *ChangedDir) addFile(name string, ctype ChangeType) {
	for f := cd.Files; f != nil; f = f.Next {
		if f.Name != name {
			continue
		}
		if f.Type == ChangeRemoved && ctype == ChangeAdded {
			f.Type = ChangeModified
			return
		}
		if ctype == ChangeRemoved {
			if f.Type == ChangeRemoved {
				panic("diff: changelist file " + name + " reported removed twice")
			}
			panic("diff: changelist file " + name + " reported removed after " + f.Type.String())
		}
		if f.Type != ChangeAdded && f.Type != ChangeModified {
			panic("diff: changelist file entry in unexpected state " + f.Type.String())
		}
		return
	}

	nf := &ChangedFile{Name: name, Type: ctype}
	if cd.filesTail == nil {
		cd.Files = nf
	} else {
		cd.filesTail.Next = nf
	}
	cd.filesTail = nf
}

// removeFileNamed drops a REMOVED record for name, returning whether one
// was found. It backs the "directory replacing a file of the same name"
// promotion in addDirectoryPath.
func (cd *ChangedDir) removeFileNamed(name string) bool {
	var prev *ChangedFile
	for f := cd.Files; f != nil; f = f.Next {
		if f.Name != name {
			prev = f
			continue
		}
		if f.Type != ChangeRemoved {
			return false
		}
		if prev == nil {
			cd.Files = f.Next
		} else {
			prev.Next = f.Next
		}
		if cd.filesTail == f {
			cd.filesTail = prev
		}
		return true
	}
	return false
}

// changeList is the per-session accumulator the diff driver builds while
// walking a child layer, and the reply serializer drains from afterward.
// Unlike the intrusive C list it replaces, directories and files are
// plain Go structs linked by pointer; nothing here is freed explicitly —
// free (below) simply drops the list for the garbage collector.
type changeList struct {
	head *ChangedDir
}

func newChangeList() *changeList {
	return &changeList{}
}

// findDir returns the existing record for ino, or nil.
func (cl *changeList) findDir(ino layer.Ino) *ChangedDir {
	for d := cl.head; d != nil; d = d.Next {
		if d.Ino == ino {
			return d
		}
	}
	return nil
}

// findOrCreateDir returns the existing record for ino if present,
// otherwise a freshly allocated, not-yet-linked record of the given
// type. The caller is responsible for placing a freshly created record
// into the list (see addDirectoryPath).
func (cl *changeList) findOrCreateDir(ino layer.Ino, ctype ChangeType) (cd *ChangedDir, created bool) {
	if cd := cl.findDir(ino); cd != nil {
		return cd, false
	}
	return &ChangedDir{Ino: ino, Type: ctype}, true
}

// free discards the change list; the backing nodes become eligible for
// garbage collection once nothing else references them.
func (cl *changeList) free() {
	cl.head = nil
}
