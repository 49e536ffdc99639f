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
	"strings"

	"github.com/lcfs-project/lcfs/layer"
)

// buildPath joins a parent's already-computed path with a child name.
// The root's own path is always "/", assigned directly by
// addDirectoryPath rather than through this helper.
func buildPath(parentPath, name string) string {
	if parentPath == "/" {
		return "/" + name
	}
	return parentPath + "/" + name
}

// pathLookup resolves a slash-separated path to the directory inode it
// names within l, or nil if any component is missing or not a
// directory.
func pathLookup(l layer.Layer, path string) *layer.Inode {
	ino := l.Root()
	dir, ok := l.GetInode(ino)
	if !ok || !dir.IsDir {
		return nil
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return dir
	}
	for _, name := range strings.Split(trimmed, "/") {
		childIno, found := l.LookupDirent(ino, name)
		if !found {
			return nil
		}
		child, ok := l.GetInode(childIno)
		if !ok || !child.IsDir {
			return nil
		}
		dir, ino = child, childIno
	}
	return dir
}

// firstDirentByIno finds dir's dirent pointing at ino, used when a
// directory is reached through the inode cache rather than through its
// own dirent and so its name in the parent isn't already known.
func firstDirentByIno(l layer.Layer, dir, ino layer.Ino) (*layer.Dirent, bool) {
	return l.LookupDirentByIno(dir, ino, nil)
}
