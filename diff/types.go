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

// Package diff implements the layer-diff engine: given a child layer and
// its parent, it walks the two directory trees and produces an ordered
// stream of path-level changes, packed into fixed-size wire frames that a
// caller can pull one at a time.
package diff

import "github.com/lcfs-project/lcfs/layer"

// ChangeType classifies one path-level change. Its declaration order is
// the wire encoding (spec §6) and must not change.
type ChangeType uint8

const (
	ChangeNone ChangeType = iota
	ChangeAdded
	ChangeModified
	ChangeRemoved
)

func (t ChangeType) String() string {
	switch t {
	case ChangeNone:
		return "none"
	case ChangeAdded:
		return "added"
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// changeForIno classifies an inode as newly created or merely modified by
// comparing it against the parent layer's last-assigned inode number at
// the time the child layer was forked.
func changeForIno(ino, lastIno layer.Ino) ChangeType {
	if ino > lastIno {
		return ChangeAdded
	}
	return ChangeModified
}

// translateParent rewrites a parent-directory inode number recorded
// before RootIno was fixed to a single constant shared by every layer.
// With a single shared RootIno it is currently always the identity, but
// keeping the indirection means a Layer implementation that assigns
// per-layer root inode numbers doesn't need any other part of this
// package to change.
func translateParent(l layer.Layer, ino layer.Ino) layer.Ino {
	if ino == layer.RootIno {
		return l.Root()
	}
	return ino
}
