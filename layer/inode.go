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

// Inode is the storage-side record the diff engine reads. Unlike the
// teacher's DirInode (which represents only directories, backed by a GCS
// object), an Inode here represents any file-system object: the diff engine
// needs uniform access to ino/parent/nlink/flags regardless of type, and
// switches on IsDir itself.
type Inode struct {
	Ino    Ino
	Parent Ino
	NLink  uint32
	IsDir  bool

	// Size is the directory's entry count for a directory inode, or
	// unused for a file (the engine never reads file content).
	Size int

	Flags InodeFlags

	// Buckets holds this inode's dirent storage when IsDir is true. Index
	// 0 is used for the flat (non-hashed) layout; a hashed-layout
	// directory uses all DirCacheSize buckets.
	Buckets []*Dirent
}

// BucketCount returns how many buckets the comparator should walk for this
// directory: 1 for the flat layout, DirCacheSize for the hashed layout.
func (i *Inode) BucketCount() int {
	if i.Flags.Has(FlagDHashed) {
		return DirCacheSize
	}
	return 1
}

// Bucket returns the head dirent of bucket i, or nil if i is out of range
// or the inode isn't a directory.
func (i *Inode) Bucket(idx int) *Dirent {
	if !i.IsDir || idx < 0 || idx >= len(i.Buckets) {
		return nil
	}
	return i.Buckets[idx]
}
