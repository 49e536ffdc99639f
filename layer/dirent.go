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

// Dirent is one directory entry: (name, ino) plus the bucket-local next
// pointer the comparator walks. Both a layer and its parent must assign
// dirents with equal Ino to the same relative order within a bucket (spec
// §3.1) for the ordered-walk comparator to be correct; the reference
// in-memory Layer in memory.go preserves insertion order to guarantee this.
type Dirent struct {
	Ino  Ino
	Name string

	// Size mirrors the C struct's di_size field doing double duty as the
	// directory entry's name length; spec §4.3 compares it between layers
	// to detect a rename even when Name matches length but not content
	// (and vice versa when Name differs only in encoded length).
	Size int

	IsDir bool

	Next *Dirent
}
