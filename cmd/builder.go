// Copyright 2024 Google Inc. All Rights Reserved.
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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/lcfs-project/lcfs/layer"
)

// treeEntry is one file or directory discovered while walking a real
// directory tree, keyed by its path relative to the tree's root.
type treeEntry struct {
	relPath string
	isDir   bool
	size    int64
	modTime time.Time
	device  uint64
	inode   uint64
}

// walkTree lists every entry under root (root itself excluded), relative
// to root, in a stable (lexical) order — the order both buildLayers
// passes rely on to keep shared-ino dirents in matching relative
// position across layers (spec §3.1's ordered-walk invariant).
func walkTree(root string) ([]treeEntry, error) {
	var entries []treeEntry
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sys, ok := info.Sys().(*syscall.Stat_t)
		if !ok {
			return fmt.Errorf("unsupported platform: no syscall.Stat_t for %s", p)
		}
		entries = append(entries, treeEntry{
			relPath: rel,
			isDir:   info.IsDir(),
			size:    info.Size(),
			modTime: info.ModTime(),
			device:  uint64(sys.Dev),
			inode:   sys.Ino,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].relPath < entries[j].relPath })
	return entries, nil
}

// buildLayers builds an in-memory parent layer from parentDir and a child
// layer from childDir that is diffable against it. Directories keep the
// same Ino across both layers whenever they occupy the same relative
// path, matching the original's "directory inode numbers are stable
// across layers" model; files are assigned a fresh Ino in the child
// whenever their (size, mtime) changed or they're new, reusing the
// parent's Ino only when content looks unchanged. Hard links are
// detected within each tree via (device, inode) identity.
func buildLayers(childDir, parentDir string) (child, parent *layer.MemoryLayer, err error) {
	parentEntries, err := walkTree(parentDir)
	if err != nil {
		return nil, nil, fmt.Errorf("walking parent %s: %w", parentDir, err)
	}
	childEntries, err := walkTree(childDir)
	if err != nil {
		return nil, nil, fmt.Errorf("walking child %s: %w", childDir, err)
	}

	parentLayer := layer.NewMemoryLayer(nil, layer.RootIno)
	// The constructor marks a fresh root FlagShared as a trivially-true
	// default; real content is about to be populated into it, so that
	// default no longer holds.
	parentLayer.PutDir(layer.RootIno, layer.RootIno, 0)
	parentIno := map[string]layer.Ino{".": layer.RootIno}
	parentByPath := map[string]treeEntry{}
	nextIno := layer.RootIno

	nextIno = populateLayer(parentLayer, parentEntries, parentIno, nil, nextIno)
	for _, e := range parentEntries {
		parentByPath[e.relPath] = e
	}
	lastIno := nextIno
	parentLayer.SetLastIno(lastIno)

	childLayer := layer.NewMemoryLayer(parentLayer, lastIno)
	childLayer.PutDir(layer.RootIno, layer.RootIno, 0)
	reuse := map[string]layer.Ino{}
	for _, e := range childEntries {
		pe, ok := parentByPath[e.relPath]
		if !ok || pe.isDir != e.isDir {
			continue
		}
		if e.isDir {
			reuse[e.relPath] = parentIno[e.relPath]
		} else if pe.size == e.size && pe.modTime.Equal(e.modTime) {
			if ino, ok := parentLayer.LookupDirent(parentIno[filepath.Dir(e.relPath)], filepath.Base(e.relPath)); ok {
				reuse[e.relPath] = ino
			}
		}
	}
	childIno := map[string]layer.Ino{".": layer.RootIno}
	populateLayer(childLayer, childEntries, childIno, reuse, nextIno)

	return childLayer, parentLayer, nil
}

// populateLayer fills l's inode cache and dirents from entries, in tree
// order so each directory is created before its children are inserted
// into it. Directories always get an inode-cache entry, matching the
// "directory inodes are always copied up" rule processDirectory relies
// on for traversal; a file only gets one when it's new or modified in
// this layer (reuse[relPath] absent) — an unchanged file (reuse present
// and not a fresh ino) is linked into its directory's dirent list like
// any other entry but never enters l's own cache, exactly as an
// untouched file never enters a real COW layer's inode cache. dirInos
// records the Ino assigned to every directory, keyed by relPath; the
// return value is the next free Ino after everything in entries.
func populateLayer(l *layer.MemoryLayer, entries []treeEntry, dirInos map[string]layer.Ino, reuse map[string]layer.Ino, startIno layer.Ino) layer.Ino {
	nextIno := startIno
	physicalIno := map[[2]uint64]layer.Ino{}
	linkNames := map[layer.Ino][]string{}

	for _, e := range entries {
		parentRel := filepath.Dir(e.relPath)
		parentDirIno, ok := dirInos[parentRel]
		if !ok {
			continue
		}

		var ino layer.Ino
		reused := false
		if reuse != nil {
			if r, ok := reuse[e.relPath]; ok {
				ino, reused = r, true
			}
		}
		if ino == 0 {
			if phys, ok := physicalIno[[2]uint64{e.device, e.inode}]; ok {
				ino = phys
			} else {
				nextIno++
				ino = nextIno
			}
		}
		physicalIno[[2]uint64{e.device, e.inode}] = ino

		name := filepath.Base(e.relPath)
		if e.isDir {
			dirInos[e.relPath] = ino
			if _, ok := l.GetInode(ino); !ok {
				l.PutDir(ino, parentDirIno, 0)
			}
			l.AddDirent(parentDirIno, 0, name, ino, true, len(name))
			continue
		}

		l.AddDirent(parentDirIno, 0, name, ino, false, len(name))
		if reused {
			continue
		}
		linkNames[ino] = append(linkNames[ino], e.relPath)
		if _, ok := l.GetInode(ino); !ok {
			l.PutFile(ino, parentDirIno, 0, 1)
		}
	}

	for ino, names := range linkNames {
		if len(names) <= 1 {
			continue
		}
		byParent := map[string]uint32{}
		for _, n := range names {
			byParent[filepath.Dir(n)]++
		}
		var links []layer.HardLink
		for parentRel, count := range byParent {
			links = append(links, layer.HardLink{ParentIno: dirInos[parentRel], NLink: count})
		}
		l.SetHardLinks(ino, links)
		if in, ok := l.GetInode(ino); ok {
			in.NLink = uint32(len(names))
		}
	}

	return nextIno
}
