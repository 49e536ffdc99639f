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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lcfs-project/lcfs/diff"
	"github.com/lcfs-project/lcfs/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runDiff wires buildLayers straight into the engine, the same sequence
// diffCmd.RunE follows, and returns every decoded change.
func runDiff(t *testing.T, childDir, parentDir string) []diff.PackedChange {
	t.Helper()
	child, _, err := buildLayers(childDir, parentDir)
	require.NoError(t, err)

	engine := diff.NewEngine(mapResolver{layer: child}, 4096, false, nil, nil)
	var all []diff.PackedChange
	for {
		frame, err := engine.LayerDiff(context.Background(), demoLayerName, 4096)
		require.NoError(t, err)
		changes := diff.DecodePackedChanges(frame)
		if len(changes) == 0 {
			return all
		}
		all = append(all, changes...)
	}
}

func TestBuildLayers_UnchangedFileProducesNoDiff(t *testing.T) {
	parentDir, childDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(parentDir, "a.txt"), "hello")
	writeFile(t, filepath.Join(childDir, "a.txt"), "hello")

	stat, err := os.Stat(filepath.Join(parentDir, "a.txt"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(filepath.Join(childDir, "a.txt"), stat.ModTime(), stat.ModTime()))

	assert.Empty(t, runDiff(t, childDir, parentDir))
}

func TestBuildLayers_AddedAndRemovedFiles(t *testing.T) {
	parentDir, childDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(parentDir, "removed.txt"), "bye")
	writeFile(t, filepath.Join(childDir, "added.txt"), "hi")

	changes := runDiff(t, childDir, parentDir)

	assert.Contains(t, changes, diff.PackedChange{Type: diff.ChangeAdded, Path: "added.txt"})
	assert.Contains(t, changes, diff.PackedChange{Type: diff.ChangeRemoved, Path: "removed.txt"})
}

func TestBuildLayers_ModifiedFileGetsFreshIno(t *testing.T) {
	parentDir, childDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(parentDir, "f.txt"), "v1")
	writeFile(t, filepath.Join(childDir, "f.txt"), "v2-longer")
	// Force mtimes apart in case the filesystem's clock resolution would
	// otherwise make them compare equal.
	now := time.Now()
	require.NoError(t, os.Chtimes(filepath.Join(childDir, "f.txt"), now.Add(time.Second), now.Add(time.Second)))

	changes := runDiff(t, childDir, parentDir)

	assert.Contains(t, changes, diff.PackedChange{Type: diff.ChangeModified, Path: "f.txt"})
}

func TestBuildLayers_DirectoriesKeepStableIno(t *testing.T) {
	parentDir, childDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parentDir, "sub"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(childDir, "sub"), 0o755))
	writeFile(t, filepath.Join(parentDir, "sub", "f.txt"), "same")
	writeFile(t, filepath.Join(childDir, "sub", "f.txt"), "same")
	stat, err := os.Stat(filepath.Join(parentDir, "sub", "f.txt"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(filepath.Join(childDir, "sub", "f.txt"), stat.ModTime(), stat.ModTime()))

	child, parent, err := buildLayers(childDir, parentDir)
	require.NoError(t, err)

	childSubIno, ok := child.LookupDirent(layer.RootIno, "sub")
	require.True(t, ok)
	parentSubIno, ok := parent.LookupDirent(layer.RootIno, "sub")
	require.True(t, ok)
	assert.Equal(t, parentSubIno, childSubIno)
}

func TestBuildLayers_HardLinkDetected(t *testing.T) {
	parentDir, childDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(parentDir, "orig.txt"), "linked")
	require.NoError(t, os.Link(filepath.Join(parentDir, "orig.txt"), filepath.Join(parentDir, "also.txt")))
	writeFile(t, filepath.Join(childDir, "orig.txt"), "linked")
	require.NoError(t, os.Link(filepath.Join(childDir, "orig.txt"), filepath.Join(childDir, "also.txt")))
	stat, err := os.Stat(filepath.Join(parentDir, "orig.txt"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(filepath.Join(childDir, "orig.txt"), stat.ModTime(), stat.ModTime()))

	_, parent, err := buildLayers(childDir, parentDir)
	require.NoError(t, err)

	origIno, ok := parent.LookupDirent(layer.RootIno, "orig.txt")
	require.True(t, ok)
	alsoIno, ok := parent.LookupDirent(layer.RootIno, "also.txt")
	require.True(t, ok)
	assert.Equal(t, origIno, alsoIno)
}
