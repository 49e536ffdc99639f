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
	"context"
	"log/slog"

	"github.com/lcfs-project/lcfs/layer"
)

// newRootLayer builds an otherwise-empty MemoryLayer and, by replacing
// its root with PutDir, clears the FlagShared placeholder NewMemoryLayer
// leaves on a fresh root, so
// tests that are about to populate real content into it don't
// accidentally trip processDirectory's short-circuit.
func newRootLayer(parent *layer.MemoryLayer, lastIno layer.Ino) *layer.MemoryLayer {
	l := layer.NewMemoryLayer(parent, lastIno)
	l.PutDir(layer.RootIno, layer.RootIno, 0)
	return l
}

func putDir(l *layer.MemoryLayer, ino, parent layer.Ino, name string) {
	l.PutDir(ino, parent, 0)
	l.AddDirent(parent, 0, name, ino, true, len(name))
}

func putFile(l *layer.MemoryLayer, ino, parent layer.Ino, name string, nlink uint32) {
	l.PutFile(ino, parent, 0, nlink)
	l.AddDirent(parent, 0, name, ino, false, len(name))
}

// singleResolver resolves exactly one layer name, matching how the CLI's
// mapResolver and the engine's tests only ever need one layer in flight.
type singleResolver struct {
	name string
	l    layer.Layer
}

func (r singleResolver) Lookup(name string) (layer.Layer, bool) {
	if name != r.name {
		return nil, false
	}
	return r.l, true
}

func testEngine(child layer.Layer, blockSize int) *Engine {
	return NewEngine(singleResolver{name: "child", l: child}, blockSize, false, slog.Default(), nil)
}

// drainDiff pulls every frame of a layer diff until the engine reports
// the stream complete (an all-zero frame), concatenating the decoded
// records in wire order.
func drainDiff(e *Engine, blockSize int) []PackedChange {
	var all []PackedChange
	for {
		frame, err := e.LayerDiff(context.Background(), "child", blockSize)
		if err != nil {
			panic(err)
		}
		changes := DecodePackedChanges(frame)
		if len(changes) == 0 {
			return all
		}
		all = append(all, changes...)
	}
}
