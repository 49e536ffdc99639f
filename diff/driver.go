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
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lcfs-project/lcfs/clock"
	"github.com/lcfs-project/lcfs/layer"
)

// sessionTimeout bounds how long an abandoned resumable diff session
// (spec §6: a caller that never comes back for its remaining frames)
// keeps its accumulated change list alive.
const sessionTimeout = 5 * time.Minute

// session pairs a resumable change list with the time it was last
// touched, so stale sessions from callers that vanished mid-diff can be
// reclaimed instead of leaking for the engine's lifetime.
type session struct {
	cl        *changeList
	touchedAt time.Time
}

// Resolver maps a layer name to the layer it names. A real mount backs
// this with its layer table; layer/memory.go's reference layers are
// resolved by a trivial single-name Resolver in tests and the CLI demo.
type Resolver interface {
	Lookup(name string) (layer.Layer, bool)
}

// Engine is the layer-diff engine: one Engine serves every layer-diff
// request for a mount, keeping per-layer resumption state between calls.
type Engine struct {
	resolver            Resolver
	blockSize           int
	swapLayersForCommit bool
	logger              *slog.Logger
	metrics             *engineMetrics
	clock               clock.Clock

	sessions sync.Map // layer name -> *session
}

// NewEngine builds an Engine. logger and metrics may be nil; a nil
// logger discards log output and a nil metrics disables instrumentation.
func NewEngine(resolver Resolver, blockSize int, swapLayersForCommit bool, logger *slog.Logger, metrics *engineMetrics) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		resolver:            resolver,
		blockSize:           blockSize,
		swapLayersForCommit: swapLayersForCommit,
		logger:              logger,
		metrics:             metrics,
		clock:               clock.RealClock{},
	}
}

// LayerDiff produces (or resumes producing) the diff of the layer named
// layerName against its parent, returning exactly size bytes. name == "."
// is the probe request (spec §6 mode 0): it reports whether
// swap-layers-for-commit is enabled instead of diffing anything.
func (e *Engine) LayerDiff(ctx context.Context, layerName string, size int) ([]byte, error) {
	if layerName == "." {
		return e.probe(size)
	}

	child, ok := e.resolver.Lookup(layerName)
	if !ok {
		return nil, fmt.Errorf("diff: layer %q not found: %w", layerName, ErrInvalidLayer)
	}

	child.Lock()
	defer child.Unlock()

	if e.swapLayersForCommit {
		return e.swapBypassReply(child, size)
	}

	parent := child.Parent()
	if child.Removed() || child.RootRestarting() || parent == nil {
		return nil, fmt.Errorf("diff: layer %q: %w", layerName, ErrLayerUnavailable)
	}

	if v, ok := e.sessions.Load(layerName); ok {
		s := v.(*session)
		if e.clock.Now().Sub(s.touchedAt) > sessionTimeout {
			e.logger.Debug("discarding expired layer diff session", "layer", layerName)
			e.sessions.Delete(layerName)
		} else {
			e.logger.Debug("resuming layer diff", "layer", layerName)
			return e.finish(ctx, layerName, child, s.cl, size)
		}
	}

	e.logger.Debug("starting layer diff", "layer", layerName)
	e.metrics.recordRequest(ctx)

	parent.Lock()
	lastIno := parent.LastIno()

	cl := newChangeList()
	rootDir, ok := child.GetInode(child.Root())
	if !ok {
		parent.Unlock()
		panic("diff: layer has no root inode")
	}
	addDirectory(cl, child, parent, rootDir, "", lastIno, ChangeModified)

	// First pass: every modified or newly created directory.
	child.IterateInodeCache(func(in *layer.Inode) {
		if in.IsDir && !in.Flags.HasAny(layer.FlagRemoved|layer.FlagCTracked) {
			addDirectory(cl, child, parent, in, "", lastIno, changeForIno(in.Ino, lastIno))
		}
	})

	// Second pass: every modified or newly created file, including
	// every link name of a hard-linked one.
	child.IterateInodeCache(func(in *layer.Inode) {
		if !in.IsDir && !in.Flags.HasAny(layer.FlagRemoved|layer.FlagCTracked) {
			addModifiedInode(cl, child, parent, in, lastIno)
		}
	})

	parent.Unlock()

	buf, err := e.finish(ctx, layerName, child, cl, size)

	child.IterateInodeCache(func(in *layer.Inode) {
		in.Flags &^= layer.FlagCTracked
	})

	return buf, err
}

// finish packs one frame out of cl, stores or discards the session
// depending on whether anything is left, and reports metrics.
func (e *Engine) finish(ctx context.Context, layerName string, child layer.Layer, cl *changeList, size int) ([]byte, error) {
	buf, records := packInto(cl, child.Root(), size)
	if cl.head == nil {
		e.sessions.Delete(layerName)
		e.logger.Debug("layer diff complete", "layer", layerName)
	} else {
		e.sessions.Store(layerName, &session{cl: cl, touchedAt: e.clock.Now()})
	}
	e.metrics.recordFrame(ctx, records)
	return buf, nil
}

// probe answers the "." swap-layers-for-commit query (spec §6 mode 0):
// an 8-byte all-ones buffer when enabled, all-zero otherwise.
func (e *Engine) probe(size int) ([]byte, error) {
	if size != 8 {
		return nil, fmt.Errorf("diff: probe requires an 8-byte buffer, got %d: %w", size, ErrInvalidLayer)
	}
	buf := make([]byte, 8)
	if e.swapLayersForCommit {
		for i := range buf {
			buf[i] = 0xff
		}
	}
	return buf, nil
}

// swapBypassReply answers a diff request while swap-layers-for-commit is
// enabled (spec §4.6 mode 2): the layer's own size, uninterpreted as a
// diff, since real diffing is unnecessary when commits swap layers in
// place instead.
func (e *Engine) swapBypassReply(child layer.Layer, size int) ([]byte, error) {
	if size != 8 {
		return nil, fmt.Errorf("diff: swap-bypass requires an 8-byte buffer, got %d: %w", size, ErrInvalidLayer)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, child.Size())
	return buf, nil
}
