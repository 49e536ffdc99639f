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
	"fmt"
	"syscall"
)

// ErrInvalidLayer is returned when the requested layer name does not
// resolve to a layer, or a probe/bypass request carries the wrong buffer
// size. It wraps syscall.EINVAL so callers that still speak errno can
// recover it with errors.Is.
var ErrInvalidLayer = fmt.Errorf("diff: invalid layer: %w", syscall.EINVAL)

// ErrLayerUnavailable is returned when a layer exists but cannot be
// diffed: it has been removed, the root layer is mid-restart, or it has
// no parent to diff against.
var ErrLayerUnavailable = fmt.Errorf("diff: layer unavailable: %w", syscall.EIO)
