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

	"github.com/lcfs-project/lcfs/diff"
	"github.com/lcfs-project/lcfs/layer"
	"github.com/spf13/cobra"
)

// demoLayerName is the single name the CLI's Resolver ever serves; there
// is never more than one child layer alive in a single invocation.
const demoLayerName = "cli"

// mapResolver resolves a single fixed layer name, wrapping the
// in-memory layer a diff or probe subcommand just built from a real
// directory tree.
type mapResolver struct {
	layer layer.Layer
}

func (r mapResolver) Lookup(name string) (layer.Layer, bool) {
	if name != demoLayerName {
		return nil, false
	}
	return r.layer, true
}

var diffCmd = &cobra.Command{
	Use:   "diff <child-dir> <parent-dir>",
	Short: "Print the path-level changes between two directory trees",
	Long: `diff builds an in-memory child layer from <child-dir> and a parent
layer from <parent-dir>, then drives the layer-diff engine's LayerDiff
entry point exactly as a real mount's RPC transport would, pulling
frames until the engine reports the stream complete.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		childDir, parentDir := args[0], args[1]
		child, _, err := buildLayers(childDir, parentDir)
		if err != nil {
			return fmt.Errorf("building layers: %w", err)
		}

		engine := diff.NewEngine(mapResolver{layer: child}, Config.BlockSize, Config.SwapLayersForCommit, nil, nil)
		ctx := cmd.Context()

		for {
			frame, err := engine.LayerDiff(ctx, demoLayerName, Config.BlockSize)
			if err != nil {
				return fmt.Errorf("diffing: %w", err)
			}
			changes := diff.DecodePackedChanges(frame)
			if len(changes) == 0 {
				return nil
			}
			for _, c := range changes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Type, c.Path)
			}
		}
	},
}
