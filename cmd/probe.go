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
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <child-dir>",
	Short: "Report whether swap-layers-for-commit is enabled",
	Long: `probe issues the engine's "." mode-0 request (spec §6), which never
touches <child-dir> itself — it only exists so probe takes the same
shape as diff and can be pointed at a real mount's layer root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := diff.NewEngine(mapResolver{}, Config.BlockSize, Config.SwapLayersForCommit, nil, nil)
		buf, err := engine.LayerDiff(cmd.Context(), ".", 8)
		if err != nil {
			return fmt.Errorf("probing: %w", err)
		}
		enabled := false
		for _, b := range buf {
			if b != 0 {
				enabled = true
				break
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "swap-layers-for-commit: %t\n", enabled)
		return nil
	},
}
