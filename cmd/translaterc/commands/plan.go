// Copyright 2025 walteh LLC
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

package commands

import (
	"bytes"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/cmd/translaterc/opts"
	"github.com/walteh/translaterc/pkg/config"
	"github.com/walteh/translaterc/pkg/log"
	"github.com/walteh/translaterc/pkg/mapping"
)

// NewPlanCmd creates the plan command
func NewPlanCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Write the source to destination mapping as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, _, err := rootOpts.Load(ctx, cmd.Flags())
			if err != nil {
				return err
			}

			m, err := loadMapping(ctx, cfg, "")
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return mapping.WritePlan(cmd.OutOrStdout(), m)
			}

			var buf bytes.Buffer
			if err := mapping.WritePlan(&buf, m); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return errors.Errorf("writing plan: %w", err)
			}
			log.FromContext(ctx).Successf("%d files planned in %s", m.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "plan file (default stdout)")
	config.RegisterFlags(cmd.Flags())
	return cmd
}
