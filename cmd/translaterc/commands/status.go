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
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/cmd/translaterc/opts"
	"github.com/walteh/translaterc/pkg/config"
	"github.com/walteh/translaterc/pkg/log"
	"github.com/walteh/translaterc/pkg/resume"
	"github.com/walteh/translaterc/pkg/status"
)

// NewStatusCmd creates the status command
func NewStatusCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which files are translated and which are pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, _, err := rootOpts.Load(ctx, cmd.Flags())
			if err != nil {
				return err
			}

			m, err := loadMapping(ctx, cfg, planFile)
			if err != nil {
				return err
			}

			res, err := resume.FilterPending(ctx, m, status.New(""))
			if err != nil {
				return errors.Errorf("checking destinations: %w", err)
			}

			logger := log.FromContext(ctx)
			logger.Header(cfg.String())
			out := cmd.OutOrStdout()
			for _, e := range res.Done {
				fmt.Fprintln(out, status.FormatFileLine(e.Rel, e.Destination, status.StateWritten))
			}
			for _, e := range res.Pending.Entries() {
				fmt.Fprintln(out, status.FormatFileLine(e.Rel, e.Destination, status.StatePending))
			}
			logger.LogNewline()
			logger.Infof("%d translated, %d pending", len(res.Done), res.Pending.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "read the mapping from a saved plan")
	config.RegisterFlags(cmd.Flags())
	return cmd
}
