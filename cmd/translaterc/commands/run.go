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
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/cmd/translaterc/opts"
	"github.com/walteh/translaterc/pkg/config"
	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/log"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/status"
)

// ErrFilesFailed is returned by run when fail_on_error is set and a file failed
var ErrFilesFailed = errors.Base("files failed")

// NewRunCmd creates the run command
func NewRunCmd(rootOpts *opts.RootOpts) *cobra.Command {
	var planFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate every pending file",
		Long: `Translate every source file whose destination does not exist yet.
Files already translated are left alone, so an interrupted run can be repeated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			cfg, settings, err := rootOpts.Load(ctx, cmd.Flags())
			if err != nil {
				return err
			}

			m, err := loadMapping(ctx, cfg, planFile)
			if err != nil {
				return err
			}

			if settings.DryRun {
				logger.Header("dry run")
				return mapping.WritePlan(cmd.OutOrStdout(), m)
			}

			client, err := generate.New(ctx, cfg.Generation())
			if err != nil {
				return errors.Errorf("creating client: %w", err)
			}

			var reporter status.Reporter
			if cfg.Output != nil && cfg.Output.Progress {
				reporter = status.NewBarReporter(cmd.ErrOrStderr(), "translating")
			}

			orch, err := newOrchestrator(ctx, cfg, client, status.NewTracker(reporter))
			if err != nil {
				return err
			}

			gen := cfg.Generation()
			logger.StartRunOperation(ctx, log.RunOperation{
				SourceRoot:      m.SourceRoot,
				DestinationRoot: m.DestinationRoot,
				Provider:        gen.Provider,
				Model:           gen.Model,
			})

			report, runErr := orch.Run(ctx, m)
			if report != nil {
				for _, o := range report.Outcomes {
					logger.LogFileOperation(ctx, log.FileOperation{
						Path:        o.Entry.Rel,
						Destination: o.Entry.Destination,
						State:       o.State,
						Chunks:      o.Chunks,
						Err:         o.Err,
					})
				}
				logger.EndRunOperation(ctx, log.Summary{
					Written:   report.Written(),
					Failed:    report.Count(status.StateFailed),
					Skipped:   report.Count(status.StateSkipped),
					Cancelled: report.Count(status.StateCancelled),
					Done:      len(report.Done),
				})
			}
			if runErr != nil {
				return runErr
			}

			if cfg.FailOnError && report.Err() != nil {
				return errors.Errorf("%d of %d: %w", len(report.Failures()), len(report.Outcomes), ErrFilesFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan", "", "translate the files listed in a saved plan instead of walking the source tree")
	config.RegisterFlags(cmd.Flags())
	return cmd
}
