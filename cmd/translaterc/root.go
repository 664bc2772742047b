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

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/translaterc/cmd/translaterc/commands"
	"github.com/walteh/translaterc/cmd/translaterc/opts"
	"github.com/walteh/translaterc/pkg/log"
)

// 🌳 newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:           "translaterc",
		Short:         "Translate a source tree file by file with a language model",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd, rootOpts.Debug)
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewPlanCmd(rootOpts),
		commands.NewStatusCmd(rootOpts),
		newVersionCmd(),
	)
	return cmd
}

func addRootFlags(cmd *cobra.Command, rootOpts *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigFile, "config", "c", "", "config file path (default: search for .translaterc.*)")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging attaches a zerolog logger writing to stderr and a console
// logger writing to stdout to the command context
func setupLogging(cmd *cobra.Command, debug bool) (ctx context.Context) {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx = zlog.WithContext(cmd.Context())
	return log.NewContext(ctx, log.New(cmd.OutOrStdout(), zlog))
}
