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
	"context"
	"os"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/config"
	"github.com/walteh/translaterc/pkg/generate"
	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/operation"
	"github.com/walteh/translaterc/pkg/status"
)

// loadMapping reads a saved plan when planFile is set, otherwise walks the source tree
func loadMapping(ctx context.Context, cfg *config.Config, planFile string) (*mapping.FileMapping, error) {
	if planFile == "" {
		m, err := cfg.Mapping(ctx)
		if err != nil {
			return nil, errors.Errorf("building mapping: %w", err)
		}
		return m, nil
	}

	f, err := os.Open(planFile)
	if err != nil {
		return nil, errors.Errorf("opening plan: %w", err)
	}
	defer f.Close()

	m, err := mapping.ReadPlan(f)
	if err != nil {
		return nil, err
	}
	if len(cfg.Source.Dirs) > 0 {
		return m.SelectDirs(cfg.Source.Dirs)
	}
	return m, nil
}

// newOrchestrator wires the configured prompt, rewrite and output pieces around client
func newOrchestrator(ctx context.Context, cfg *config.Config, client generate.Client, tracker *status.Tracker) (*operation.Orchestrator, error) {
	builder, err := cfg.Builder(ctx)
	if err != nil {
		return nil, errors.Errorf("creating prompt builder: %w", err)
	}
	hinter, err := cfg.Hinter()
	if err != nil {
		return nil, errors.Errorf("creating hinter: %w", err)
	}
	replacer, err := cfg.Replacer()
	if err != nil {
		return nil, errors.Errorf("creating replacer: %w", err)
	}

	opts := operation.Options{
		Builder:       builder,
		Client:        client,
		Files:         status.New(""),
		Tracker:       tracker,
		Hinter:        hinter,
		Replacer:      replacer,
		ChunkSize:     cfg.Prompt.ChunkSize,
		CarryContext:  cfg.Prompt.CarryContext,
		CallTimeout:   cfg.CallTimeout(),
		TranscriptDir: cfg.TranscriptDir(),
		Model:         cfg.Generation().Model,
	}
	if lf := cfg.LineFilter(); lf != nil {
		opts.LineFilter = lf
	}

	orch, err := operation.New(opts)
	if err != nil {
		return nil, errors.Errorf("creating orchestrator: %w", err)
	}
	return orch, nil
}
