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

// Package resume drops mapping entries whose destination already exists, so
// an interrupted run can be restarted without redoing finished files.
package resume

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/translaterc/pkg/mapping"
)

// maxConcurrentChecks bounds parallel stat calls
const maxConcurrentChecks = 16

// 🔍 Checker reports whether a destination exists
type Checker interface {
	FileExists(ctx context.Context, path string) (bool, error)
}

// 📋 Result splits a mapping into work still to do and work already done
type Result struct {
	Pending *mapping.FileMapping
	Done    []mapping.FileEntry
}

// ⏭️ FilterPending keeps the entries whose destination does not exist yet.
// Any existing destination, even an empty one, counts as done. Order is kept.
func FilterPending(ctx context.Context, m *mapping.FileMapping, checker Checker) (*Result, error) {
	entries := m.Entries()
	exists := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, e := range entries {
		g.Go(func() error {
			ok, err := checker.FileExists(gctx, e.Destination)
			if err != nil {
				return errors.Errorf("checking %s: %w", e.Destination, err)
			}
			exists[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	pending := make([]mapping.FileEntry, 0, len(entries))
	for i, e := range entries {
		if exists[i] {
			res.Done = append(res.Done, e)
			continue
		}
		pending = append(pending, e)
	}
	res.Pending = mapping.New(m.SourceRoot, m.DestinationRoot, pending)

	zerolog.Ctx(ctx).Debug().
		Int("total", len(entries)).
		Int("pending", len(pending)).
		Int("done", len(res.Done)).
		Msg("resume filter applied")

	return res, nil
}
