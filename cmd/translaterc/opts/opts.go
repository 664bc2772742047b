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

package opts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/translaterc/pkg/config"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// ConfigFile is the project config; when empty the working directory is searched
	ConfigFile string
	// Debug enables debug logging
	Debug bool
}

// 🎯 Load reads the project config and layers environment and flag overrides
// from flags over it
func (o *RootOpts) Load(ctx context.Context, flags *pflag.FlagSet) (*config.Config, *config.Settings, error) {
	path := o.ConfigFile
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, nil, err
		}
		path = found
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, nil, errors.Errorf("loading config: %w", err)
	}

	settings, err := config.LoadSettings(flags)
	if err != nil {
		return nil, nil, errors.Errorf("loading settings: %w", err)
	}
	if err := cfg.Apply(settings); err != nil {
		return nil, nil, err
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.Location()).Str("summary", cfg.String()).Msg("configuration loaded")
	return cfg, settings, nil
}
