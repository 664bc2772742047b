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

package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TRANSLATERC"

// ⚙️ Settings are per-invocation overrides layered over the config file.
// Zero values leave the config untouched.
type Settings struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	APIKeyEnv     string        `mapstructure:"api_key_env"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheSize     int           `mapstructure:"cache_size"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	MaxNewTokens  int           `mapstructure:"max_new_tokens"`
	Dirs          []string      `mapstructure:"dirs"`
	TranscriptDir string        `mapstructure:"transcript_dir"`
	FailOnError   bool          `mapstructure:"fail_on_error"`
	DryRun        bool          `mapstructure:"dry_run"`
}

// settingFlags maps setting keys to flag names
var settingFlags = map[string]string{
	"provider":       "provider",
	"model":          "model",
	"base_url":       "base-url",
	"api_key_env":    "api-key-env",
	"timeout":        "timeout",
	"cache_size":     "cache-size",
	"chunk_size":     "chunk-size",
	"max_new_tokens": "max-new-tokens",
	"dirs":           "dirs",
	"transcript_dir": "transcript-dir",
	"fail_on_error":  "fail-on-error",
	"dry_run":        "dry-run",
}

// 🚩 RegisterFlags adds the override flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("provider", "", "generation backend (openai, gemini, echo)")
	fs.String("model", "", "model name")
	fs.String("base-url", "", "backend base URL")
	fs.String("api-key-env", "", "environment variable holding the API key")
	fs.Duration("timeout", 0, "HTTP timeout for backend calls")
	fs.Int("cache-size", 0, "number of responses to cache, 0 disables")
	fs.Int("chunk-size", 0, "lines per request")
	fs.Int("max-new-tokens", 0, "maximum generated tokens per request")
	fs.StringSlice("dirs", nil, "only translate files under these directories (* for all)")
	fs.String("transcript-dir", "", "write one JSON chat transcript per file here")
	fs.Bool("fail-on-error", false, "exit non-zero when any file fails")
	fs.Bool("dry-run", false, "print the plan without calling the backend")
}

// 🎯 LoadSettings reads overrides from TRANSLATERC_* environment variables and,
// with higher priority, from flags registered with RegisterFlags. flags may be nil.
func LoadSettings(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, flag := range settingFlags {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.Errorf("binding %s: %w", key, err)
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Errorf("binding --%s: %w", flag, err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Errorf("decoding settings: %w", err)
	}

	dirs := s.Dirs[:0]
	for _, d := range s.Dirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, d)
		}
	}
	s.Dirs = dirs

	return &s, nil
}

// 🔄 Apply layers s over cfg and validates the result
func (cfg *Config) Apply(s *Settings) error {
	if s == nil {
		return nil
	}
	if cfg.Backend == nil {
		cfg.Backend = &BackendArgs{}
	}
	if cfg.Output == nil {
		cfg.Output = &OutputArgs{}
	}

	if s.Provider != "" {
		cfg.Backend.Provider = s.Provider
	}
	if s.Model != "" {
		cfg.Backend.Model = s.Model
	}
	if s.BaseURL != "" {
		cfg.Backend.BaseURL = s.BaseURL
	}
	if s.APIKeyEnv != "" {
		cfg.Backend.APIKeyEnv = s.APIKeyEnv
	}
	if s.Timeout > 0 {
		cfg.Backend.Timeout = s.Timeout.String()
	}
	if s.CacheSize > 0 {
		cfg.Backend.CacheSize = s.CacheSize
	}
	if s.MaxNewTokens > 0 {
		cfg.Backend.MaxNewTokens = s.MaxNewTokens
	}
	if s.ChunkSize > 0 {
		cfg.Prompt.ChunkSize = s.ChunkSize
	}
	if len(s.Dirs) > 0 {
		cfg.Source.Dirs = s.Dirs
	}
	if s.TranscriptDir != "" {
		// flags are relative to the working directory, not the config file
		dir, err := filepath.Abs(s.TranscriptDir)
		if err != nil {
			return errors.Errorf("resolving transcript dir: %w", err)
		}
		cfg.Output.TranscriptDir = dir
	}
	if s.FailOnError {
		cfg.FailOnError = true
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating overrides: %w", err)
	}
	return nil
}
