package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/translaterc/pkg/mapping"
	"github.com/walteh/translaterc/pkg/prompt"
)

// templateFile is the on-disk shape of an instruction template
type templateFile struct {
	Instructions []prompt.Segment `toml:"instructions" yaml:"instructions" json:"instructions"`
}

// decodeFile decodes data into v by the extension of path
func decodeFile(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(data, v)
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(v); err != nil {
			return errors.Errorf("parsing YAML: %w", err)
		}
		return nil
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(v); err != nil {
			return errors.Errorf("parsing JSON: %w", err)
		}
		return nil
	default:
		return errors.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
}

// 📋 LoadManifest reads a TOML, YAML or JSON manifest
func LoadManifest(ctx context.Context, path string) (*mapping.Manifest, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}
	var m mapping.Manifest
	if err := decodeFile(path, data, &m); err != nil {
		return nil, errors.Errorf("decoding manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Errorf("validating manifest %s: %w", path, err)
	}
	return &m, nil
}

// 📜 LoadTemplate reads a TOML, YAML or JSON instruction template
func LoadTemplate(ctx context.Context, path string) (*prompt.Template, error) {
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loading template")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading template: %w", err)
	}
	var f templateFile
	if err := decodeFile(path, data, &f); err != nil {
		return nil, errors.Errorf("decoding template %s: %w", path, err)
	}
	tmpl, err := prompt.NewTemplate(f.Instructions)
	if err != nil {
		return nil, errors.Errorf("template %s: %w", path, err)
	}
	return tmpl, nil
}
