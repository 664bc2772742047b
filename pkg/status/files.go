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

package status

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrExists is returned by Create when the destination is already present
var ErrExists = errors.Base("destination exists")

// 💾 FileManager handles every file system operation of a run
type FileManager interface {
	// ReadFile reads a source file
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// FileExists reports whether path exists. Empty files count as existing.
	FileExists(ctx context.Context, path string) (bool, error)

	// Create makes parent directories and opens path for writing. It never
	// truncates: an existing file yields ErrExists.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Remove deletes path. A missing file is not an error.
	Remove(ctx context.Context, path string) error

	// WriteFileAtomic replaces path through a temporary file and rename
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
}

// 🔧 Manager implements FileManager on the local disk. Relative paths are
// resolved against baseDir.
type Manager struct {
	baseDir string
}

// 🏭 New creates a new file manager
func New(baseDir string) *Manager {
	if baseDir != "" {
		baseDir = filepath.Clean(baseDir)
	}
	return &Manager{baseDir: baseDir}
}

// 🔒 getAbsPath returns the absolute path for a given path
func (m *Manager) getAbsPath(path string) string {
	if filepath.IsAbs(path) || m.baseDir == "" {
		return path
	}
	return filepath.Join(m.baseDir, path)
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.getAbsPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

func (m *Manager) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	absPath := m.getAbsPath(path)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, errors.Errorf("creating parent directories: %w", err)
	}

	f, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, errors.Errorf("%s: %w", absPath, ErrExists)
		}
		return nil, errors.Errorf("creating file: %w", err)
	}

	zerolog.Ctx(ctx).Trace().Str("path", absPath).Msg("destination created")
	return f, nil
}

func (m *Manager) Remove(ctx context.Context, path string) error {
	if err := os.Remove(m.getAbsPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("removing file: %w", err)
	}
	return nil
}

func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
