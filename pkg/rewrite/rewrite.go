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

// Package rewrite holds the closed extension tables that decide the destination
// extension of every mapped file.
package rewrite

import (
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Role classifies a mapped file
type Role int

const (
	RoleSource Role = iota
	RoleHeader
	RoleAuxiliary
)

// String returns a string representation of Role
func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleHeader:
		return "header"
	case RoleAuxiliary:
		return "auxiliary"
	default:
		return "unknown"
	}
}

// ParseRole parses the string form produced by Role.String
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "source":
		return RoleSource, nil
	case "header":
		return RoleHeader, nil
	case "auxiliary":
		return RoleAuxiliary, nil
	}
	return 0, errors.Errorf("unknown role %q", s)
}

// 🧭 Direction selects which side of a table is applied
type Direction string

const (
	DirectionForward       Direction = "forward"
	DirectionInverse       Direction = "inverse"
	DirectionBidirectional Direction = "bidirectional"
)

// ErrUnrecognized is returned by Rewrite when the extension has no rule for the role.
var ErrUnrecognized = errors.Base("extension not recognized")

// 📚 Table maps a source extension to a target extension, per role.
// Tables are immutable once built.
type Table struct {
	rules map[Role]map[string]string
}

// 🏭 NewTable validates and copies the given rules
func NewTable(rules map[Role]map[string]string) (*Table, error) {
	t := &Table{rules: make(map[Role]map[string]string, len(rules))}
	for role, m := range rules {
		if role == RoleAuxiliary {
			if len(m) > 0 {
				return nil, errors.Errorf("auxiliary files are passed through and take no rules")
			}
			continue
		}
		if role != RoleSource && role != RoleHeader {
			return nil, errors.Errorf("invalid role %d", role)
		}
		cp := make(map[string]string, len(m))
		for from, to := range m {
			if err := validateExt(from); err != nil {
				return nil, errors.Errorf("%s rule %q: %w", role, from, err)
			}
			if err := validateExt(to); err != nil {
				return nil, errors.Errorf("%s rule %q -> %q: %w", role, from, to, err)
			}
			cp[from] = to
		}
		t.rules[role] = cp
	}
	return t, nil
}

func validateExt(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return errors.Errorf("extension must start with '.' and be non-empty")
	}
	if strings.ContainsAny(ext[1:], "./\\") {
		return errors.Errorf("extension must be a single suffix")
	}
	return nil
}

// Rules returns a copy of the rules for a role
func (t *Table) Rules(role Role) map[string]string {
	out := make(map[string]string, len(t.rules[role]))
	for k, v := range t.rules[role] {
		out[k] = v
	}
	return out
}

// Recognizes reports whether ext has a rule for role. Auxiliary files are always recognized.
func (t *Table) Recognizes(ext string, role Role) bool {
	if role == RoleAuxiliary {
		return true
	}
	_, ok := t.rules[role][ext]
	return ok
}

// Produces reports whether any rule of any role rewrites to ext
func (t *Table) Produces(ext string) bool {
	for _, m := range t.rules {
		for _, to := range m {
			if to == ext {
				return true
			}
		}
	}
	return false
}

// 🔄 Rewrite returns path with its extension replaced according to role
func (t *Table) Rewrite(path string, role Role) (string, error) {
	if role == RoleAuxiliary {
		return path, nil
	}
	ext := filepath.Ext(path)
	to, ok := t.rules[role][ext]
	if !ok {
		return "", errors.Errorf("%s %q: %w", role, ext, ErrUnrecognized)
	}
	return strings.TrimSuffix(path, ext) + to, nil
}

// 🔁 Inverse swaps each rule. Each role's map must be injective.
func (t *Table) Inverse() (*Table, error) {
	inv := make(map[Role]map[string]string, len(t.rules))
	for role, m := range t.rules {
		r := make(map[string]string, len(m))
		for _, from := range sortedKeys(m) {
			to := m[from]
			if prev, dup := r[to]; dup {
				return nil, errors.Errorf("%s rules %q and %q both produce %q, table has no inverse", role, prev, from, to)
			}
			r[to] = from
		}
		inv[role] = r
	}
	return NewTable(inv)
}

// ↔️ Bidirectional merges the table with its inverse so files on either side are recognized
func (t *Table) Bidirectional() (*Table, error) {
	inv, err := t.Inverse()
	if err != nil {
		return nil, errors.Errorf("building inverse: %w", err)
	}
	merged := make(map[Role]map[string]string, len(t.rules))
	for role, m := range t.rules {
		r := make(map[string]string, 2*len(m))
		for k, v := range m {
			r[k] = v
		}
		for k, v := range inv.rules[role] {
			if existing, ok := r[k]; ok && existing != v {
				return nil, errors.Errorf("%s extension %q maps to both %q and %q", role, k, existing, v)
			}
			r[k] = v
		}
		merged[role] = r
	}
	return NewTable(merged)
}

// Direct returns the table to use for the given direction
func (t *Table) Direct(d Direction) (*Table, error) {
	switch d {
	case "", DirectionForward:
		return t, nil
	case DirectionInverse:
		return t.Inverse()
	case DirectionBidirectional:
		return t.Bidirectional()
	}
	return nil, errors.Errorf("unknown direction %q", d)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
