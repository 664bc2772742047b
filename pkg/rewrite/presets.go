package rewrite

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// 🎛️ presets are the built-in tables, keyed by name
var presets = map[string]map[Role]map[string]string{
	// fixed-form sources become C++ sources, module files become headers
	"fortran-cpp": {
		RoleSource: {".f": ".cpp"},
		RoleHeader: {".f90": ".hpp"},
	},
	// every Fortran flavour collapses to .cxx; not invertible
	"fortran-cxx": {
		RoleSource: {".f": ".cxx", ".f90": ".cxx", ".F90": ".cxx"},
	},
	"c-cpp": {
		RoleSource: {".c": ".cpp"},
		RoleHeader: {".h": ".hpp"},
	},
}

// documentation and build scripts never hold translatable code
var commonExcludes = []string{"**/README*", "**/*.md", "**/*.txt", "**/*.sh"}

// presetExcludes are skipped in all files mode, after auxiliary globs
var presetExcludes = map[string][]string{
	"fortran-cpp": commonExcludes,
	// generated module files, include fragments and C headers stay behind
	"fortran-cxx": append([]string{"**/*_mod.f90", "**/*.lh", "**/*.h"}, commonExcludes...),
	"c-cpp":       commonExcludes,
}

// PresetExcludes returns the default exclusion globs of a preset, nil when it has none
func PresetExcludes(name string) []string {
	ex, ok := presetExcludes[name]
	if !ok {
		return nil
	}
	out := make([]string, len(ex))
	copy(out, ex)
	return out
}

// Preset returns a copy of the named built-in table
func Preset(name string) (*Table, error) {
	rules, ok := presets[name]
	if !ok {
		return nil, errors.Errorf("unknown rewrite preset %q (known: %v)", name, PresetNames())
	}
	return NewTable(rules)
}

// PresetNames lists the built-in tables
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for k := range presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
