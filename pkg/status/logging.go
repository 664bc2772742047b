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
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	destWidth   = 35 // Width for destination
	statusWidth = 12 // Width for state text
)

// 🎯 FormatFileLine formats one mapping entry and its state for a table display
func FormatFileLine(path, dest string, state FileState) string {
	var prefix string
	switch state {
	case StateWritten:
		prefix = color.GreenString("✓")
	case StateGenerating, StateReading:
		prefix = color.YellowString("⟳")
	case StateFailed:
		prefix = color.RedString("✗")
	case StateCancelled:
		prefix = color.MagentaString("■")
	case StateSkipped:
		prefix = color.CyanString("=")
	default:
		prefix = color.HiBlackString("-")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, path)
	destPart := fmt.Sprintf("%-*s", destWidth, dest)
	statusPart := fmt.Sprintf("%-*s", statusWidth, state)

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		namePart,
		destPart,
		statusPart,
	)
}
