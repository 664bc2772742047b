package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 🧪 TestDefaultFileFormatter tests the default file formatter implementation
func TestDefaultFileFormatter(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		state       FileState
		chunk       int
		chunks      int
		want        string
		description string
	}{
		{
			name:        "written_file",
			path:        "src/a.f",
			state:       StateWritten,
			chunks:      3,
			want:        "✨ Wrote src/a.f (3 chunks)",
			description: "should show chunk total for written files",
		},
		{
			name:        "failed_mid_file",
			path:        "src/a.f",
			state:       StateFailed,
			chunk:       1,
			chunks:      3,
			want:        "❌ Failed src/a.f at chunk 2/3",
			description: "should report the failing chunk one based",
		},
		{
			name:        "failed_before_generation",
			path:        "src/a.f",
			state:       StateFailed,
			want:        "❌ Failed src/a.f",
			description: "should omit chunk position when nothing was generated",
		},
		{
			name:        "skipped_file",
			path:        "b.f90",
			state:       StateSkipped,
			want:        "👍 Skipped b.f90",
			description: "should show skip symbol for conflicts",
		},
		{
			name:        "cancelled_file",
			path:        "b.f90",
			state:       StateCancelled,
			want:        "🛑 Cancelled b.f90",
			description: "should show stop symbol for cancelled files",
		},
		{
			name:        "empty_path",
			path:        "",
			state:       StateReading,
			want:        "📖 Reading ",
			description: "should handle empty path gracefully",
		},
	}

	formatter := NewDefaultFileFormatter()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.FormatFileOperation(tt.path, tt.state, tt.chunk, tt.chunks)
			assert.Equal(t, tt.want, got, tt.description)
		})
	}
}

// 🧪 TestProgressFormatting tests progress message formatting
func TestProgressFormatting(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{name: "zero_progress", current: 0, total: 10, expected: "⏳ Progress: 0/10 (0%)"},
		{name: "half_progress", current: 5, total: 10, expected: "⏳ Progress: 5/10 (50%)"},
		{name: "complete", current: 10, total: 10, expected: "✅ Progress: 10/10 (100%)"},
		{name: "zero_total", current: 0, total: 0, expected: "✅ Progress: 0/0 (0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := NewDefaultFileFormatter()
			assert.Equal(t, tt.expected, formatter.FormatProgress(tt.current, tt.total))
		})
	}
}

// 🧪 TestErrorFormatting tests error message formatting
func TestErrorFormatting(t *testing.T) {
	formatter := NewDefaultFileFormatter()
	assert.Equal(t, "❌ Error: assert.AnError general error for testing", formatter.FormatError(assert.AnError))
	assert.Equal(t, "", formatter.FormatError(nil))
	assert.Equal(t, "🧩 a.f chunk 2/3", formatter.FormatChunk("a.f", 1, 3))
}
