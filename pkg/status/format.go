package status

import (
	"fmt"
)

// FileFormatter defines how file states and progress are worded
type FileFormatter interface {
	// FormatFileOperation formats a state change of one file
	FormatFileOperation(path string, state FileState, chunk, chunks int) string

	// FormatChunk formats chunk progress inside one file
	FormatChunk(path string, chunk, chunks int) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatFileOperation formats a state change with emojis
func (f *DefaultFileFormatter) FormatFileOperation(path string, state FileState, chunk, chunks int) string {
	switch state {
	case StatePending:
		return fmt.Sprintf("⏸️  Pending %s", path)
	case StateReading:
		return fmt.Sprintf("📖 Reading %s", path)
	case StateGenerating:
		return fmt.Sprintf("🤖 Generating %s", path)
	case StateWritten:
		return fmt.Sprintf("✨ Wrote %s (%d chunks)", path, chunks)
	case StateFailed:
		if chunks > 0 {
			return fmt.Sprintf("❌ Failed %s at chunk %d/%d", path, chunk+1, chunks)
		}
		return fmt.Sprintf("❌ Failed %s", path)
	case StateSkipped:
		return fmt.Sprintf("👍 Skipped %s", path)
	case StateCancelled:
		return fmt.Sprintf("🛑 Cancelled %s", path)
	default:
		return fmt.Sprintf("❓ %s", path)
	}
}

// FormatChunk formats chunk progress as one based
func (f *DefaultFileFormatter) FormatChunk(path string, chunk, chunks int) string {
	return fmt.Sprintf("🧩 %s chunk %d/%d", path, chunk+1, chunks)
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
