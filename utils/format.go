package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// displayDateLayout is the human-facing date format used in API
// responses, emails and invoice PDFs.
const displayDateLayout = "02 Jan 2006"

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename strips any path components and replaces characters
// that are unsafe in a filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "file"
	}
	return name
}

// EnsureDir creates the directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FormatDate renders a timestamp in the display date format.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDateLayout)
}

// FormatDateRange renders a start/end pair, collapsing same-day ranges.
func FormatDateRange(start, end time.Time) string {
	if start.IsZero() {
		return ""
	}
	if end.IsZero() || start.Equal(end) || start.Format(displayDateLayout) == end.Format(displayDateLayout) {
		return start.Format(displayDateLayout)
	}
	return fmt.Sprintf("%s - %s", start.Format(displayDateLayout), end.Format(displayDateLayout))
}
