package logging

import "strings"

const (
	// MaxLineLength is the maximum length of a single excerpted line
	// before truncation.
	MaxLineLength = 4096

	// DefaultExcerptLines is the number of trailing lines surfaced in
	// failure log records.
	DefaultExcerptLines = 20
)

// Excerpt returns the last n lines of captured process output, truncating
// over-long lines. Agents can produce megabytes of output; failure log
// records carry only the tail.
func Excerpt(output string, n int) string {
	if output == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	for i, line := range lines {
		if len(line) > MaxLineLength {
			lines[i] = line[:MaxLineLength] + "...(truncated)"
		}
	}

	return strings.Join(lines, "\n")
}
