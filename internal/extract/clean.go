package extract

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

const (
	// headerFooterLines is how many leading/trailing non-blank lines of
	// each page are treated as header/footer candidates.
	headerFooterLines = 4

	// headerFooterFrequency is the fraction of pages a candidate line must
	// recur in to count as a running header or footer.
	headerFooterFrequency = 0.6

	// tocMatchThreshold is the number of dotted-leader entries that marks
	// a page as a table of contents.
	tocMatchThreshold = 5
)

var (
	// tocEntry matches a dotted leader followed by a page number,
	// e.g. "Chapter 1.......... 3".
	tocEntry = regexp.MustCompile(`\.{5,}\s*\d+`)

	// pageNumberPrefix matches a page number glued to the first word of a
	// line, e.g. "12Chapter" -> "Chapter".
	pageNumberPrefix = regexp.MustCompile(`^\s*\d+([A-ZÀ-Ú])`)

	// bareNumber matches a line that is only a page number.
	bareNumber = regexp.MustCompile(`^\s*\d+\s*$`)
)

// LineSet is a set of exact line matches.
type LineSet map[string]struct{}

// Contains reports whether the trimmed line is in the set.
func (s LineSet) Contains(line string) bool {
	_, ok := s[line]
	return ok
}

// IdentifyHeadersFooters finds lines that recur at the top or bottom of
// most pages. Documents with fewer than 3 pages are left alone: there is
// not enough repetition to tell a header from content. A line qualifying as
// both header and footer is excluded from both sets.
func IdentifyHeadersFooters(pages []driven.Page) (headers, footers LineSet) {
	headers = make(LineSet)
	footers = make(LineSet)
	if len(pages) < 3 {
		return headers, footers
	}

	headerCounts := make(map[string]int)
	footerCounts := make(map[string]int)
	for _, page := range pages {
		lines := nonBlankLines(page.Text)
		if len(lines) == 0 {
			continue
		}

		top := lines
		if len(top) > headerFooterLines {
			top = top[:headerFooterLines]
		}
		bottom := lines
		if len(bottom) > headerFooterLines {
			bottom = bottom[len(bottom)-headerFooterLines:]
		}

		for _, line := range top {
			headerCounts[line]++
		}
		for _, line := range bottom {
			footerCounts[line]++
		}
	}

	minOccurrences := int(float64(len(pages)) * headerFooterFrequency)
	for line, count := range headerCounts {
		if count >= minOccurrences {
			headers[line] = struct{}{}
		}
	}
	for line, count := range footerCounts {
		if count >= minOccurrences {
			footers[line] = struct{}{}
		}
	}

	// A line recurring in both positions is ambiguous; drop it from both.
	for line := range headers {
		if footers.Contains(line) {
			delete(headers, line)
			delete(footers, line)
		}
	}
	return headers, footers
}

// CleanPage strips detected header/footer lines, page-number prefixes glued
// to the first word, and standalone page-number lines.
func CleanPage(text string, headers, footers LineSet) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if headers.Contains(stripped) || footers.Contains(stripped) {
			continue
		}
		stripped = pageNumberPrefix.ReplaceAllString(stripped, "$1")
		if bareNumber.MatchString(stripped) {
			continue
		}
		cleaned = append(cleaned, stripped)
	}
	return strings.Join(cleaned, "\n")
}

// IsTableOfContents reports whether a page looks like a table of contents.
// TOC pages are skipped entirely during chunking; their dotted leaders and
// page numbers only pollute the index.
func IsTableOfContents(text string) bool {
	return len(tocEntry.FindAllString(text, -1)) >= tocMatchThreshold
}

// nonBlankLines returns the trimmed non-empty lines of a page.
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
