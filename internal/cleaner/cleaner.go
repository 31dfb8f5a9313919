// Package cleaner normalizes raw page text extracted from the manual.
// All functions are pure.
package cleaner

import (
	"regexp"
	"strings"
)

var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^page\s*\d+\s*$`),
	regexp.MustCompile(`^\d+\s*$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+\s*$`),
	regexp.MustCompile(`(?i)^page\s*\|\s*\d+$`),
}

var (
	hyphenBreakRe  = regexp.MustCompile(`(\w)-\n(\w)`)
	crlfRe         = regexp.MustCompile(`\r\n?`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	digitsOnlyRe   = regexp.MustCompile(`^\d+$`)
)

// RemovePageNumbers drops standalone page-number lines and their
// common variants ("page 12", "12", "3/200", "Page | 13").
func RemovePageNumbers(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		l := strings.TrimSpace(line)
		drop := false
		for _, pat := range pageNumberPatterns {
			if pat.MatchString(l) {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// Dehyphenate joins words hyphenated across a line break, e.g.
// "exam-\nple" becomes "example". Only fires when letters surround the
// break.
func Dehyphenate(text string) string {
	return hyphenBreakRe.ReplaceAllString(text, "$1$2")
}

// RemoveHeadersFooters strips a likely running header (short or
// all-caps first line) and a likely footer (page number, copyright or
// company last line). Pages of two lines or fewer pass through.
func RemoveHeadersFooters(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 2 {
		return text
	}
	first := strings.TrimSpace(lines[0])
	if len(strings.Fields(first)) <= 5 &&
		(first == strings.ToUpper(first) || len(first) < 25 || strings.HasPrefix(first, "TESLA")) {
		lines = lines[1:]
	}
	last := strings.ToLower(strings.TrimSpace(lines[len(lines)-1]))
	if strings.HasPrefix(last, "page") ||
		digitsOnlyRe.MatchString(last) ||
		strings.HasPrefix(last, "copyright") ||
		strings.HasPrefix(last, "tesla") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// NormalizeWhitespace converts CRLF to LF, collapses runs of three or
// more newlines to two and strips trailing spaces on every line.
func NormalizeWhitespace(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanPage runs the full cleaning sequence over a single page's raw
// text. Empty input stays empty.
func CleanPage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	t := RemovePageNumbers(text)
	t = Dehyphenate(t)
	t = RemoveHeadersFooters(t)
	return NormalizeWhitespace(t)
}
