package parser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

// KnownChapters are the chapter names that appear in Tesla owner's
// manuals. They act as strong signals for chapter detection.
var KnownChapters = []string{
	"Overview",
	"Driving",
	"Charging",
	"Autopilot",
	"Safety",
	"Interior",
	"Exterior",
	"Controls",
	"Maintenance",
	"Specifications",
	"Troubleshooting",
	"Emergency",
	"Warning",
}

var (
	// TOC-style "Autopilot Features......105" lines.
	tocHeadingRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]+?)\s*\.{3,}\s*\d+$`)
	titleCaseRe  = regexp.MustCompile(`^([A-Z][a-z]+(\s+[A-Z][a-z]+){1,5})$`)
	alphaOnlyRe  = regexp.MustCompile(`^[A-Za-z ]+$`)
)

// chapterPatterns are whole-word matchers, one per known chapter, in
// KnownChapters order.
var chapterPatterns = compileChapterPatterns()

func compileChapterPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(KnownChapters))
	for i, ch := range KnownChapters {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(ch) + `\b`)
	}
	return out
}

// HeadingCandidates extracts likely section headings from cleaned page
// text. Detection layers, strongest first: TOC-style lines, ALL-CAPS
// lines, Title Case lines, short clean multi-word lines.
func HeadingCandidates(text string) []string {
	set := map[string]struct{}{}
	for _, raw := range strings.Split(text, "\n") {
		ln := strings.TrimSpace(raw)
		if ln == "" {
			continue
		}
		if m := tocHeadingRe.FindStringSubmatch(ln); m != nil {
			set[strings.TrimSpace(m[1])] = struct{}{}
			continue
		}
		if isUpper(ln) && len(ln) >= 3 && len(ln) <= 60 {
			set[strings.TrimSpace(titleCase(ln))] = struct{}{}
			continue
		}
		if titleCaseRe.MatchString(ln) {
			set[ln] = struct{}{}
			continue
		}
		if words := strings.Fields(ln); len(words) >= 2 && len(words) <= 6 && alphaOnlyRe.MatchString(ln) {
			set[ln] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// DetectChapter picks the most likely chapter for a page. A table of
// contents page counts as "Overview"; otherwise the known chapter with
// the highest whole-word frequency wins. Empty string means unknown.
func DetectChapter(text string) string {
	if strings.Contains(text, "...") || tocHeadingRe.MatchString(text) {
		return "Overview"
	}
	best, bestScore := "", 0
	for i, ch := range KnownChapters {
		n := len(chapterPatterns[i].FindAllStringIndex(text, -1))
		if n > bestScore {
			best, bestScore = ch, n
		}
	}
	return best
}

// ExtractSections builds section metadata for a sequence of cleaned
// pages and merges adjacent same-heading sections into page spans.
// Boilerplate headings (copyright and company lines) are filtered out.
func ExtractSections(pages []domain.Page) []domain.Section {
	var sections []domain.Section
	for _, pg := range pages {
		chapter := DetectChapter(pg.Text)
		for _, h := range HeadingCandidates(pg.Text) {
			if strings.Contains(h, "©") || strings.Contains(h, "Inc") || strings.Contains(h, "Tesla") {
				continue
			}
			sections = append(sections, domain.Section{
				Chapter:   chapter,
				Heading:   h,
				PageStart: pg.Number,
				PageEnd:   pg.Number,
			})
		}
	}
	return mergeSectionSpans(sections)
}

// mergeSectionSpans merges contiguous sections with identical headings
// into a single section covering the whole page range.
func mergeSectionSpans(sections []domain.Section) []domain.Section {
	if len(sections) == 0 {
		return nil
	}
	merged := make([]domain.Section, 0, len(sections))
	prev := sections[0]
	for _, sec := range sections[1:] {
		if sec.Heading == prev.Heading {
			prev.PageEnd = sec.PageEnd
			continue
		}
		merged = append(merged, prev)
		prev = sec
	}
	return append(merged, prev)
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter && s == strings.ToUpper(s)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
