// Package chunker splits cleaned manual text into bounded, overlapping
// chunks tagged with source metadata.
package chunker

import (
	"sort"
	"strconv"
	"strings"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

// defaultSeparators are tried in order: paragraph break, line break,
// word break, then a hard character split.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Chunker splits text recursively by separators so that no chunk
// exceeds Size runes and consecutive chunks share up to Overlap runes.
type Chunker struct {
	size      int
	overlap   int
	minLength int
}

// New creates a Chunker. Non-positive size falls back to 950, a
// negative or oversized overlap to 150, non-positive minLength to 40.
func New(size, overlap, minLength int) *Chunker {
	if size <= 0 {
		size = 950
	}
	if overlap < 0 || overlap >= size {
		overlap = 150
		if overlap >= size {
			overlap = size / 4
		}
	}
	if minLength <= 0 {
		minLength = 40
	}
	return &Chunker{size: size, overlap: overlap, minLength: minLength}
}

// SplitText splits text into segments of at most the configured size.
// Splitting is deterministic: the same text and parameters always
// produce the same segments.
func (c *Chunker) SplitText(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	parts := c.split(text, defaultSeparators)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Chunker) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var deeper []string
	for i, s := range seps {
		if s == "" {
			sep = ""
			break
		}
		if strings.Contains(text, s) {
			sep = s
			deeper = seps[i+1:]
			break
		}
	}

	var splits []string
	if sep == "" {
		return c.hardSplit(text)
	}
	splits = strings.Split(text, sep)

	var final []string
	var good []string
	for _, s := range splits {
		if s == "" {
			continue
		}
		if runeLen(s) < c.size {
			good = append(good, s)
			continue
		}
		if len(good) > 0 {
			final = append(final, c.merge(good, sep)...)
			good = nil
		}
		final = append(final, c.split(s, deeper)...)
	}
	if len(good) > 0 {
		final = append(final, c.merge(good, sep)...)
	}
	return final
}

// merge greedily joins small splits into chunks up to the size limit,
// carrying Overlap runes of trailing splits into the next chunk.
func (c *Chunker) merge(splits []string, sep string) []string {
	sepLen := runeLen(sep)
	var docs []string
	var current []string
	total := 0
	for _, s := range splits {
		l := runeLen(s)
		if len(current) > 0 && total+l+sepLen > c.size {
			docs = append(docs, strings.Join(current, sep))
			for len(current) > 0 && (total > c.overlap || total+l+sepLen > c.size) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, s)
		total += l
	}
	if len(current) > 0 {
		docs = append(docs, strings.Join(current, sep))
	}
	return docs
}

// hardSplit windows raw runes when no separator applies.
func (c *Chunker) hardSplit(text string) []string {
	runes := []rune(text)
	step := c.size - c.overlap
	if step <= 0 {
		step = c.size
	}
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + c.size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// MergePages joins the non-empty cleaned pages into one text block for
// splitting.
func MergePages(pages []domain.Page) string {
	var parts []string
	for _, pg := range pages {
		if t := strings.TrimSpace(pg.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

// ChunkPages runs the full chunking pipeline: merge pages, split,
// estimate each chunk's source page, attach the covering section's
// chapter and heading, and drop fragments below the minimum length.
func (c *Chunker) ChunkPages(pages []domain.Page, sections []domain.Section) []domain.Chunk {
	text := MergePages(pages)
	parts := c.SplitText(text)

	sorted := make([]domain.Section, len(sections))
	copy(sorted, sections)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PageStart < sorted[j].PageStart })

	chunks := make([]domain.Chunk, 0, len(parts))
	for i, part := range parts {
		if runeLen(part) < c.minLength {
			continue
		}
		page := estimatePage(part, pages)
		sec := sectionForPage(sorted, page)
		idx := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:      "chunk-" + strconv.Itoa(i+1),
			Text:    part,
			Chapter: sec.Chapter,
			Heading: sec.Heading,
			Page:    page,
			Index:   idx,
		})
	}
	return chunks
}

// estimatePage locates a chunk's source page by searching the page
// texts for the chunk's leading characters. Falls back to page 1.
func estimatePage(chunk string, pages []domain.Page) int {
	probe := strings.ToLower(strings.TrimSpace(firstRunes(chunk, 20)))
	if probe == "" {
		return 1
	}
	for _, p := range pages {
		if strings.Contains(strings.ToLower(p.Text), probe) {
			return p.Number
		}
	}
	return 1
}

// sectionForPage returns the last section starting at or before page,
// preferring one whose span covers it.
func sectionForPage(sorted []domain.Section, page int) domain.Section {
	var best domain.Section
	for _, sec := range sorted {
		if sec.PageStart > page {
			break
		}
		if best.Heading == "" || sec.PageEnd >= page || sec.PageStart >= best.PageStart {
			best = sec
		}
	}
	return best
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

func runeLen(s string) int { return len([]rune(s)) }
