package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

func repeatSentences(sentence string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = sentence
	}
	return strings.Join(parts, " ")
}

func TestSplitTextRespectsSizeBound(t *testing.T) {
	c := New(120, 30, 1)
	text := repeatSentences("The charge port opens when you press the button on the connector.", 40)
	parts := c.SplitText(text)
	require.NotEmpty(t, parts)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 120, "chunk exceeds configured size: %q", p)
	}
}

func TestSplitTextIdempotent(t *testing.T) {
	c := New(100, 20, 1)
	text := repeatSentences("Always check the battery level before a long trip.", 25)
	first := c.SplitText(text)
	second := c.SplitText(text)
	assert.Equal(t, first, second)
}

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	c := New(950, 150, 1)
	text := "A single short section."
	parts := c.SplitText(text)
	require.Len(t, parts, 1)
	assert.Equal(t, text, parts[0])
}

func TestSplitTextConsecutiveChunksOverlap(t *testing.T) {
	c := New(100, 40, 1)
	// single-word tokens so overlap carries whole words across chunks
	text := repeatSentences("battery", 60)
	parts := c.SplitText(text)
	require.Greater(t, len(parts), 1)
	for i := 1; i < len(parts); i++ {
		prevTail := parts[i-1][len(parts[i-1])-20:]
		assert.True(t, strings.Contains(parts[i], prevTail[:7]),
			"chunk %d does not share content with its predecessor", i)
	}
}

func TestSplitTextHardSplitLongWord(t *testing.T) {
	c := New(50, 10, 1)
	text := strings.Repeat("x", 200)
	parts := c.SplitText(text)
	require.NotEmpty(t, parts)
	for _, p := range parts {
		assert.LessOrEqual(t, len([]rune(p)), 50)
	}
	// windows step by size-overlap, so every character is covered
	assert.Equal(t, 50, len(parts[0]))
}

func TestChunkPagesMetadata(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: "Seat belts must be worn at all times while the vehicle is moving on any road."},
		{Number: 3, Text: "Plug the mobile connector into the charge port until the latch engages fully."},
	}
	sections := []domain.Section{
		{Chapter: "Safety", Heading: "Seat Belts", PageStart: 1, PageEnd: 2},
		{Chapter: "Charging", Heading: "Mobile Connector", PageStart: 3, PageEnd: 5},
	}
	c := New(100, 20, 10)
	chunks := c.ChunkPages(pages, sections)
	require.Len(t, chunks, 2)

	pageNumbers := map[int]bool{1: true, 3: true}
	for _, ch := range chunks {
		assert.True(t, pageNumbers[ch.Page], "chunk page %d does not exist in source document", ch.Page)
		switch ch.Page {
		case 1:
			assert.Equal(t, "Safety", ch.Chapter)
			assert.Equal(t, "Seat Belts", ch.Heading)
		case 3:
			assert.Equal(t, "Charging", ch.Chapter)
			assert.Equal(t, "Mobile Connector", ch.Heading)
		}
	}
}

func TestChunkPagesDropsShortFragments(t *testing.T) {
	pages := []domain.Page{{Number: 1, Text: "tiny"}}
	c := New(950, 150, 40)
	chunks := c.ChunkPages(pages, nil)
	assert.Empty(t, chunks)
}

func TestChunkPagesSequentialIndexesAndIDs(t *testing.T) {
	pages := []domain.Page{
		{Number: 1, Text: repeatSentences("The high voltage battery should be kept above twenty percent charge.", 30)},
	}
	c := New(200, 40, 10)
	chunks := c.ChunkPages(pages, nil)
	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.NotEmpty(t, ch.ID)
	}
}
