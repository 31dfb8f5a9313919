package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

func testChunks() ([]domain.Chunk, [][]float64) {
	chunks := []domain.Chunk{
		{ID: "chunk-1", Text: "seat belt usage", Chapter: "Safety", Heading: "Seat Belts", Page: 1, Index: 0},
		{ID: "chunk-2", Text: "charge port opening", Chapter: "Charging", Heading: "Charge Port", Page: 3, Index: 1},
		{ID: "chunk-3", Text: "supercharging rates", Chapter: "Charging", Heading: "Supercharging", Page: 4, Index: 2},
	}
	vectors := [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0.6, 0.8},
	}
	return chunks, vectors
}

func newLoaded(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(3))
	chunks, vectors := testChunks()
	require.NoError(t, s.Upsert(context.Background(), chunks, vectors))
	return s
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	assert.Error(t, NewStorage().Init(0))
}

func TestUpsertRejectsDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(3))
	err := s.Upsert(context.Background(), []domain.Chunk{{ID: "chunk-1"}}, [][]float64{{1, 0}})
	assert.Error(t, err)
}

func TestSearchOrdersByScore(t *testing.T) {
	s := newLoaded(t)
	res, err := s.Search(context.Background(), []float64{0, 1, 0}, 3, domain.Filter{})
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "chunk-2", res[0].Chunk.ID)
	assert.GreaterOrEqual(t, res[0].Score, res[1].Score)
	assert.GreaterOrEqual(t, res[1].Score, res[2].Score)
}

func TestSearchTopKBound(t *testing.T) {
	s := newLoaded(t)
	res, err := s.Search(context.Background(), []float64{0, 1, 0}, 2, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, res, 2)
}

func TestSearchChapterFilterIsExclusive(t *testing.T) {
	s := newLoaded(t)
	res, err := s.Search(context.Background(), []float64{1, 0, 0}, 3, domain.Filter{Chapter: "Charging"})
	require.NoError(t, err)
	require.NotEmpty(t, res)
	for _, r := range res {
		assert.Equal(t, "Charging", r.Chunk.Chapter)
	}
}

func TestSearchFilterNoMatchIsEmptyNotError(t *testing.T) {
	s := newLoaded(t)
	res, err := s.Search(context.Background(), []float64{1, 0, 0}, 3, domain.Filter{Chapter: "Autopilot"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestCountAndClear(t *testing.T) {
	s := newLoaded(t)
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.Clear(context.Background()))
	n, err = s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
