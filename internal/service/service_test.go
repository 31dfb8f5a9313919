package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/chunker"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/embedding/tfidf"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/llm"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/vectorstore/memory"
)

type fakeGenerator struct {
	answer  string
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.answer, nil
}

type errEmbedder struct{}

func (errEmbedder) Name() string                 { return "err" }
func (errEmbedder) Prepare(_ []string) error     { return nil }
func (errEmbedder) Dimension() int               { return 0 }
func (errEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, errors.New("embedder offline")
}

// manualPages is a small stand-in manual: a safety span on pages 1-2
// and a charging span on pages 3-5, each page two lines deep with a
// title-case heading on top.
func manualPages() []domain.Page {
	return []domain.Page{
		{Number: 1, Text: "Seatbelt Safety\nAlways wear your seatbelt before the vehicle moves. Safety checks protect every occupant, and the airbag system depends on correct belt position for full safety protection."},
		{Number: 2, Text: "Seatbelt Safety\nChild safety seats must be installed on the rear bench. Inspect the anchor points often, keep the buckle free of debris, and replace any belt that shows cuts or fraying damage."},
		{Number: 3, Text: "Charging Instructions\nPlug the cable into the charge port until the latch clicks. The charge screen shows the current rate while charging the car overnight, and the port glows green when the session completes."},
		{Number: 4, Text: "Charging Instructions\nSupercharger etiquette asks you to move the car once charging completes. Idle fees apply at busy stations, so unplug the cable promptly after a charge finishes."},
		{Number: 5, Text: "Charging Instructions\nCold weather slows the charge rate until the battery warms up. Precondition the battery from the app before fast charging, and keep the charge limit near eighty percent for daily use."},
	}
}

func newTestService(t *testing.T, gen *fakeGenerator, opts Options) *RAGService {
	t.Helper()
	svc := New(chunker.New(300, 40, 20), tfidf.NewEmbedder(), memory.NewStorage(), gen, nil, opts)
	_, err := svc.IngestPages(context.Background(), manualPages())
	require.NoError(t, err)
	return svc
}

func TestIngestPagesReport(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	svc := New(chunker.New(300, 40, 20), tfidf.NewEmbedder(), memory.NewStorage(), gen, nil, Options{})

	report, err := svc.IngestPages(context.Background(), manualPages())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Pages)
	assert.Equal(t, 5, report.Chunks)
	assert.Equal(t, 2, report.Sections)
}

func TestAnswerChargingQueryReturnsOnlyChargingChunks(t *testing.T) {
	gen := &fakeGenerator{answer: "Plug the cable into the charge port."}
	svc := newTestService(t, gen, Options{})

	ans, err := svc.Answer(context.Background(), AnswerRequest{Query: "How do I charge the car?", TopK: 2})
	require.NoError(t, err)
	require.Len(t, ans.Results, 2)
	for _, r := range ans.Results {
		assert.Equal(t, "Charging", r.Chunk.Chapter)
	}
	assert.False(t, ans.NoAnswer)
	assert.Equal(t, gen.answer, ans.Text)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "How do I charge the car?")
	for _, r := range ans.Results {
		assert.Contains(t, gen.prompts[0], r.Chunk.Text)
	}
}

func TestAnswerChapterAutoDetect(t *testing.T) {
	gen := &fakeGenerator{answer: "The screen shows the current rate."}
	svc := newTestService(t, gen, Options{})

	ans, err := svc.Answer(context.Background(), AnswerRequest{Query: "What does the charging screen show?"})
	require.NoError(t, err)
	assert.Equal(t, "Charging", ans.Chapter)
	for _, r := range ans.Results {
		assert.Equal(t, "Charging", r.Chunk.Chapter)
	}
}

func TestAnswerExplicitChapterFilter(t *testing.T) {
	gen := &fakeGenerator{answer: "Use the anchor points."}
	svc := newTestService(t, gen, Options{})

	ans, err := svc.Answer(context.Background(), AnswerRequest{Query: "Where do child seats attach?", Chapter: "Safety"})
	require.NoError(t, err)
	assert.Equal(t, "Safety", ans.Chapter)
	for _, r := range ans.Results {
		assert.Equal(t, "Safety", r.Chunk.Chapter)
	}
}

func TestAnswerExactPhraseRanksFirst(t *testing.T) {
	gen := &fakeGenerator{answer: "Move the car once charging completes."}
	svc := newTestService(t, gen, Options{})

	ans, err := svc.Answer(context.Background(), AnswerRequest{Query: "supercharger etiquette idle fees"})
	require.NoError(t, err)
	require.NotEmpty(t, ans.Results)
	assert.Contains(t, ans.Results[0].Chunk.Text, "Supercharger etiquette")
}

func TestAnswerWeakContextFallsBack(t *testing.T) {
	gen := &fakeGenerator{answer: "should never be used"}
	svc := newTestService(t, gen, Options{MinContextChars: 100000})

	ans, err := svc.Answer(context.Background(), AnswerRequest{Query: "How do I charge the car?"})
	require.NoError(t, err)
	assert.True(t, ans.NoAnswer)
	assert.Equal(t, llm.FallbackAnswer, ans.Text)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, 1, svc.History().Len())
}

func TestAnswerEmptyQuery(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	svc := newTestService(t, gen, Options{})

	_, err := svc.Answer(context.Background(), AnswerRequest{Query: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRetrieval))
}

func TestAnswerEmbedFailureIsRetrievalError(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	svc := New(chunker.New(300, 40, 20), errEmbedder{}, memory.NewStorage(), gen, nil, Options{})

	_, err := svc.Answer(context.Background(), AnswerRequest{Query: "How do I charge the car?"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRetrieval))
}

func TestAnswerThreadsHistoryIntoPrompt(t *testing.T) {
	gen := &fakeGenerator{answer: "Plug in the cable."}
	svc := newTestService(t, gen, Options{})

	_, err := svc.Answer(context.Background(), AnswerRequest{Query: "How do I charge the car?"})
	require.NoError(t, err)
	_, err = svc.Answer(context.Background(), AnswerRequest{Query: "And what about supercharger fees?"})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "[User] How do I charge the car?")
	assert.Contains(t, gen.prompts[1], "[AI] Plug in the cable.")
}

func TestIngestPagesNoText(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	svc := New(chunker.New(300, 40, 20), tfidf.NewEmbedder(), memory.NewStorage(), gen, nil, Options{})

	_, err := svc.IngestPages(context.Background(), []domain.Page{{Number: 1, Text: "   "}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIngestion))
}

func TestDetectChapterFromQuery(t *testing.T) {
	assert.Equal(t, "Charging", DetectChapterFromQuery("show me the charging limits"))
	assert.Equal(t, "Safety", DetectChapterFromQuery("child safety seats"))
	assert.Equal(t, "", DetectChapterFromQuery("how fast is it"))
}
