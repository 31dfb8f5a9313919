// Package service wires parsing, cleaning, chunking, embedding,
// storage and generation into the two operations the assistant
// exposes: Ingest and Answer.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/chunker"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/cleaner"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/llm"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/parser"
)

// Options tune query-time behavior.
type Options struct {
	TopK            int
	MinContextChars int
	MaxHistoryTurns int
	DigestSentences int
}

// RAGService is the pipeline orchestrator. All calls are synchronous;
// ingestion and querying are separate, non-overlapping phases.
type RAGService struct {
	chunker    *chunker.Chunker
	embedder   domain.Embedder
	store      domain.VectorStore
	generator  domain.Generator
	summarizer domain.Summarizer
	opts       Options
	history    *History
}

// New constructs the orchestrator around explicitly passed-in
// components; nothing global is shared.
func New(ch *chunker.Chunker, emb domain.Embedder, store domain.VectorStore, gen domain.Generator, sum domain.Summarizer, opts Options) *RAGService {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.MinContextChars <= 0 {
		opts.MinContextChars = 120
	}
	if opts.DigestSentences <= 0 {
		opts.DigestSentences = 5
	}
	return &RAGService{
		chunker:    ch,
		embedder:   emb,
		store:      store,
		generator:  gen,
		summarizer: sum,
		opts:       opts,
		history:    NewHistory(opts.MaxHistoryTurns),
	}
}

// History exposes the session conversation memory.
func (s *RAGService) History() *History { return s.history }

// IngestReport summarizes a completed ingestion run.
type IngestReport struct {
	RunID    string
	PDFPath  string
	Pages    int
	Sections int
	Chunks   int
	Digest   string
	Elapsed  time.Duration
}

// Ingest parses the manual at pdfPath and feeds its pages through
// IngestPages.
func (s *RAGService) Ingest(ctx context.Context, pdfPath string) (IngestReport, error) {
	pages, err := parser.ReadPages(pdfPath)
	if err != nil {
		return IngestReport{PDFPath: pdfPath}, err
	}
	report, err := s.IngestPages(ctx, pages)
	report.PDFPath = pdfPath
	return report, err
}

// IngestPages cleans, chunks, embeds and stores the given raw pages.
// Every chunk is embedded before anything is written, so an embedding
// failure aborts the run without touching the collection.
func (s *RAGService) IngestPages(ctx context.Context, pages []domain.Page) (IngestReport, error) {
	start := time.Now()
	report := IngestReport{RunID: uuid.NewString(), Pages: len(pages)}
	log.Printf("ingest %s: %d pages", report.RunID, len(pages))

	cleaned := make([]domain.Page, len(pages))
	for i, pg := range pages {
		cleaned[i] = domain.Page{Number: pg.Number, Text: cleaner.CleanPage(pg.Text)}
	}

	sections := parser.ExtractSections(cleaned)
	report.Sections = len(sections)

	chunks := s.chunker.ChunkPages(cleaned, sections)
	if len(chunks) == 0 {
		return report, fmt.Errorf("%w: no chunks produced", domain.ErrIngestion)
	}
	report.Chunks = len(chunks)
	log.Printf("ingest %s: %d sections, %d chunks", report.RunID, len(sections), len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if err := s.embedder.Prepare(texts); err != nil {
		return report, fmt.Errorf("%w: prepare embedder: %v", domain.ErrIngestion, err)
	}

	vectors := make([][]float64, len(chunks))
	for i, c := range chunks {
		vec, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return report, fmt.Errorf("%w: embed %s: %v", domain.ErrIngestion, c.ID, err)
		}
		vectors[i] = vec
	}

	if err := s.store.Clear(ctx); err != nil {
		return report, fmt.Errorf("%w: clear collection: %v", domain.ErrIngestion, err)
	}
	if err := s.store.Init(len(vectors[0])); err != nil {
		return report, fmt.Errorf("%w: init store: %v", domain.ErrIngestion, err)
	}
	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return report, fmt.Errorf("%w: upsert chunks: %v", domain.ErrIngestion, err)
	}

	if s.summarizer != nil {
		digest, err := s.summarizer.Summarize(chunker.MergePages(cleaned), s.opts.DigestSentences)
		if err != nil {
			log.Printf("ingest %s: digest failed: %v", report.RunID, err)
		} else {
			report.Digest = digest
		}
	}

	report.Elapsed = time.Since(start)
	log.Printf("ingest %s: complete in %s", report.RunID, report.Elapsed)
	return report, nil
}

// AnswerRequest is a single user query with optional metadata filters.
// An empty Chapter enables keyword auto-detection.
type AnswerRequest struct {
	Query   string
	Chapter string
	Heading string
	TopK    int
}

// Answer is the orchestrator's result for one query.
type Answer struct {
	Text              string
	NoAnswer          bool
	Results           []domain.SearchResult
	Chapter           string
	RetrievalLatency  time.Duration
	GenerationLatency time.Duration
}

// TotalLatency is the combined retrieval and generation time.
func (a Answer) TotalLatency() time.Duration {
	return a.RetrievalLatency + a.GenerationLatency
}

// Answer runs retrieval, prompt construction and generation for one
// query and appends the exchange to the session history. A valid empty
// retrieval short-circuits to the fallback answer; transport failures
// surface as errors.
func (s *RAGService) Answer(ctx context.Context, req AnswerRequest) (Answer, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Answer{}, fmt.Errorf("%w: empty query", domain.ErrRetrieval)
	}
	chapter := req.Chapter
	if chapter == "" {
		chapter = DetectChapterFromQuery(query)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.opts.TopK
	}

	out := Answer{Chapter: chapter}

	retStart := time.Now()
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return out, fmt.Errorf("%w: embed query: %v", domain.ErrRetrieval, err)
	}
	results, err := s.store.Search(ctx, vec, topK, domain.Filter{Chapter: chapter, Heading: req.Heading})
	if err != nil {
		return out, fmt.Errorf("%w: search: %v", domain.ErrRetrieval, err)
	}
	out.RetrievalLatency = time.Since(retStart)
	out.Results = results

	// Weak matches read like noise to the model; treat them as no
	// context at all.
	total := 0
	for _, r := range results {
		total += len(r.Chunk.Text)
	}
	if len(results) == 0 || total < s.opts.MinContextChars {
		out.NoAnswer = true
		out.Text = llm.FallbackAnswer
		s.history.Append(query, out.Text)
		return out, nil
	}

	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	prompt := llm.BuildPrompt(query, chunks, s.history.Format())

	genStart := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return out, err
	}
	out.GenerationLatency = time.Since(genStart)
	out.Text = text

	s.history.Append(query, text)
	return out, nil
}

// queryChapters are the chapters worth auto-detecting from query
// wording. Overview is excluded: it matches too loosely.
var queryChapters = []string{
	"Charging", "Safety", "Autopilot", "Driving", "Interior", "Exterior",
	"Maintenance", "Controls", "Specifications", "Warning",
}

// DetectChapterFromQuery returns the chapter filter implied by the
// query text, or empty when none applies.
func DetectChapterFromQuery(query string) string {
	q := strings.ToLower(query)
	for _, ch := range queryChapters {
		if strings.Contains(q, strings.ToLower(ch)) {
			return ch
		}
	}
	return ""
}
