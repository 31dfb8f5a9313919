// Package web serves the browser front end: a query form with an
// optional chapter filter, the answer, a context preview, latency
// figures and the conversation history.
package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/parser"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
)

//go:embed templates/index.html
var templateFS embed.FS

// AssistantPort is the web-facing subset of the orchestrator.
type AssistantPort interface {
	Answer(ctx context.Context, req service.AnswerRequest) (service.Answer, error)
	History() *service.History
}

// Server renders the single-page query UI. One query at a time per
// session; the handler blocks on the pipeline like the CLI does.
type Server struct {
	assistant AssistantPort
	tmpl      *template.Template
	mux       *http.ServeMux
}

// NewServer builds the HTTP handler around the orchestrator.
func NewServer(assistant AssistantPort) *Server {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/index.html"))
	s := &Server{assistant: assistant, tmpl: tmpl, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/ask", s.handleAsk)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("web: listening on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type contextRow struct {
	Rank    int
	Score   float64
	Page    int
	Chapter string
	Heading string
	Snippet string
}

type pageData struct {
	Chapters    []string
	Query       string
	Chapter     string
	Answer      string
	NoAnswer    bool
	Error       string
	Context     []contextRow
	RetrievalMS int64
	LLMMS       int64
	TotalMS     int64
	History     []service.Turn
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, pageData{
		Chapters: parser.KnownChapters,
		History:  s.assistant.History().Turns(),
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	query := strings.TrimSpace(r.FormValue("query"))
	chapter := strings.TrimSpace(r.FormValue("chapter"))
	data := pageData{
		Chapters: parser.KnownChapters,
		Query:    query,
		Chapter:  chapter,
	}
	if query == "" {
		data.Error = "Please enter a question."
		data.History = s.assistant.History().Turns()
		s.render(w, data)
		return
	}

	ans, err := s.assistant.Answer(r.Context(), service.AnswerRequest{Query: query, Chapter: chapter})
	if err != nil {
		log.Printf("web: answer failed: %v", err)
		data.Error = err.Error()
		data.History = s.assistant.History().Turns()
		s.render(w, data)
		return
	}

	data.Answer = ans.Text
	data.NoAnswer = ans.NoAnswer
	data.Chapter = ans.Chapter
	data.RetrievalMS = ans.RetrievalLatency.Milliseconds()
	data.LLMMS = ans.GenerationLatency.Milliseconds()
	data.TotalMS = ans.TotalLatency().Milliseconds()
	data.Context = contextRows(ans.Results)
	data.History = s.assistant.History().Turns()
	s.render(w, data)
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Printf("web: template render failed: %v", err)
	}
}

func contextRows(results []domain.SearchResult) []contextRow {
	rows := make([]contextRow, 0, len(results))
	for i, r := range results {
		rows = append(rows, contextRow{
			Rank:    i + 1,
			Score:   r.Score,
			Page:    r.Chunk.Page,
			Chapter: r.Chunk.Chapter,
			Heading: r.Chunk.Heading,
			Snippet: snippet(r.Chunk.Text, 240),
		})
	}
	return rows
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
