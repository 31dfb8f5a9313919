package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/service"
)

type fakeAssistant struct {
	answer  service.Answer
	err     error
	lastReq service.AnswerRequest
	history *service.History
}

func (f *fakeAssistant) Answer(_ context.Context, req service.AnswerRequest) (service.Answer, error) {
	f.lastReq = req
	if f.err != nil {
		return service.Answer{}, f.err
	}
	return f.answer, nil
}

func (f *fakeAssistant) History() *service.History { return f.history }

func newFakeAssistant() *fakeAssistant {
	return &fakeAssistant{
		answer: service.Answer{
			Text: "Plug the cable into the charge port.",
			Results: []domain.SearchResult{
				{Chunk: domain.Chunk{Text: "Plug the cable into the charge port until the latch clicks.", Chapter: "Charging", Heading: "Charging Instructions", Page: 3}, Score: 0.82},
			},
			Chapter: "Charging",
		},
		history: service.NewHistory(10),
	}
}

func postAsk(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestIndexRendersForm(t *testing.T) {
	srv := NewServer(newFakeAssistant())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<form")
	assert.Contains(t, body, "Charging")
}

func TestIndexUnknownPath(t *testing.T) {
	srv := NewServer(newFakeAssistant())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAskRendersAnswerAndContext(t *testing.T) {
	fa := newFakeAssistant()
	srv := NewServer(fa)

	rec := postAsk(t, srv, url.Values{"query": {"How do I charge the car?"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Plug the cable into the charge port.")
	assert.Contains(t, body, "Charging Instructions")
	assert.Equal(t, "How do I charge the car?", fa.lastReq.Query)
}

func TestAskForwardsChapterFilter(t *testing.T) {
	fa := newFakeAssistant()
	srv := NewServer(fa)

	postAsk(t, srv, url.Values{"query": {"anything"}, "chapter": {"Safety"}})

	assert.Equal(t, "Safety", fa.lastReq.Chapter)
}

func TestAskEmptyQueryShowsError(t *testing.T) {
	fa := newFakeAssistant()
	srv := NewServer(fa)

	rec := postAsk(t, srv, url.Values{"query": {"   "}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please enter a question.")
	assert.Empty(t, fa.lastReq.Query)
}

func TestAskPipelineErrorShown(t *testing.T) {
	fa := newFakeAssistant()
	fa.err = errors.New("generation backend unavailable")
	srv := NewServer(fa)

	rec := postAsk(t, srv, url.Values{"query": {"How do I charge?"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "generation backend unavailable")
}

func TestAskGetRedirects(t *testing.T) {
	srv := NewServer(newFakeAssistant())

	req := httptest.NewRequest(http.MethodGet, "/ask", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSnippetTruncates(t *testing.T) {
	long := strings.Repeat("word ", 100)
	out := snippet(long, 40)
	assert.LessOrEqual(t, len([]rune(out)), 41)
	assert.True(t, strings.HasSuffix(out, "…"))
}
