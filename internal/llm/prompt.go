package llm

import (
	"fmt"
	"strings"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

// FallbackAnswer is the exact sentence the assistant must produce when
// the retrieved context cannot answer the question.
const FallbackAnswer = "I don't know based on the provided manual information."

// EmptyHistory is the placeholder rendered when no conversation has
// happened yet.
const EmptyHistory = "[None]"

const promptTemplate = `You are a **Tesla Model 3 Expert AI Assistant**.

This is a Retrieval-Augmented Generation task (RAG).
Your answer MUST come *strictly* from the provided context.
No external knowledge. No assumptions. No hallucinations.

RULES YOU MUST FOLLOW:

1. Use ONLY the information found in the context.
2. If the answer does not exist in the context:
     → Respond exactly with:
       "%s"
3. NEVER infer, guess, or fabricate steps.
4. If the user asks something unsafe or damaging:
     → Warn them and provide manual-approved guidance only.
5. Keep the tone technical, concise, and aligned with Tesla documentation.
6. If justification is requested, cite:
     → Page number + Section heading.

------------------------------------------------
### Previous Conversation:
%s

------------------------------------------------
### Retrieved Context (Tesla Model 3 Owner Manual):
%s

------------------------------------------------
### User Question:
%s

------------------------------------------------
### Provide the answer strictly grounded in the context:
`

// FormatContext renders retrieved chunks into a compact, traceable
// context block, one [SECTION] entry per chunk.
func FormatContext(chunks []domain.Chunk) string {
	sections := make([]string, 0, len(chunks))
	for _, c := range chunks {
		chapter := c.Chapter
		if chapter == "" {
			chapter = "Unknown"
		}
		heading := c.Heading
		if heading == "" {
			heading = "Unknown"
		}
		sections = append(sections, fmt.Sprintf(
			"[SECTION]\nPage: %d\nChapter: %s\nHeading: %s\n%s",
			c.Page, chapter, heading, strings.TrimSpace(c.Text)))
	}
	return strings.Join(sections, "\n\n")
}

// BuildPrompt assembles the grounded generation prompt from the query,
// the retrieved chunks and the formatted conversation history.
// Deterministic for identical inputs.
func BuildPrompt(query string, chunks []domain.Chunk, history string) string {
	if history == "" {
		history = EmptyHistory
	}
	return fmt.Sprintf(promptTemplate, FallbackAnswer, history, FormatContext(chunks), query)
}
