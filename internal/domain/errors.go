package domain

import "errors"

// Error kinds surfaced by the pipeline. Callers test them with
// errors.Is after unwrapping whatever context was added along the way.
var (
	// ErrParse marks an unreadable or malformed source PDF.
	ErrParse = errors.New("pdf parse error")

	// ErrNoExtractableText marks a PDF that opened fine but produced no
	// usable text on any page.
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	// ErrIngestion marks an embedding or store-write failure during
	// ingestion. An ingestion run that hits it must not be reported as
	// complete.
	ErrIngestion = errors.New("ingestion error")

	// ErrRetrieval marks an unreachable store or malformed query. An
	// empty result set is not an error.
	ErrRetrieval = errors.New("retrieval error")

	// ErrGeneration marks an unreachable or timed-out generation
	// runtime.
	ErrGeneration = errors.New("generation error")
)
