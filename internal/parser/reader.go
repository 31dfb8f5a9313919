package parser

import (
	"fmt"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/akasshvinod/Hybrid-Tesla-RAG-Assistant-HTRA/internal/domain"
)

// ReadPages extracts the text of every page of the PDF at path, in
// order. A page whose text cannot be extracted is kept with empty text
// so the output page count always equals the document page count.
func ReadPages(path string) ([]domain.Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrParse, path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if total <= 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrParse, path)
	}

	pages := make([]domain.Page, 0, total)
	empty := 0
	for n := 1; n <= total; n++ {
		p := r.Page(n)
		if p.V.IsNull() {
			pages = append(pages, domain.Page{Number: n})
			empty++
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			log.Printf("parser: page %d text extraction failed: %v", n, err)
			pages = append(pages, domain.Page{Number: n})
			empty++
			continue
		}
		pages = append(pages, domain.Page{Number: n, Text: text})
		if strings.TrimSpace(text) == "" {
			empty++
		}
	}
	if empty == total {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoExtractableText, path)
	}
	return pages, nil
}

// ReadFirstN extracts at most n leading pages, for quick inspection.
func ReadFirstN(path string, n int) ([]domain.Page, error) {
	pages, err := ReadPages(path)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(pages) {
		pages = pages[:n]
	}
	return pages, nil
}
