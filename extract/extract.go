// Package extract reads page text out of PDF files.
package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/viant/docvec/chunker"
)

// PDF returns the trimmed plain text of every non-blank page of the file at
// path, numbered from 1.
func PDF(path string) (pages []chunker.Page, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if p := recover(); p != nil {
			pages, err = nil, fmt.Errorf("extract: %s: malformed pdf: %v", path, p)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract: %s page %d: %w", path, i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, chunker.Page{Number: i, Content: text})
		}
	}
	return pages, nil
}
