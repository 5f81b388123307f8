package material

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadText chunks pasted text, tagging each chunk as direct input.
func (c *Chunker) LoadText(text string) []Chunk {
	return c.Chunk(text, map[string]any{MetaSource: SourceDirectInput})
}

// LoadPDF extracts text page by page and chunks each non-blank page with
// its 1-based page number. A page whose text cannot be extracted is treated
// as empty; failing to open the document is an error.
func (c *Chunker) LoadPDF(path string) ([]Chunk, error) {
	pages, err := extractPDFPages(path)
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		chunks = append(chunks, c.Chunk(text, map[string]any{
			MetaSource: path,
			MetaPage:   i + 1,
		})...)
	}
	return chunks, nil
}

// LoadFile dispatches on extension: .pdf files go through LoadPDF, anything
// else is read as UTF-8 text.
func (c *Chunker) LoadFile(path string) ([]Chunk, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return c.LoadPDF(path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.Chunk(string(raw), map[string]any{MetaSource: path}), nil
}

// extractPDFPages returns the plain text of every page, index 0 being page 1.
func extractPDFPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]string, n)
	for i := 1; i <= n; i++ {
		pages[i-1] = pageText(r, i)
	}
	return pages, nil
}

// pageText extracts one page. The parser panics on some malformed content
// streams, so a panic is treated like an extraction error.
func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
