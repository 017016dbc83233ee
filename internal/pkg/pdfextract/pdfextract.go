package pdfextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPages reads the entire content of r and extracts plain text per page.
// Pages with no extractable text are skipped.
func ExtractPages(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	readerAt := bytes.NewReader(b)
	pdfReader, err := pdf.NewReader(readerAt, int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}

	var pages []string
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// ExtractText extracts the whole document as a single string.
func ExtractText(r io.Reader) (string, error) {
	pages, err := ExtractPages(r)
	if err != nil {
		return "", err
	}
	return strings.Join(pages, "\n\n"), nil
}
