package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/ledongthuc/pdf"
)

// extractPDF returns the plain text of every page. The reader panics on
// damaged cross-reference tables, so panics are reported as errors.
func extractPDF(content []byte) (text string, meta domain.DocumentMetadata, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, meta = "", domain.DocumentMetadata{}
			err = fmt.Errorf("read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", domain.DocumentMetadata{}, fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", domain.DocumentMetadata{}, fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(pageText)
		if i < numPages {
			buf.WriteString("\n\n")
		}
	}

	info := r.Trailer().Key("Info")
	meta = domain.DocumentMetadata{
		PageCount: numPages,
		Title:     strings.TrimSpace(info.Key("Title").Text()),
		Author:    strings.TrimSpace(info.Key("Author").Text()),
	}
	return buf.String(), meta, nil
}
