package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet row by row, cells tab separated and sheets
// separated by a blank line.
func extractXLSX(content []byte) (string, domain.DocumentMetadata, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", domain.DocumentMetadata{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	parts := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", domain.DocumentMetadata{}, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		var buf strings.Builder
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if line == "" {
				continue
			}
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if text := strings.TrimSpace(buf.String()); text != "" {
			parts = append(parts, text)
		}
	}

	meta := domain.DocumentMetadata{PageCount: len(sheets)}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		meta.Title = strings.TrimSpace(props.Title)
		meta.Author = strings.TrimSpace(props.Creator)
	}
	return strings.Join(parts, "\n\n"), meta, nil
}
