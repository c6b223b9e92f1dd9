package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

// DefaultMaxSize is the largest document accepted when no limit is configured.
const DefaultMaxSize int64 = 10 << 20

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// Extractor turns PDF, XLSX and UTF-8 text documents into plain text.
type Extractor struct {
	maxSize int64
	logger  *slog.Logger
}

func NewExtractor(maxSize int64, logger *slog.Logger) *Extractor {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{maxSize: maxSize, logger: logger}
}

func (e *Extractor) MaxSize() int64 {
	return e.maxSize
}

func (e *Extractor) IsSupported(data []byte) bool {
	_, ok := detectFormat(data)
	return ok
}

func (e *Extractor) Extract(ctx context.Context, data []byte, opts domain.ExtractOptions) (domain.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedText{}, err
	}
	if int64(len(data)) > e.maxSize {
		return domain.ExtractedText{}, fmt.Errorf("document of %d bytes exceeds limit of %d bytes", len(data), e.maxSize)
	}
	format, ok := detectFormat(data)
	if !ok {
		return domain.ExtractedText{}, fmt.Errorf("unrecognized document format")
	}

	var (
		content string
		meta    domain.DocumentMetadata
		err     error
	)
	switch format {
	case domain.FormatPDF:
		content, meta, err = extractPDF(data)
	case domain.FormatXLSX:
		content, meta, err = extractXLSX(data)
	default:
		content = strings.ToValidUTF8(string(data), "�")
		meta = domain.DocumentMetadata{PageCount: 1}
	}
	if err != nil {
		return domain.ExtractedText{}, err
	}

	meta.Format = format
	meta.FileSize = int64(len(data))
	if !opts.PreserveFormatting {
		content = cleanText(content)
	}

	e.logger.Debug("document_extracted",
		"format", format,
		"bytes", len(data),
		"pages", meta.PageCount,
		"chars", utf8.RuneCountInString(content),
	)
	return domain.ExtractedText{Content: content, Metadata: meta}, nil
}

func detectFormat(data []byte) (domain.DocumentFormat, bool) {
	switch {
	case len(data) == 0:
		return "", false
	case bytes.HasPrefix(data, pdfMagic):
		return domain.FormatPDF, true
	case bytes.HasPrefix(data, zipMagic):
		return domain.FormatXLSX, true
	case utf8.Valid(data) && bytes.IndexByte(data, 0) < 0:
		return domain.FormatPlainText, true
	default:
		return "", false
	}
}

var (
	horizontalSpace = regexp.MustCompile(`[ \t\x{00A0}]+`)
	spaceAroundNL   = regexp.MustCompile(` *\n *`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
	longEllipsis    = regexp.MustCompile(`\.{4,}`)
	longDash        = regexp.MustCompile(`-{4,}`)
	pdfArtifacts    = strings.NewReplacer("\x00", "", "\f", "\n", "\r\n", "\n", "\r", "\n")
)

// cleanText collapses runs of spaces, drops layout artifacts and keeps at most
// one blank line between paragraphs.
func cleanText(text string) string {
	text = pdfArtifacts.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundNL.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = longEllipsis.ReplaceAllString(text, "...")
	text = longDash.ReplaceAllString(text, "---")
	return strings.TrimSpace(text)
}
