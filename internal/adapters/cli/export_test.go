package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

func csvOutcome() *domain.ExportOutcome {
	data := []byte("ID,Cliente\nr-1,Acme\n")
	return &domain.ExportOutcome{
		Result: domain.ExportResult{
			Data:     data,
			Filename: "sentiment-analysis-2024-03-14.csv",
			MimeType: "text/csv",
			Size:     len(data),
		},
		ExportedCount:  1,
		TotalAvailable: 3,
	}
}

func TestExportCmd_WritesToStdout(t *testing.T) {
	h := newHarness()
	exporter := &exportFake{outcome: csvOutcome()}
	h.svc.Export = exporter

	out, err := h.execute("export", "--format", "CSV", "--include-emotions", "--date-format", "DD/MM/YYYY", "--max", "50", "--sentiment", "negative")

	require.NoError(t, err)
	assert.Equal(t, "ID,Cliente\nr-1,Acme\n", out)
	assert.Equal(t, domain.ExportOptions{
		Format:          domain.ExportCSV,
		IncludeEmotions: true,
		DateFormat:      domain.DateFormatDMY,
	}, exporter.cmd.Options)
	assert.Equal(t, 50, exporter.cmd.MaxRecords)
	assert.Equal(t, domain.SentimentNegative, exporter.cmd.Filter.Sentiment)
}

func TestExportCmd_WritesIntoDirectory(t *testing.T) {
	h := newHarness()
	h.svc.Export = &exportFake{outcome: csvOutcome()}
	dir := t.TempDir()

	out, err := h.execute("export", "-o", dir)

	require.NoError(t, err)
	path := filepath.Join(dir, "sentiment-analysis-2024-03-14.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ID,Cliente\nr-1,Acme\n", string(data))
	assert.Contains(t, out, "Exported 1 of 3 analyses to "+path)
}

func TestExportCmd_WritesToNamedFile(t *testing.T) {
	h := newHarness()
	h.svc.Export = &exportFake{outcome: csvOutcome()}
	path := filepath.Join(t.TempDir(), "out.csv")

	_, err := h.execute("export", "--output", path)

	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExportCmd_RejectsUnknownFormat(t *testing.T) {
	h := newHarness()
	exporter := &exportFake{}
	h.svc.Export = exporter

	_, err := h.execute("export", "--format", "xml")

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrUnsupportedFormat))
	assert.Equal(t, ExitUsage, ExitCode(err))
	assert.Empty(t, exporter.cmd.Options.Format, "export must not run")
}

func TestExportCmd_PropagatesLimitError(t *testing.T) {
	h := newHarness()
	h.svc.Export = &exportFake{err: domain.WrapError(domain.ErrExportLimit, "export analyses", errors.New("too many"))}

	_, err := h.execute("export", "--max", "20000")

	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrExportLimit))
}

func TestExportCmd_Preview(t *testing.T) {
	h := newHarness()
	exporter := &exportFake{preview: &domain.ExportPreview{
		Sample:        []domain.AnalysisRecord{testRecord(t, "p-1", domain.SentimentPositive)},
		Total:         12,
		EstimatedSize: "14.1 KB",
	}}
	h.svc.Export = exporter

	out, err := h.execute("export", "--preview", "--preview-limit", "3", "--client", "Acme")

	require.NoError(t, err)
	assert.Equal(t, 3, exporter.previewLimit)
	assert.Equal(t, "Acme", exporter.previewFilter.ClientName)
	assert.Contains(t, out, "12 analyses match, estimated size 14.1 KB")
	assert.Contains(t, out, "p-1")
}
