package domain

import (
	"fmt"
	"strings"
	"time"
)

const DefaultMaxExportRecords = 10000

type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

func ParseExportFormat(value string) (ExportFormat, error) {
	format := ExportFormat(strings.ToLower(strings.TrimSpace(value)))
	switch format {
	case ExportCSV, ExportJSON:
		return format, nil
	default:
		return "", WrapError(ErrUnsupportedFormat, "parse export format", fmt.Errorf("format %q", value))
	}
}

func (f ExportFormat) Extension() string {
	return string(f)
}

func (f ExportFormat) MimeType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

type DateFormat string

const (
	DateFormatISO DateFormat = "ISO"
	DateFormatYMD DateFormat = "YYYY-MM-DD"
	DateFormatDMY DateFormat = "DD/MM/YYYY"
	DateFormatMDY DateFormat = "MM/DD/YYYY"
)

// Layout maps the date format to a time layout. Empty means ISO-8601.
func (d DateFormat) Layout() (string, bool) {
	switch d {
	case "", DateFormatISO:
		return time.RFC3339Nano, true
	case DateFormatYMD:
		return time.DateOnly, true
	case DateFormatDMY:
		return "02/01/2006", true
	case DateFormatMDY:
		return "01/02/2006", true
	default:
		return "", false
	}
}

func (d DateFormat) Format(t time.Time) string {
	layout, ok := d.Layout()
	if !ok {
		layout = time.RFC3339Nano
	}
	return t.UTC().Format(layout)
}

type ExportOptions struct {
	Format          ExportFormat `json:"format"`
	IncludeMetrics  bool         `json:"include_metrics"`
	IncludeEmotions bool         `json:"include_emotions"`
	DateFormat      DateFormat   `json:"date_format,omitempty"`
}

type ExportResult struct {
	Data     []byte `json:"-"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
}
