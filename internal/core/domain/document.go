package domain

import "time"

type DocumentFormat string

const (
	FormatPDF       DocumentFormat = "pdf"
	FormatXLSX      DocumentFormat = "xlsx"
	FormatPlainText DocumentFormat = "text"
)

type ExtractOptions struct {
	PreserveFormatting bool
	Language           string
}

type DocumentMetadata struct {
	PageCount int            `json:"page_count"`
	Title     string         `json:"title,omitempty"`
	Author    string         `json:"author,omitempty"`
	FileSize  int64          `json:"file_size"`
	Format    DocumentFormat `json:"format"`
}

type ExtractedText struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// ClassifyRequest carries the text and the context the classifier may use in its prompt.
type ClassifyRequest struct {
	Text       string
	ClientName string
	DocumentID string
	Channel    string
}

// AnalysisJob is an asynchronous analysis request. The document bytes live in object storage.
type AnalysisJob struct {
	JobID       string    `json:"job_id"`
	StorageKey  string    `json:"storage_key"`
	Filename    string    `json:"filename"`
	ClientName  string    `json:"client_name"`
	DocumentID  string    `json:"document_id"`
	Channel     string    `json:"channel"`
	SubmittedAt time.Time `json:"submitted_at"`
}
