package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const previewRunes = 80

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func sentimentLabel(s domain.SentimentCategory) string {
	p := s.Presentation()
	return p.Icon + " " + p.DisplayName
}

func printRecord(cmd *cobra.Command, r domain.AnalysisRecord) {
	cmd.Printf("Analysis %s\n", r.ID)
	cmd.Printf("  Sentiment:   %s (confidence %.2f)\n", sentimentLabel(r.Sentiment), r.Confidence)
	cmd.Printf("  Client:      %s\n", r.ClientName)
	cmd.Printf("  Document:    %s\n", r.DocumentID)
	cmd.Printf("  Channel:     %s\n", r.Channel)
	cmd.Printf("  Created:     %s (%s)\n", r.CreatedAt.UTC().Format(time.RFC3339), humanize.Time(r.CreatedAt))

	cmd.Printf("  Emotions:    dominant %s, intensity %s\n", r.Emotions.Dominant(), r.Emotions.Intensity())
	for _, e := range domain.Emotions {
		cmd.Printf("    %-9s %.2f\n", e, r.Emotions.Score(e))
	}

	m := r.Metrics
	cmd.Printf("  Metrics:     %d words, %d sentences, %d paragraphs\n", m.WordCount, m.SentenceCount, m.ParagraphCount)
	cmd.Printf("  Readability: %.1f (%s), complexity %s\n", m.Readability, m.ReadabilityLevel(), m.ComplexityLevel())
	cmd.Printf("  Processed:   %s, language %s\n", m.FormatProcessingTime(), m.Language)
}

func printRecordTable(w io.Writer, records []domain.AnalysisRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENT\tDOCUMENT\tCHANNEL\tSENTIMENT\tCONFIDENCE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			r.ID, r.ClientName, r.DocumentID, r.Channel,
			sentimentLabel(r.Sentiment), r.Confidence, humanize.Time(r.CreatedAt))
	}
	_ = tw.Flush()
}

func printStatistics(cmd *cobra.Command, s domain.Statistics) {
	cmd.Printf("Total analyses: %d\n", s.Total)
	cmd.Printf("  %s: %d\n", sentimentLabel(domain.SentimentPositive), s.PositiveCount)
	cmd.Printf("  %s: %d\n", sentimentLabel(domain.SentimentNeutral), s.NeutralCount)
	cmd.Printf("  %s: %d\n", sentimentLabel(domain.SentimentNegative), s.NegativeCount)
	cmd.Printf("Average confidence: %.2f\n", s.AverageConfidence)
	if s.MostCommonChannel != "" {
		cmd.Printf("Most common channel: %s (%d)\n", s.MostCommonChannel, s.ChannelCounts[s.MostCommonChannel])
	}
}

func printPageFooter(cmd *cobra.Command, p domain.Page) {
	cmd.Printf("\nPage %d of %d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
	if p.HasNext() {
		cmd.Printf("Next page: --page %d\n", p.Page+1)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
