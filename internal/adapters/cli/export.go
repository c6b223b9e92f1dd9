package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

func (a *app) newExportCmd() *cobra.Command {
	var (
		filters         filterFlags
		format          string
		dateFormat      string
		includeMetrics  bool
		includeEmotions bool
		maxRecords      int
		output          string
		preview         bool
		previewLimit    int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export analyses as CSV or JSON",
		Long: `Serializes the analyses matching the filters, newest first.
Without --output the document is written to standard output.`,
		Args: cobra.NoArgs,
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(domain.ExportCSV), "export format (csv, json)")
	cmd.Flags().StringVar(&dateFormat, "date-format", string(domain.DateFormatISO), "date format (ISO, YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY)")
	cmd.Flags().BoolVar(&includeMetrics, "include-metrics", false, "include text metrics columns")
	cmd.Flags().BoolVar(&includeEmotions, "include-emotions", false, "include emotion score columns")
	cmd.Flags().IntVar(&maxRecords, "max", 0, "maximum records to export (0 uses the configured limit)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file, or into this directory using the generated name")
	cmd.Flags().BoolVar(&preview, "preview", false, "show a sample and a size estimate instead of exporting")
	cmd.Flags().IntVar(&previewLimit, "preview-limit", 5, "number of sample records in the preview")

	cmd.RunE = a.query(func(cmd *cobra.Command, _ []string, svc *Services) error {
		filter, err := filters.build(cmd)
		if err != nil {
			return err
		}

		if preview {
			p, err := svc.Export.Preview(cmd.Context(), filter, previewLimit)
			if err != nil {
				return fmt.Errorf("export preview failed: %w", err)
			}
			if a.asJSON {
				return writeJSON(cmd, p)
			}
			cmd.Printf("%d analyses match, estimated size %s\n", p.Total, p.EstimatedSize)
			if len(p.Sample) > 0 {
				cmd.Println()
				printRecordTable(cmd.OutOrStdout(), p.Sample)
			}
			return nil
		}

		exportFormat, err := domain.ParseExportFormat(format)
		if err != nil {
			return err
		}
		outcome, err := svc.Export.Execute(cmd.Context(), domain.ExportCommand{
			Filter: filter,
			Options: domain.ExportOptions{
				Format:          exportFormat,
				IncludeMetrics:  includeMetrics,
				IncludeEmotions: includeEmotions,
				DateFormat:      domain.DateFormat(dateFormat),
			},
			MaxRecords: maxRecords,
		})
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if output == "" {
			_, err := cmd.OutOrStdout().Write(outcome.Result.Data)
			return err
		}
		path := resolveOutputPath(output, outcome.Result.Filename)
		if err := os.WriteFile(path, outcome.Result.Data, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		cmd.Printf("Exported %d of %d analyses to %s (%s)\n",
			outcome.ExportedCount, outcome.TotalAvailable, path, humanize.Bytes(uint64(outcome.Result.Size)))
		return nil
	})
	return cmd
}

func resolveOutputPath(output, generated string) string {
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, generated)
	}
	return output
}
