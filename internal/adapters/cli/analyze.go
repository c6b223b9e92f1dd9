package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

type documentFlags struct {
	client     string
	documentID string
	channel    string
}

func (f *documentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.client, "client", "c", "", "client name (required)")
	cmd.Flags().StringVarP(&f.documentID, "document-id", "d", "", "document identifier (defaults to the file name)")
	cmd.Flags().StringVar(&f.channel, "channel", "", "channel the document arrived through (required)")
}

func (f documentFlags) documentIDFor(path string) string {
	if f.documentID != "" {
		return f.documentID
	}
	return filepath.Base(path)
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	var flags documentFlags
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a document and store the result",
		Long:  `Extracts the document text, classifies it synchronously and prints the stored analysis.`,
		Args:  cobra.ExactArgs(1),
	}
	flags.register(cmd)
	cmd.RunE = a.run(false, func(cmd *cobra.Command, args []string, svc *Services) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		result, err := svc.Analyzer.Execute(cmd.Context(), domain.AnalyzeCommand{
			Document:   data,
			ClientName: flags.client,
			DocumentID: flags.documentIDFor(path),
			Channel:    flags.channel,
		})
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, result)
		}
		printRecord(cmd, result.Record)
		if result.Outcome == domain.OutcomeFallback {
			cmd.Println()
			cmd.Println("Note: the classifier response could not be parsed; neutral fallback values were stored.")
		}
		return nil
	})
	return cmd
}

func (a *app) newSubmitCmd() *cobra.Command {
	var flags documentFlags
	cmd := &cobra.Command{
		Use:   "submit [file]",
		Short: "Queue a document for asynchronous analysis",
		Args:  cobra.ExactArgs(1),
	}
	flags.register(cmd)
	cmd.RunE = a.run(true, func(cmd *cobra.Command, args []string, svc *Services) error {
		if svc.Submitter == nil {
			return errors.New("submit requires a message queue")
		}
		path := args[0]
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open document: %w", err)
		}
		defer f.Close()

		job, err := svc.Submitter.Submit(cmd.Context(), domain.SubmitCommand{
			Filename:   filepath.Base(path),
			Body:       f,
			ClientName: flags.client,
			DocumentID: flags.documentIDFor(path),
			Channel:    flags.channel,
		})
		if err != nil {
			return fmt.Errorf("submit failed: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, job)
		}
		cmd.Printf("Queued job %s\n", job.JobID)
		cmd.Printf("  Document: %s (%s)\n", job.DocumentID, job.Filename)
		cmd.Printf("  Client:   %s\n", job.ClientName)
		return nil
	})
	return cmd
}
