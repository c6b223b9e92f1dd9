package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
	"github.com/kirillkom/sentiment-analyzer/internal/core/ports"
)

// RecordRemover deletes stored analyses by id.
type RecordRemover interface {
	DeleteByID(ctx context.Context, id string) (bool, error)
}

// Services are the inbound ports the commands drive. Submitter is nil unless
// the loader was asked for the queue. Ephemeral reports a store that starts
// empty on every run.
type Services struct {
	Analyzer  ports.DocumentAnalyzer
	Submitter ports.DocumentSubmitter
	History   ports.AnalysisHistory
	Filter    ports.AnalysisFilterService
	Export    ports.AnalysisExportService
	Records   RecordRemover
	Ephemeral bool
}

// Loader builds the services for one command run. The returned func releases them.
type Loader func(ctx context.Context, withQueue bool) (*Services, func(), error)

type app struct {
	loader  Loader
	version string
	asJSON  bool
}

// NewRootCommand wires every subcommand. Services are loaded lazily so that
// help and version never touch the store or the classifier.
func NewRootCommand(version string, loader Loader) *cobra.Command {
	a := &app{loader: loader, version: version}

	root := &cobra.Command{
		Use:           "sentiment",
		Short:         "Analyze the sentiment of customer documents",
		Long:          `Extracts text from PDF, XLSX or plain-text documents, classifies sentiment and emotions, and keeps a queryable history of the results.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "output results as JSON")

	root.AddCommand(
		a.newAnalyzeCmd(),
		a.newSubmitCmd(),
		a.newListCmd(),
		a.newSearchCmd(),
		a.newStatsCmd(),
		a.newRecentCmd(),
		a.newShowCmd(),
		a.newDeleteCmd(),
		a.newFiltersCmd(),
		a.newExportCmd(),
		a.newVersionCmd(),
	)
	return root
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("sentiment version %s\n", a.version)
		},
	}
}

// run loads services, runs fn and releases them.
func (a *app) run(withQueue bool, fn func(cmd *cobra.Command, args []string, svc *Services) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if a.loader == nil {
			return errors.New("services not configured")
		}
		svc, release, err := a.loader(cmd.Context(), withQueue)
		if err != nil {
			return fmt.Errorf("initialize services: %w", err)
		}
		if release != nil {
			defer release()
		}
		return fn(cmd, args, svc)
	}
}

// query runs a command that reads stored history. An ephemeral store only
// holds what this run wrote, so the result would always be empty.
func (a *app) query(fn func(cmd *cobra.Command, args []string, svc *Services) error) func(*cobra.Command, []string) error {
	return a.run(false, func(cmd *cobra.Command, args []string, svc *Services) error {
		if svc.Ephemeral {
			cmd.PrintErrln(ephemeralStoreWarning)
		}
		return fn(cmd, args, svc)
	})
}

const ephemeralStoreWarning = "Warning: the memory store keeps no analyses between runs. Set STORE_BACKEND=postgres to query stored history."

// Exit codes returned by ExitCode.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitNotFound    = 3
	ExitUnavailable = 4
)

// ExitCode maps a command error onto a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case domain.IsKind(err, domain.ErrValidation),
		domain.IsKind(err, domain.ErrInvalidDocument),
		domain.IsKind(err, domain.ErrEmptyContent),
		domain.IsKind(err, domain.ErrUnsupportedFormat),
		domain.IsKind(err, domain.ErrEmptyExport),
		domain.IsKind(err, domain.ErrExportLimit):
		return ExitUsage
	case domain.IsKind(err, domain.ErrRecordNotFound):
		return ExitNotFound
	case domain.IsKind(err, domain.ErrAnalyzerUnavailable),
		domain.IsKind(err, domain.ErrTemporary):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
