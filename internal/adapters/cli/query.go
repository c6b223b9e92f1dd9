package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

type filterFlags struct {
	client        string
	sentiment     string
	channel       string
	from          string
	to            string
	minConfidence float64
	maxConfidence float64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.client, "client", "c", "", "client name substring")
	cmd.Flags().StringVarP(&f.sentiment, "sentiment", "s", "", "sentiment category (positive, neutral, negative)")
	cmd.Flags().StringVar(&f.channel, "channel", "", "channel substring")
	cmd.Flags().StringVar(&f.from, "from", "", "created on or after (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.to, "to", "", "created on or before (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().Float64Var(&f.minConfidence, "min-confidence", 0, "minimum confidence in [0,1]")
	cmd.Flags().Float64Var(&f.maxConfidence, "max-confidence", 1, "maximum confidence in [0,1]")
}

func (f *filterFlags) build(cmd *cobra.Command) (domain.AnalysisFilter, error) {
	filter := domain.AnalysisFilter{
		ClientName: f.client,
		Channel:    f.channel,
	}
	if f.sentiment != "" {
		category, err := domain.ParseSentimentCategory(f.sentiment)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.Sentiment = category
	}
	if f.from != "" {
		from, err := parseDateFlag("from", f.from, false)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.CreatedFrom = &from
	}
	if f.to != "" {
		to, err := parseDateFlag("to", f.to, true)
		if err != nil {
			return domain.AnalysisFilter{}, err
		}
		filter.CreatedTo = &to
	}
	if cmd.Flags().Changed("min-confidence") {
		v := f.minConfidence
		filter.MinConfidence = &v
	}
	if cmd.Flags().Changed("max-confidence") {
		v := f.maxConfidence
		filter.MaxConfidence = &v
	}
	return filter, nil
}

// parseDateFlag accepts a calendar date or a full timestamp. A bare date used
// as an upper bound covers the whole day.
func parseDateFlag(field, value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, fmt.Sprintf("invalid date %q", value))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

type pageFlags struct {
	page   int
	limit  int
	sortBy string
	order  string
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&p.page, "page", "p", domain.DefaultPage, "page number")
	cmd.Flags().IntVarP(&p.limit, "limit", "n", domain.DefaultPageSize, "records per page")
	cmd.Flags().StringVar(&p.sortBy, "sort", string(domain.SortByCreatedAt), "sort field")
	cmd.Flags().StringVar(&p.order, "order", string(domain.SortDesc), "sort order (asc, desc)")
}

func (p pageFlags) request() domain.PageRequest {
	return domain.PageRequest{
		Page:      p.page,
		Limit:     p.limit,
		SortBy:    domain.SortField(strings.ToLower(p.sortBy)),
		SortOrder: domain.SortOrder(strings.ToLower(p.order)),
	}
}

func (a *app) newListCmd() *cobra.Command {
	var (
		filters filterFlags
		paging  pageFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses",
		Args:  cobra.NoArgs,
	}
	filters.register(cmd)
	paging.register(cmd)
	cmd.RunE = a.query(func(cmd *cobra.Command, _ []string, svc *Services) error {
		filter, err := filters.build(cmd)
		if err != nil {
			return err
		}
		result, err := svc.History.Execute(cmd.Context(), domain.HistoryQuery{Filter: filter, Page: paging.request()})
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, result)
		}
		if len(result.Page.Items) == 0 {
			cmd.Println("No analyses found.")
			return nil
		}
		printRecordTable(cmd.OutOrStdout(), result.Page.Items)
		printPageFooter(cmd, result.Page)
		return nil
	})
	return cmd
}

func (a *app) newSearchCmd() *cobra.Command {
	var (
		filters filterFlags
		paging  pageFlags
	)
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Filter analyses and summarize the matches",
		Args:  cobra.NoArgs,
	}
	filters.register(cmd)
	paging.register(cmd)
	cmd.RunE = a.query(func(cmd *cobra.Command, _ []string, svc *Services) error {
		filter, err := filters.build(cmd)
		if err != nil {
			return err
		}
		result, err := svc.Filter.Execute(cmd.Context(), domain.FilterQuery{Filter: filter, Page: paging.request()})
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, result)
		}
		summary := result.Summary
		cmd.Printf("Matches: %d (average confidence %.2f)\n", summary.TotalMatches, summary.AverageConfidence)
		for _, s := range domain.SentimentCategories() {
			cmd.Printf("  %s: %d\n", sentimentLabel(s), summary.SentimentDistribution[s])
		}
		if len(result.Page.Items) == 0 {
			return nil
		}
		cmd.Println()
		for _, r := range result.Page.Items {
			cmd.Printf("  %s  %s  %s\n", r.ID, sentimentLabel(r.Sentiment), truncate(r.Content, previewRunes))
		}
		printPageFooter(cmd, result.Page)
		return nil
	})
	return cmd
}

func (a *app) newStatsCmd() *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show sentiment statistics",
		Args:  cobra.NoArgs,
	}
	filters.register(cmd)
	cmd.RunE = a.query(func(cmd *cobra.Command, _ []string, svc *Services) error {
		filter, err := filters.build(cmd)
		if err != nil {
			return err
		}
		result, err := svc.History.Execute(cmd.Context(), domain.HistoryQuery{Filter: filter, Page: domain.PageRequest{Limit: 1}})
		if err != nil {
			return fmt.Errorf("failed to compute statistics: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, result.Statistics)
		}
		printStatistics(cmd, result.Statistics)
		return nil
	})
	return cmd
}

func (a *app) newRecentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent [client]",
		Short: "Show the newest analyses, optionally for one client",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of analyses")
	cmd.RunE = a.query(func(cmd *cobra.Command, args []string, svc *Services) error {
		client := ""
		if len(args) == 1 {
			client = args[0]
		}
		records, err := svc.History.Recent(cmd.Context(), client, limit)
		if err != nil {
			return fmt.Errorf("failed to list recent analyses: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, records)
		}
		if len(records) == 0 {
			cmd.Println("No analyses found.")
			return nil
		}
		printRecordTable(cmd.OutOrStdout(), records)
		return nil
	})
	return cmd
}

func (a *app) newShowCmd() *cobra.Command {
	var withContent bool
	cmd := &cobra.Command{
		Use:   "show [analysis-id]",
		Short: "Show one analysis",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&withContent, "content", false, "print the extracted document text")
	cmd.RunE = a.query(func(cmd *cobra.Command, args []string, svc *Services) error {
		record, err := svc.History.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if a.asJSON {
			return writeJSON(cmd, record)
		}
		printRecord(cmd, record)
		if withContent {
			cmd.Println()
			cmd.Println(record.Content)
		}
		return nil
	})
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [analysis-id]",
		Short: "Delete one analysis",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = a.query(func(cmd *cobra.Command, args []string, svc *Services) error {
		deleted, err := svc.Records.DeleteByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete analysis: %w", err)
		}
		if !deleted {
			return domain.WrapError(domain.ErrRecordNotFound, "delete analysis", fmt.Errorf("id %q", args[0]))
		}
		cmd.Printf("Deleted analysis %s\n", args[0])
		return nil
	})
	return cmd
}

func (a *app) newFiltersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the filter values present in the store",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.query(func(cmd *cobra.Command, _ []string, svc *Services) error {
		opts, err := svc.Filter.Options(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load filter options: %w", err)
		}

		if a.asJSON {
			return writeJSON(cmd, opts)
		}
		cmd.Printf("Clients:    %s\n", joinOrNone(opts.Clients))
		cmd.Printf("Channels:   %s\n", joinOrNone(opts.Channels))
		sentiments := make([]string, 0, len(opts.Sentiments))
		for _, s := range opts.Sentiments {
			sentiments = append(sentiments, s.String())
		}
		cmd.Printf("Sentiments: %s\n", joinOrNone(sentiments))
		if opts.EarliestAt != nil && opts.LatestAt != nil {
			cmd.Printf("Created:    %s to %s\n", opts.EarliestAt.UTC().Format(time.DateOnly), opts.LatestAt.UTC().Format(time.DateOnly))
		}
		cmd.Printf("Confidence: %.2f to %.2f\n", opts.MinConfidence, opts.MaxConfidence)
		return nil
	})
	return cmd
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
