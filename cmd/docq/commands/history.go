package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewHistoryCmd constructs the `docq history` command, which lists recent
// ingestion runs and question/answer exchanges.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent ingestion runs and asked questions",
		Long: `Show the most recent ingestion runs and question/answer exchanges from
the local history database (~/.docq/history.db, override with DOCQ_HISTORY_DB).

Examples:
  docq history
  docq history --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			h := openHistory(log)
			if h == nil {
				fmt.Println("history is disabled")
				return nil
			}
			defer h.Close()

			runs, err := h.RecentRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			fmt.Println("ingestion runs:")
			if len(runs) == 0 {
				fmt.Println("  (none)")
			}
			for _, r := range runs {
				fmt.Printf("  %s  %-8s %4d chunks  %s\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"), r.Outcome, r.Chunks, r.Source)
			}

			exchanges, err := h.RecentExchanges(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			fmt.Println("\nquestions:")
			if len(exchanges) == 0 {
				fmt.Println("  (none)")
			}
			for _, e := range exchanges {
				fmt.Printf("  %s  [top-k %d] %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"), e.TopK, e.Question)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum entries to show per section")

	return cmd
}
