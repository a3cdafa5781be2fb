package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Bochyn/Image-to-video/internal/runlog"
	"github.com/spf13/cobra"
)

var (
	historyJSON  bool
	historyLimit int
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Long:  "Print the runs stored in the run log, oldest first. With --limit only the most recent runs are shown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyLimit < 0 {
				return fmt.Errorf("--limit must be >= 0")
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			recs, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), recs, historyLimit, historyJSON)
		},
		Example: `restyle history --limit 5
restyle history --json`,
	}
	cmd.Flags().BoolVar(&historyJSON, "json", false, "Print records as a JSON array")
	cmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Show only the last N runs (0 = all)")
	return cmd
}

func printHistory(w io.Writer, recs []runlog.Record, limit int, asJSON bool) error {
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	if asJSON {
		if recs == nil {
			recs = []runlog.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tINPUT\tSTATUS\tIMAGE\tVIDEO\tPROMPT")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Local().Format(time.DateTime),
			r.InputFile,
			r.Status,
			orDash(runlog.Deref(r.OutputImage)),
			orDash(runlog.Deref(r.OutputVideo)),
			orDash(truncate(runlog.Deref(r.GenerationPrompt), 60)),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() { rootCmd.AddCommand(newHistoryCmd()) }
