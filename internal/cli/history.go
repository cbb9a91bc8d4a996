package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/thankstars/pkg/errors"
	"github.com/matzehuels/thankstars/pkg/history"
)

// historyCommand creates the history command.
func (c *CLI) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long: `List recent runs, most recent first: when they ran, on which project,
and how many repositories were newly and already starred.

Runs are recorded under the config directory, or in MongoDB when
history.mongo_uri is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				printInfo(cmd.OutOrStdout(), "History is disabled (history.enabled = false)")
				return nil
			}

			store, err := history.Open(ctx, history.Options{
				Dir:      cfg.History.Dir,
				MongoURI: cfg.History.MongoURI,
				Database: cfg.History.Database,
			})
			if err != nil {
				return errs.Wrap(errs.ErrCodeConfig, err, "open history")
			}
			defer store.Close()

			records, err := store.List(ctx, limit)
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "list history")
			}
			writeHistory(cmd.OutOrStdout(), records, time.Now())
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "number of runs to show")
	return cmd
}

func writeHistory(w io.Writer, records []*history.Record, now time.Time) {
	if len(records) == 0 {
		printInfo(w, "No runs recorded yet")
		return
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		mode := "run"
		if r.DryRun {
			mode = "dry run"
		}
		rows = append(rows, []string{
			formatRelativeTime(r.StartedAt, now),
			r.Root,
			mode,
			strconv.Itoa(r.Newly()),
			strconv.Itoa(r.Already()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("When", "Project", "Mode", "Starred", "Already").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 3:
				return StyleSuccess
			case col == 0 || col == 2:
				return StyleDim
			default:
				return StyleValue
			}
		})
	fmt.Fprintln(w, t.Render())
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
