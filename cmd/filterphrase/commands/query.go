package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/filterphrase/pkg/filter"
	"github.com/Sumatoshi-tech/filterphrase/pkg/observability"
)

const (
	queryCmdUse   = "query <ext> <text>..."
	queryCmdShort = "Rank project files for a single prompt and print a score table"
	queryMinArgs  = 2
	scoreExact    = "exact"
	scorePrecis   = 2
)

func buildQueryCommand(d deps) *cobra.Command {
	return &cobra.Command{
		Use:   queryCmdUse,
		Short: queryCmdShort,
		Long: `Rank the project files once for the prompt formed by joining the
arguments with spaces, and print the best matches with their scores.

Examples:
  filterphrase query lua finders/async
  filterphrase query py main`,
		Args: cobra.MinimumNArgs(queryMinArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, d, strings.Join(args, " "))
		},
	}
}

//nolint:nonamedreturns // the deferred shutdown joins into err.
func runQuery(cmd *cobra.Command, d deps, line string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := start(ctx, d, observability.ModeQuery)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
	}()

	results, err := a.engine.Query(ctx, line)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	if len(results) == 0 {
		a.logger.InfoContext(ctx, "no matching files", "prompt", line, "candidates", a.engine.Len())
	}

	renderResults(cmd.OutOrStdout(), filter.Top(results, filter.DisplayLimit), len(results))

	return nil
}

func renderResults(w io.Writer, results []filter.ScoredResult, total int) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"#", "Score", "Path"})

	for i, result := range results {
		tbl.AppendRow(table.Row{i + 1, formatScore(result.Score), result.Item})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("Showing %d of %d matches", len(results), total)})
	tbl.Render()
}

func formatScore(score float64) string {
	if score == filter.Good {
		return scoreExact
	}

	return strconv.FormatFloat(score, 'f', scorePrecis, 64)
}
