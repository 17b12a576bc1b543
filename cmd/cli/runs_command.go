package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent audited pipeline runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			runCtx := ctx.withLogger(cmd.Context())

			repo, err := ctx.openAudit(runCtx)
			if err != nil {
				return err
			}
			defer repo.Close()

			runs, err := repo.ListRecentRuns(runCtx, userID, limit)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				status := run.Status
				if run.ErrorMessage.Valid {
					status += ": " + clip(run.ErrorMessage.StringVal, cellWidth)
				}
				rows = append(rows, []string{
					run.RunID,
					strconv.FormatInt(run.UserID, 10),
					status,
					run.Provider,
					run.Model,
					run.StartedTS.Local().Format("2006-01-02 15:04:05"),
					run.FinishedTS.Sub(run.StartedTS).Round(time.Millisecond).String(),
					strconv.FormatInt(run.ModelCalls, 10),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run ID", "User", "Status", "Provider", "Model", "Started", "Duration", "Calls"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Only runs of this user (0 for all)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
