package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-journal/internal/account"
	"github.com/dvloznov/finance-journal/internal/journal"
)

type adviseOutput struct {
	RunID         string `json:"run_id"`
	Income        string `json:"income"`
	Expenses      string `json:"expenses"`
	Concerns      string `json:"concerns"`
	Advice        string `json:"advice"`
	BudgetSummary string `json:"budget_summary"`
	JournalID     *int64 `json:"journal_id,omitempty"`
}

func newAdviseCommand(ctx *commandContext) *cobra.Command {
	var file string
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "advise [note]",
		Short: "Run the advice pipeline over a journal note",
		Long: "Run the advice pipeline over a journal note given as an argument, " +
			"read from --file, or piped on stdin. With --user and --password the " +
			"result is saved to that user's journal.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := readNote(cmd, args, file)
			if err != nil {
				return err
			}

			runCtx := ctx.withLogger(cmd.Context())

			store, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			var userID int64
			if username != "" {
				user, err := account.NewService(store).Authenticate(runCtx, username, password)
				if err != nil {
					return err
				}
				userID = user.ID
			}

			p, closePipeline, err := ctx.newPipeline(runCtx)
			if err != nil {
				return err
			}
			defer closePipeline()

			res, err := p.RunForUser(runCtx, userID, note)
			if err != nil {
				return err
			}

			out := adviseOutput{
				RunID:         res.RunID,
				Income:        res.Branches.Income,
				Expenses:      res.Branches.Expenses,
				Concerns:      res.Branches.Concerns,
				Advice:        res.Advice.FormattedAdvice,
				BudgetSummary: res.Advice.FormattedSummary,
			}

			if userID != 0 {
				id, saved, err := journal.NewService(store).Save(runCtx, userID, note, res.Branches, res.Advice)
				if err != nil {
					return err
				}
				if saved {
					out.JournalID = &id
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Advice\n%s\n\nBudget summary\n%s\n", out.Advice, out.BudgetSummary)
			if out.JournalID != nil {
				fmt.Fprintf(w, "\nSaved as journal record %d\n", *out.JournalID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the note from this file")
	cmd.Flags().StringVarP(&username, "user", "u", "", "Save the result for this user")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for --user")
	return cmd
}

// readNote returns the note from args, a file or stdin, in that order.
func readNote(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 && file != "" {
		return "", errors.New("pass the note as an argument or with --file, not both")
	}
	switch {
	case len(args) > 0:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read note: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read note from stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no note given: pass it as an argument, with --file, or on stdin")
	}
	return string(data), nil
}
