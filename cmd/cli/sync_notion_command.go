package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-journal/internal/journal"
	"github.com/dvloznov/finance-journal/internal/notionsync"
)

func newSyncNotionCommand(ctx *commandContext) *cobra.Command {
	var userID int64
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync-notion",
		Short: "Upsert a user's journal records into a Notion database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id is required")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notion.Token == "" || cfg.Notion.DatabaseID == "" {
				return errors.New("notion.token and notion.database_id are required (or NOTION_TOKEN and NOTION_DB_ID)")
			}

			runCtx := ctx.withLogger(cmd.Context())

			store, err := ctx.openStore(runCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.GetUserByID(runCtx, userID)
			if err != nil {
				return fmt.Errorf("lookup user %d: %w", userID, err)
			}
			records, err := journal.NewService(store).List(runCtx, userID)
			if err != nil {
				return err
			}

			client := notionsync.NewNotionClient(cfg.Notion.Token)
			result, err := notionsync.SyncJournals(runCtx, client, cfg.Notion.DatabaseID, user.Username, records, dryRun)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d, updated %d, failed %d\n", result.Created, result.Updated, result.Failed)
			if result.Failed > 0 {
				return fmt.Errorf("%d record(s) failed to sync", result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User whose records to sync")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}
