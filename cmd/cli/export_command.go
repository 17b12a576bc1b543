package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/finance-journal/internal/archive"
	"github.com/dvloznov/finance-journal/internal/journal"
	"github.com/dvloznov/finance-journal/internal/spreadsheet"
)

const archiveTimeout = 30 * time.Second

func newExportCommand(ctx *commandContext) *cobra.Command {
	var out string
	var userID int64
	var journalID int64
	var note string
	var archiveFlag bool
	var fromArchive string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a budget workbook",
		Long: "Write a budget workbook from a saved journal record (--user-id and " +
			"--journal-id) or from a fresh note (--note), which runs only the " +
			"extraction branches. --from-archive downloads a previously " +
			"archived workbook instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromArchive != "" {
				if journalID != 0 || note != "" || archiveFlag {
					return errors.New("--from-archive cannot be combined with --journal-id, --note or --archive")
				}
				bucket, _, err := archive.ParseGCSURI(fromArchive)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("out") {
					out = archive.FilenameFromURI(fromArchive)
				}

				runCtx := ctx.withLogger(cmd.Context())
				archiver, err := archive.NewGCSArchiver(runCtx, bucket, "")
				if err != nil {
					return err
				}
				defer archiver.Close()
				return downloadArchived(runCtx, archiver, fromArchive, out, cmd.OutOrStdout())
			}

			if (journalID == 0) == (note == "") {
				return errors.New("pass either --journal-id or --note")
			}
			if journalID != 0 && userID == 0 {
				return errors.New("--journal-id requires --user-id")
			}

			runCtx := ctx.withLogger(cmd.Context())
			income, expenses, err := exportSources(runCtx, ctx, userID, journalID, note)
			if err != nil {
				return err
			}

			data, err := spreadsheet.Export(income, expenses)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", out, len(data))

			if !archiveFlag {
				return nil
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.ArchiveEnabled() {
				return errors.New("--archive requires archive.bucket (or GCS_BUCKET)")
			}
			archiver, err := archive.NewGCSArchiver(runCtx, cfg.Archive.Bucket, cfg.Archive.Prefix)
			if err != nil {
				return err
			}
			defer archiver.Close()

			archiveCtx, cancel := context.WithTimeout(runCtx, archiveTimeout)
			defer cancel()
			uri, err := archiver.Archive(archiveCtx, userID, journalID, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived to %s\n", uri)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "budget.xlsx", "Output file")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "Owner of the journal record")
	cmd.Flags().Int64Var(&journalID, "journal-id", 0, "Journal record to export")
	cmd.Flags().StringVar(&note, "note", "", "Build the workbook from this note instead")
	cmd.Flags().BoolVar(&archiveFlag, "archive", false, "Also upload the workbook to the archive bucket")
	cmd.Flags().StringVar(&fromArchive, "from-archive", "", "Download an archived workbook by its gs:// URI")
	return cmd
}

func exportSources(runCtx context.Context, ctx *commandContext, userID, journalID int64, note string) (string, string, error) {
	if journalID != 0 {
		store, err := ctx.openStore(runCtx)
		if err != nil {
			return "", "", err
		}
		defer store.Close()
		return journal.NewService(store).Retrieve(runCtx, userID, journalID)
	}

	p, closePipeline, err := ctx.newPipeline(runCtx)
	if err != nil {
		return "", "", err
	}
	defer closePipeline()

	branches, err := p.RunBranches(runCtx, note)
	if err != nil {
		return "", "", err
	}
	return branches.Income, branches.Expenses, nil
}

type archiveFetcher interface {
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// downloadArchived copies an archived workbook to out. Objects that are not
// xlsx workbooks are rejected without touching out.
func downloadArchived(ctx context.Context, fetcher archiveFetcher, uri, out string, w io.Writer) error {
	fetchCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	data, err := fetcher.Fetch(fetchCtx, uri)
	if err != nil {
		return err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s is not a workbook: %w", uri, err)
	}
	_ = f.Close()

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	fmt.Fprintf(w, "Wrote %s (%d bytes) from %s\n", out, len(data), uri)
	return nil
}
