package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/finance-journal/internal/config"
	"github.com/dvloznov/finance-journal/internal/journal"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/notionsync"
	"github.com/dvloznov/finance-journal/internal/storage/sqlite"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	configPath := flag.String("config", "", "Path to finance-journal.toml")
	userID := flag.Int64("user-id", 0, "User whose journal records to sync (required)")
	startDateStr := flag.String("start-date", "", "Only records created on or after this YYYY-MM-DD date")
	endDateStr := flag.String("end-date", "", "Only records created on or before this YYYY-MM-DD date")
	notionToken := flag.String("notion-token", "", "Notion API token (defaults to config or NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (defaults to config or NOTION_DB_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log = logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format)

	if *userID <= 0 {
		log.Fatal().Msg("Error: --user-id is required")
	}
	if *notionToken == "" {
		*notionToken = cfg.Notion.Token
	}
	if *notionDBID == "" {
		*notionDBID = cfg.Notion.DatabaseID
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	var startDate, endDate time.Time
	if *startDateStr != "" {
		startDate, err = time.Parse("2006-01-02", *startDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
		}
	}
	if *endDateStr != "" {
		endDate, err = time.Parse("2006-01-02", *endDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
		}
	}
	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		log.Fatal().
			Time("start_date", startDate).
			Time("end_date", endDate).
			Msg("Error: end-date must be after start-date")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	log.Info().
		Int64("user_id", *userID).
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open journal database")
	}
	defer store.Close()

	user, err := store.GetUserByID(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Int64("user_id", *userID).Msg("Failed to look up user")
	}

	records, err := journal.NewService(store).List(ctx, *userID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list journal records")
	}
	records = notionsync.RecordsBetween(records, startDate, endDate)

	notionClient := notionsync.NewNotionClient(*notionToken)

	result, err := notionsync.SyncJournals(ctx, notionClient, *notionDBID, user.Username, records, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}
	if result.Failed > 0 {
		log.Fatal().Int("failed", result.Failed).Msg("Sync finished with failures")
	}

	fmt.Printf("Sync completed successfully: %d created, %d updated.\n", result.Created, result.Updated)
}
