package notionsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/logger"
)

const (
	// BatchSize defines the number of records to process in a single batch
	BatchSize = 100
)

// SyncResult counts what a sync did.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// SyncJournals upserts records into the Notion database notionDBID.
// Pages are matched on the Journal ID property, so running it twice creates
// no duplicates. A failed record is logged and counted and the sync goes on.
func SyncJournals(ctx context.Context, notionClient NotionService, notionDBID string, username string, records []domain.JournalRecord, dryRun bool) (*SyncResult, error) {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Int("record_count", len(records)).
		Msg("Starting journal sync to Notion")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existing := make(map[string]string, len(notionPages))
	for _, page := range notionPages {
		if id := extractJournalID(page); id != "" {
			existing[id] = string(page.ID)
		}
	}

	res := &SyncResult{}
	for i := 0; i < len(records); i += BatchSize {
		end := i + BatchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[i:end]
		log.Debug().
			Int("batch_start", i).
			Int("batch_end", end).
			Msg("Processing batch")

		for _, rec := range batch {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			key := JournalKey(rec.ID)
			pageID, found := existing[key]

			if dryRun {
				if found {
					log.Info().Str("journal_id", key).Str("page_id", pageID).Msg("[DRY RUN] Would update existing Notion page")
					res.Updated++
				} else {
					log.Info().Str("journal_id", key).Msg("[DRY RUN] Would create new Notion page")
					res.Created++
				}
				continue
			}

			props := JournalToNotionProperties(rec, username)

			if found {
				if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
					log.Warn().
						Err(err).
						Str("journal_id", key).
						Str("page_id", pageID).
						Msg("Failed to update Notion page")
					res.Failed++
					continue
				}
				res.Updated++
				continue
			}

			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().
					Err(err).
					Str("journal_id", key).
					Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			existing[key] = string(page.ID)
			log.Debug().
				Str("journal_id", key).
				Str("page_id", string(page.ID)).
				Msg("Created Notion page")
			res.Created++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("failed", res.Failed).
		Int("total", len(records)).
		Msg("Journal sync completed")

	return res, nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// RecordsBetween returns the records created on or after start and before
// the day following end. A zero start or end leaves that side open.
func RecordsBetween(records []domain.JournalRecord, start, end time.Time) []domain.JournalRecord {
	var out []domain.JournalRecord
	for _, rec := range records {
		if !start.IsZero() && rec.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !rec.CreatedAt.Before(end.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
