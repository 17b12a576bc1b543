package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/archive"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/spreadsheet"
	"github.com/dvloznov/finance-journal/internal/storage"
)

const archiveTimeout = 30 * time.Second

// RecordsHandler serves stored journal records.
type RecordsHandler struct {
	journal  JournalService
	archiver archive.Archiver
	log      zerolog.Logger
}

// NewRecordsHandler creates a new records handler. archiver may be nil.
func NewRecordsHandler(journal JournalService, archiver archive.Archiver, log zerolog.Logger) *RecordsHandler {
	return &RecordsHandler{
		journal:  journal,
		archiver: archiver,
		log:      log,
	}
}

type budgetFromRecordRequest struct {
	UserID    flexID `json:"user_id"`
	JournalID flexID `json:"journal_id"`
}

type listRecordsRequest struct {
	UserID flexID `json:"user_id"`
}

// CreateBudgetWithAdvice handles POST /create-budget-with-advice
func (h *RecordsHandler) CreateBudgetWithAdvice(w http.ResponseWriter, r *http.Request) {
	var req budgetFromRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID, journalID := int64(req.UserID), int64(req.JournalID)
	if !authorizeUser(w, r, userID) {
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)

	income, expenses, err := h.journal.Retrieve(ctx, userID, journalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Journal record not found")
			return
		}
		log.Error().Err(err).Int64("journal_id", journalID).Msg("Failed to load journal record")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	data, err := spreadsheet.Export(income, expenses)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	if h.archiver != nil {
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		uri, err := h.archiver.Archive(archiveCtx, userID, journalID, data)
		cancel()
		if err != nil {
			log.Warn().Err(err).Int64("journal_id", journalID).Msg("Failed to archive workbook")
		} else {
			w.Header().Set("X-Archive-URI", uri)
		}
	}

	writeWorkbook(w, data)
}

// ListRecords handles POST /get-all-finance-record/advice
func (h *RecordsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	var req listRecordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := int64(req.UserID)
	if !authorizeUser(w, r, userID) {
		return
	}

	records, err := h.journal.List(r.Context(), userID)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to list journal records")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if len(records) == 0 {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"response": ""})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, records)
}
