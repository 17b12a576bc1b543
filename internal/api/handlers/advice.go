package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/account"
	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/spreadsheet"
)

// AdviceHandler serves the note-to-advice endpoints.
type AdviceHandler struct {
	runner   AdviceRunner
	journal  JournalService
	accounts AccountService
	log      zerolog.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(runner AdviceRunner, journal JournalService, accounts AccountService, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{
		runner:   runner,
		journal:  journal,
		accounts: accounts,
		log:      log,
	}
}

type messageRequest struct {
	Message string `json:"message"`
}

type userAdviceRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Message  string `json:"message"`
}

type generateAdviceRequest struct {
	UserID flexID `json:"user_id"`
	Prompt string `json:"prompt"`
}

type generateAdviceResponse struct {
	Advice      string   `json:"advice"`
	Suggestions []string `json:"suggestions"`
}

type adviceResponse struct {
	Advice    string `json:"Financial Advice"`
	Summary   string `json:"Budget Summary"`
	HistoryID *int64 `json:"Financial history Id,omitempty"`
}

// Advice handles POST /advice
func (h *AdviceHandler) Advice(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.runner.RunForUser(r.Context(), 0, req.Message)
	if err != nil {
		writeRunError(w, logger.FromContext(r.Context()), err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, adviceResponse{
		Advice:  res.Advice.FormattedAdvice,
		Summary: res.Advice.FormattedSummary,
	})
}

// DownloadBudget handles POST /download-budget. Only the extraction branches
// run; the workbook is built from income and expenses.
func (h *AdviceHandler) DownloadBudget(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx := r.Context()
	branches, err := h.runner.RunBranches(ctx, req.Message)
	if err != nil {
		writeRunError(w, logger.FromContext(ctx), err)
		return
	}

	data, err := spreadsheet.Export(branches.Income, branches.Expenses)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to build workbook")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build workbook")
		return
	}

	writeWorkbook(w, data)
}

// UserAdvice handles POST /user-advice. The caller is identified by a bearer
// token when one was presented, otherwise by username and password. The
// result is stored in the caller's journal; a store failure is logged and the
// advice is still returned, without a history id.
func (h *AdviceHandler) UserAdvice(w http.ResponseWriter, r *http.Request) {
	var req userAdviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)

	var userID int64
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		id, err := claims.UserID()
		if err != nil {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		userID = id
	} else {
		user, err := h.accounts.Authenticate(ctx, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, account.ErrInvalidCredentials) {
				middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
				return
			}
			log.Error().Err(err).Msg("Failed to authenticate user")
			middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		userID = user.ID
	}

	res, err := h.runner.RunForUser(ctx, userID, req.Message)
	if err != nil {
		writeRunError(w, log, err)
		return
	}

	resp := adviceResponse{
		Advice:  res.Advice.FormattedAdvice,
		Summary: res.Advice.FormattedSummary,
	}

	id, saved, err := h.journal.Save(ctx, userID, req.Message, res.Branches, res.Advice)
	switch {
	case err != nil:
		log.Error().Err(err).Int64("user_id", userID).Str("run_id", res.RunID).Msg("Failed to save journal record")
	case saved:
		resp.HistoryID = &id
	default:
		log.Info().Int64("user_id", userID).Msg("Advice was empty, journal record not saved")
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// GenerateAdvice handles POST /api/advice/generate. Only the advice chain
// runs, over the prompt; suggestions are the list items of the formatted
// advice.
func (h *AdviceHandler) GenerateAdvice(w http.ResponseWriter, r *http.Request) {
	var req generateAdviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if !authorizeUser(w, r, int64(req.UserID)) {
		return
	}

	ctx := r.Context()
	advice, err := h.runner.Advise(ctx, req.Prompt)
	if err != nil {
		writeRunError(w, logger.FromContext(ctx), err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, generateAdviceResponse{
		Advice:      advice.Formatted,
		Suggestions: advice.Suggestions,
	})
}
