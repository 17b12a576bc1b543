package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/llm"
	"github.com/dvloznov/finance-journal/internal/pipeline"
	"github.com/dvloznov/finance-journal/internal/spreadsheet"
)

const budgetFilename = "budget.xlsx"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeRunError maps pipeline failures to responses. Provider details stay
// in the log.
func writeRunError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch {
	case errors.Is(err, pipeline.ErrEmptyNote):
		middleware.WriteError(w, http.StatusBadRequest, "Message is required")
	case errors.Is(err, llm.ErrModelAuth):
		log.Error().Err(err).Msg("Model provider rejected credentials")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	case errors.Is(err, llm.ErrModelUnavailable):
		log.Error().Err(err).Msg("Model provider unavailable")
		middleware.WriteError(w, http.StatusBadGateway, "Model provider unavailable")
	case errors.Is(err, context.Canceled):
		log.Warn().Err(err).Msg("Request cancelled")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		log.Error().Err(err).Msg("Advice run failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeWorkbook streams an xlsx attachment.
func writeWorkbook(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", spreadsheet.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+budgetFilename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// flexID accepts an ID given either as a JSON number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return fmt.Errorf("id is null")
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(id)
	return nil
}

// authorizeUser rejects a request whose bearer token belongs to a different
// user than userID. Requests without a token are allowed.
func authorizeUser(w http.ResponseWriter, r *http.Request, userID int64) bool {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return true
	}
	tokenUser, err := claims.UserID()
	if err != nil || tokenUser != userID {
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}
