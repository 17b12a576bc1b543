package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/account"
	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/logger"
)

// AccountsHandler serves registration and login.
type AccountsHandler struct {
	accounts AccountService
	tokens   TokenIssuer
	log      zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(accounts AccountService, tokens TokenIssuer, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		accounts: accounts,
		tokens:   tokens,
		log:      log,
	}
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Image     string `json:"image"`
}

type loginResponse struct {
	Username    string `json:"username"`
	Image       string `json:"image"`
	UserID      int64  `json:"user_id"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles POST /register
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	_, err := h.accounts.Register(ctx, req.Username, req.Password, domain.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Image:     req.Image,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			middleware.WriteError(w, http.StatusBadRequest, "Username already registered")
		case errors.Is(err, account.ErrInvalidInput):
			middleware.WriteError(w, http.StatusBadRequest, "Username and password are required")
		default:
			log := logger.FromContext(ctx)
			log.Error().Err(err).Msg("Failed to register user")
			middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "User registered successfully"})
}

// Login handles POST /login with form fields username and password.
func (h *AccountsHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid form body")
		return
	}

	ctx := r.Context()
	user, err := h.accounts.Authenticate(ctx, r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			middleware.WriteError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to authenticate user")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Msg("Failed to issue access token")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]loginResponse{
		"response": {
			Username:    user.Username,
			Image:       user.Image,
			UserID:      user.ID,
			AccessToken: token,
			TokenType:   account.TokenType,
		},
	})
}
