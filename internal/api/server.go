// Package api assembles the HTTP routes and middleware of the service.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/api/handlers"
	"github.com/dvloznov/finance-journal/internal/api/middleware"
	"github.com/dvloznov/finance-journal/internal/archive"
	"github.com/dvloznov/finance-journal/internal/jobs"
	"github.com/dvloznov/finance-journal/internal/metrics"
)

// Deps are the services the HTTP layer is built on. Archiver, Jobs, Voice and
// Registry are optional; their routes are omitted when nil.
type Deps struct {
	Runner   handlers.AdviceRunner
	Journal  handlers.JournalService
	Accounts handlers.AccountService
	Tokens   TokenService
	Archiver archive.Archiver
	Jobs     jobs.JobStore
	Voice    http.Handler
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// TokenService issues tokens at login and validates bearer tokens.
type TokenService interface {
	handlers.TokenIssuer
	middleware.TokenValidator
}

// NewHandler returns the complete HTTP handler.
func NewHandler(d Deps) http.Handler {
	log := d.Log

	adviceHandler := handlers.NewAdviceHandler(d.Runner, d.Journal, d.Accounts, log)
	recordsHandler := handlers.NewRecordsHandler(d.Journal, d.Archiver, log)
	accountsHandler := handlers.NewAccountsHandler(d.Accounts, d.Tokens, log)
	budgetHandler := handlers.NewBudgetHandler(log)

	mux := http.NewServeMux()

	mux.HandleFunc("/{$}", allow(http.MethodGet, handlers.Root))
	mux.HandleFunc("/", handlers.NotFound)
	mux.HandleFunc("/health", allow(http.MethodGet, handlers.Health))

	mux.HandleFunc("/advice", allow(http.MethodPost, adviceHandler.Advice))
	mux.HandleFunc("/download-budget", allow(http.MethodPost, adviceHandler.DownloadBudget))
	mux.HandleFunc("/user-advice", allow(http.MethodPost, adviceHandler.UserAdvice))

	mux.HandleFunc("/create-budget-with-advice", allow(http.MethodPost, recordsHandler.CreateBudgetWithAdvice))
	mux.HandleFunc("/get-all-finance-record/advice", allow(http.MethodPost, recordsHandler.ListRecords))

	mux.HandleFunc("/register", allow(http.MethodPost, accountsHandler.Register))
	mux.HandleFunc("/login", allow(http.MethodPost, accountsHandler.Login))

	mux.HandleFunc("/api/advice/generate", allow(http.MethodPost, adviceHandler.GenerateAdvice))
	mux.HandleFunc("/api/budget/generate", allow(http.MethodPost, budgetHandler.Generate))

	if d.Jobs != nil {
		jobsHandler := handlers.NewJobsHandler(d.Jobs, log)
		mux.HandleFunc("/api/jobs", allow(http.MethodGet, jobsHandler.ListJobs))
		mux.HandleFunc("/api/jobs/{id}", allow(http.MethodGet, jobsHandler.GetJob))
	}

	if d.Voice != nil {
		mux.Handle("/ws/voice-to-voice", d.Voice)
	}

	if d.Registry != nil {
		mux.Handle("/metrics", metrics.Handler(d.Registry))
	}

	var validator middleware.TokenValidator
	if d.Tokens != nil {
		validator = d.Tokens
	}

	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.Metrics(mux)(
					middleware.CORS(
						middleware.Auth(validator)(mux),
					),
				),
			),
		),
	)
}

// allow restricts h to a single HTTP method.
func allow(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}
