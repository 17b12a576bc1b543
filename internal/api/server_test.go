package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/dvloznov/finance-journal/internal/account"
	"github.com/dvloznov/finance-journal/internal/domain"
	"github.com/dvloznov/finance-journal/internal/jobs"
	"github.com/dvloznov/finance-journal/internal/jobs/inmemory"
	"github.com/dvloznov/finance-journal/internal/llm"
	"github.com/dvloznov/finance-journal/internal/pipeline"
	"github.com/dvloznov/finance-journal/internal/storage"
)

type fakeRunner struct {
	RunForUserFunc  func(ctx context.Context, userID int64, note string) (*pipeline.Result, error)
	RunBranchesFunc func(ctx context.Context, note string) (domain.BranchResult, error)
	AdviseFunc      func(ctx context.Context, prompt string) (*pipeline.Advice, error)
}

func (f *fakeRunner) RunForUser(ctx context.Context, userID int64, note string) (*pipeline.Result, error) {
	return f.RunForUserFunc(ctx, userID, note)
}

func (f *fakeRunner) RunBranches(ctx context.Context, note string) (domain.BranchResult, error) {
	return f.RunBranchesFunc(ctx, note)
}

func (f *fakeRunner) Advise(ctx context.Context, prompt string) (*pipeline.Advice, error) {
	return f.AdviseFunc(ctx, prompt)
}

type fakeJournal struct {
	SaveFunc     func(ctx context.Context, userID int64, note string, br domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error)
	RetrieveFunc func(ctx context.Context, userID, recordID int64) (string, string, error)
	ListFunc     func(ctx context.Context, userID int64) ([]domain.JournalRecord, error)
}

func (f *fakeJournal) Save(ctx context.Context, userID int64, note string, br domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error) {
	return f.SaveFunc(ctx, userID, note, br, pkg)
}

func (f *fakeJournal) Retrieve(ctx context.Context, userID, recordID int64) (string, string, error) {
	return f.RetrieveFunc(ctx, userID, recordID)
}

func (f *fakeJournal) List(ctx context.Context, userID int64) ([]domain.JournalRecord, error) {
	return f.ListFunc(ctx, userID)
}

type fakeAccounts struct {
	RegisterFunc     func(ctx context.Context, username, password string, p domain.Profile) (int64, error)
	AuthenticateFunc func(ctx context.Context, username, password string) (*domain.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, username, password string, p domain.Profile) (int64, error) {
	return f.RegisterFunc(ctx, username, password, p)
}

func (f *fakeAccounts) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return f.AuthenticateFunc(ctx, username, password)
}

type fakeArchiver struct {
	calls int
}

func (f *fakeArchiver) Archive(ctx context.Context, userID, journalID int64, data []byte) (string, error) {
	f.calls++
	return fmt.Sprintf("gs://bucket/budgets/%d/%d.xlsx", userID, journalID), nil
}

func (f *fakeArchiver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

var testResult = &pipeline.Result{
	RunID: "run-1",
	Branches: domain.BranchResult{
		Income:   "Income:\nSalary: 4000",
		Expenses: "Expenses:\nRent: 1000",
		Concerns: "savings",
	},
	Advice: domain.AdvicePackage{
		Advice:           "save more",
		Summary:          "3000 left",
		FormattedAdvice:  "Save more.",
		FormattedSummary: "You have 3000 left.",
	},
}

type testEnv struct {
	runner   *fakeRunner
	journal  *fakeJournal
	accounts *fakeAccounts
	archiver *fakeArchiver
	tokens   *account.TokenManager
	jobs     *inmemory.Store
	handler  http.Handler
}

func newTestEnv() *testEnv {
	env := &testEnv{
		runner: &fakeRunner{
			RunForUserFunc: func(ctx context.Context, userID int64, note string) (*pipeline.Result, error) {
				if strings.TrimSpace(note) == "" {
					return nil, pipeline.ErrEmptyNote
				}
				return testResult, nil
			},
			RunBranchesFunc: func(ctx context.Context, note string) (domain.BranchResult, error) {
				return testResult.Branches, nil
			},
			AdviseFunc: func(ctx context.Context, prompt string) (*pipeline.Advice, error) {
				formatted := "Tips:\n- Track spending\n- Automate savings"
				return &pipeline.Advice{
					Advice:      "track and automate",
					Formatted:   formatted,
					Suggestions: pipeline.Suggestions(formatted),
				}, nil
			},
		},
		journal: &fakeJournal{
			SaveFunc: func(ctx context.Context, userID int64, note string, br domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error) {
				return 11, true, nil
			},
			RetrieveFunc: func(ctx context.Context, userID, recordID int64) (string, string, error) {
				if recordID != 11 {
					return "", "", storage.ErrNotFound
				}
				return testResult.Branches.Income, testResult.Branches.Expenses, nil
			},
			ListFunc: func(ctx context.Context, userID int64) ([]domain.JournalRecord, error) {
				if userID != 7 {
					return []domain.JournalRecord{}, nil
				}
				return []domain.JournalRecord{{ID: 11, UserID: 7, Note: "n", Advice: "Save more."}}, nil
			},
		},
		accounts: &fakeAccounts{
			RegisterFunc: func(ctx context.Context, username, password string, p domain.Profile) (int64, error) {
				if username == "alice" {
					return 0, account.ErrUsernameTaken
				}
				return 8, nil
			},
			AuthenticateFunc: func(ctx context.Context, username, password string) (*domain.User, error) {
				if username == "alice" && password == "secret" {
					return &domain.User{ID: 7, Username: "alice", Image: "a.png"}, nil
				}
				return nil, account.ErrInvalidCredentials
			},
		},
		archiver: &fakeArchiver{},
		tokens:   account.NewTokenManager("test-secret", time.Hour),
		jobs:     inmemory.NewStore(),
	}
	env.handler = NewHandler(Deps{
		Runner:   env.runner,
		Journal:  env.journal,
		Accounts: env.accounts,
		Tokens:   env.tokens,
		Archiver: env.archiver,
		Jobs:     env.jobs,
		Log:      zerolog.Nop(),
	})
	return env
}

func (e *testEnv) do(method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["message"] != "Welcome to the Budgeting and Financial Advice API!" {
		t.Errorf("unexpected root response %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["status"] != "healthy" {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}

func TestAdvice(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/advice", `{"message":"I earn 4000"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["Financial Advice"] != "Save more." || body["Budget Summary"] != "You have 3000 left." {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["Financial history Id"]; ok {
		t.Error("anonymous advice must not carry a history id")
	}
}

func TestAdviceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"empty note", pipeline.ErrEmptyNote, http.StatusBadRequest},
		{"provider down", fmt.Errorf("income step: %w", llm.ErrModelUnavailable), http.StatusBadGateway},
		{"bad key", fmt.Errorf("advice step: %w", llm.ErrModelAuth), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.runner.RunForUserFunc = func(ctx context.Context, userID int64, note string) (*pipeline.Result, error) {
				return nil, tt.err
			}
			rec := env.do(http.MethodPost, "/advice", `{"message":"x"}`, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "step") {
				t.Errorf("internal detail leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestAdviceRejectsWrongMethodAndBadBody(t *testing.T) {
	env := newTestEnv()
	if rec := env.do(http.MethodGet, "/advice", "", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/advice", `{"message":`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDownloadBudget(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/download-budget", `{"message":"salary 4000 rent 1000"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=budget.xlsx" {
		t.Errorf("unexpected disposition %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Income")
	if err != nil {
		t.Fatalf("income sheet: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Salary" {
		t.Errorf("unexpected income rows %v", rows)
	}

	if rec := env.do(http.MethodPost, "/download-budget", `{"message":"  "}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank message, got %d", rec.Code)
	}
}

func TestUserAdvice(t *testing.T) {
	env := newTestEnv()

	var savedFor int64
	env.journal.SaveFunc = func(ctx context.Context, userID int64, note string, br domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error) {
		savedFor = userID
		return 11, true, nil
	}

	rec := env.do(http.MethodPost, "/user-advice", `{"username":"alice","password":"secret","message":"note"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if id := decode(t, rec)["Financial history Id"]; id != float64(11) {
		t.Errorf("expected history id 11, got %v", id)
	}
	if savedFor != 7 {
		t.Errorf("expected record saved for user 7, got %d", savedFor)
	}

	rec = env.do(http.MethodPost, "/user-advice", `{"username":"alice","password":"wrong","message":"note"}`, nil)
	if rec.Code != http.StatusUnauthorized || decode(t, rec)["error"] != "Invalid username or password" {
		t.Errorf("expected 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestUserAdviceWithBearerToken(t *testing.T) {
	env := newTestEnv()
	env.accounts.AuthenticateFunc = func(ctx context.Context, username, password string) (*domain.User, error) {
		t.Fatal("password check must be skipped for a valid token")
		return nil, nil
	}
	token, err := env.tokens.Issue(&domain.User{ID: 7, Username: "alice"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := env.do(http.MethodPost, "/user-advice", `{"message":"note"}`, map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/user-advice", `{"message":"note"}`, map[string]string{"Authorization": "Bearer garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestUserAdviceSwallowsStoreFailure(t *testing.T) {
	env := newTestEnv()
	env.journal.SaveFunc = func(ctx context.Context, userID int64, note string, br domain.BranchResult, pkg domain.AdvicePackage) (int64, bool, error) {
		return 0, false, errors.New("disk full")
	}

	rec := env.do(http.MethodPost, "/user-advice", `{"username":"alice","password":"secret","message":"note"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if _, ok := body["Financial history Id"]; ok {
		t.Errorf("expected no history id, got %v", body)
	}
	if body["Financial Advice"] != "Save more." {
		t.Errorf("advice missing: %v", body)
	}
}

func TestCreateBudgetWithAdvice(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/create-budget-with-advice", `{"user_id":"7","journal_id":11}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Archive-URI") != "gs://bucket/budgets/7/11.xlsx" {
		t.Errorf("unexpected archive header %q", rec.Header().Get("X-Archive-URI"))
	}
	if env.archiver.calls != 1 {
		t.Errorf("expected one archive call, got %d", env.archiver.calls)
	}

	rec = env.do(http.MethodPost, "/create-budget-with-advice", `{"user_id":7,"journal_id":"99"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/create-budget-with-advice", `{"user_id":"seven","journal_id":1}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestRecordsRejectForeignToken(t *testing.T) {
	env := newTestEnv()
	token, _ := env.tokens.Issue(&domain.User{ID: 8, Username: "bob"})

	rec := env.do(http.MethodPost, "/get-all-finance-record/advice", `{"user_id":7}`, map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestListRecords(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/get-all-finance-record/advice", `{"user_id":7}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0]["id"] != float64(11) {
		t.Errorf("unexpected records %v", records)
	}

	rec = env.do(http.MethodPost, "/get-all-finance-record/advice", `{"user_id":"3"}`, nil)
	if strings.TrimSpace(rec.Body.String()) != `{"response":""}` {
		t.Errorf("expected empty sentinel, got %s", rec.Body.String())
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv()

	rec := env.do(http.MethodPost, "/register", `{"username":"bob","password":"pw","first_name":"Bob"}`, nil)
	if rec.Code != http.StatusOK || decode(t, rec)["message"] != "User registered successfully" {
		t.Errorf("unexpected register response %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodPost, "/register", `{"username":"alice","password":"pw"}`, nil)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "Username already registered" {
		t.Errorf("unexpected duplicate response %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv()

	form := url.Values{"username": {"alice"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp, ok := decode(t, rec)["response"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing response object: %s", rec.Body.String())
	}
	if resp["username"] != "alice" || resp["user_id"] != float64(7) || resp["token_type"] != "bearer" {
		t.Errorf("unexpected login response %v", resp)
	}
	claims, err := env.tokens.Validate(resp["access_token"].(string))
	if err != nil || claims.Username != "alice" {
		t.Errorf("issued token does not validate: %v", err)
	}

	form.Set("password", "nope")
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestGenerateAdvice(t *testing.T) {
	env := newTestEnv()
	var gotPrompt string
	advise := env.runner.AdviseFunc
	env.runner.AdviseFunc = func(ctx context.Context, prompt string) (*pipeline.Advice, error) {
		gotPrompt = prompt
		return advise(ctx, prompt)
	}

	rec := env.do(http.MethodPost, "/api/advice/generate", `{"user_id":"7","prompt":"How do I save?"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPrompt != "How do I save?" {
		t.Errorf("unexpected prompt %q", gotPrompt)
	}
	var body struct {
		Advice      string   `json:"advice"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Advice != "Tips:\n- Track spending\n- Automate savings" {
		t.Errorf("unexpected advice %q", body.Advice)
	}
	if len(body.Suggestions) != 2 || body.Suggestions[0] != "Track spending" || body.Suggestions[1] != "Automate savings" {
		t.Errorf("unexpected suggestions %v", body.Suggestions)
	}
}

func TestGenerateAdviceErrors(t *testing.T) {
	foreign, _ := newTestEnv().tokens.Issue(&domain.User{ID: 8, Username: "bob"})

	tests := []struct {
		name      string
		body      string
		header    map[string]string
		adviseErr error
		want      int
	}{
		{name: "missing user", body: `{"prompt":"p"}`, want: http.StatusBadRequest},
		{name: "non-numeric user", body: `{"user_id":"abc","prompt":"p"}`, want: http.StatusBadRequest},
		{name: "blank prompt", body: `{"user_id":7,"prompt":"  "}`, want: http.StatusBadRequest},
		{name: "foreign token", body: `{"user_id":7,"prompt":"p"}`, header: map[string]string{"Authorization": "Bearer " + foreign}, want: http.StatusForbidden},
		{name: "provider down", body: `{"user_id":7,"prompt":"p"}`, adviseErr: fmt.Errorf("Advise: advice step: %w", llm.ErrModelUnavailable), want: http.StatusBadGateway},
		{name: "unexpected", body: `{"user_id":7,"prompt":"p"}`, adviseErr: errors.New("format step: boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			called := false
			env.runner.AdviseFunc = func(ctx context.Context, prompt string) (*pipeline.Advice, error) {
				called = true
				return nil, tt.adviseErr
			}

			rec := env.do(http.MethodPost, "/api/advice/generate", tt.body, tt.header)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if tt.adviseErr == nil && called {
				t.Error("advice chain must not run for a rejected request")
			}
			if strings.Contains(rec.Body.String(), "step") {
				t.Errorf("internal detail leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestGenerateBudget(t *testing.T) {
	env := newTestEnv()

	body := `{"user_id":"u1","incomes":[{"source":"Salary","amount":5000}],
		"expenses":[{"category":"Rent","amount":1200},{"category":"Groceries","amount":400}]}`
	rec := env.do(http.MethodPost, "/api/budget/generate", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	summary := out["summary"].(map[string]interface{})
	if summary["total_income"] != float64(5000) || summary["net_savings"] != float64(3400) || summary["savings_rate"] != float64(68) {
		t.Errorf("unexpected summary %v", summary)
	}
	details := out["details"].(map[string]interface{})
	if details["rent"] != float64(1200) {
		t.Errorf("unexpected details %v", details)
	}

	rec = env.do(http.MethodPost, "/api/budget/generate", `{"incomes":[{"source":"","amount":1}]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestJobsEndpoints(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	_ = env.jobs.SaveJob(ctx, &jobs.RecordRunJob{JobID: "job-1", RunID: "run-1", UserID: 4, Status: jobs.JobStatusCompleted, CreatedAt: time.Now()})
	_ = env.jobs.SaveJob(ctx, &jobs.RecordRunJob{JobID: "job-2", RunID: "run-2", UserID: 5, Status: jobs.JobStatusFailed, CreatedAt: time.Now()})

	rec := env.do(http.MethodGet, "/api/jobs?status=completed", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected list response %d %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["count"] != float64(1) {
		t.Errorf("expected 1 completed job, got %v", out["count"])
	}
	byStatus := out["by_status"].(map[string]interface{})
	if byStatus["completed"] != float64(1) || byStatus["failed"] != float64(1) {
		t.Errorf("unexpected status counts %v", byStatus)
	}

	rec = env.do(http.MethodGet, "/api/jobs?user_id=5", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["count"] != float64(1) {
		t.Errorf("unexpected user filter response %d %s", rec.Code, rec.Body.String())
	}

	for _, q := range []string{"user_id=abc", "limit=-1", "offset=x"} {
		if rec := env.do(http.MethodGet, "/api/jobs?"+q, "", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}

	rec = env.do(http.MethodGet, "/api/jobs/job-1", "", nil)
	if rec.Code != http.StatusOK || decode(t, rec)["run_id"] != "run-1" {
		t.Errorf("unexpected job response %d %s", rec.Code, rec.Body.String())
	}

	if rec := env.do(http.MethodGet, "/api/jobs/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
