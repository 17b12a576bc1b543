package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("/advice", "POST", "200"))
	ObserveHTTP("/advice", "POST", 200, 150*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("/advice", "POST", "200"))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestObserveStepLabelsErrors(t *testing.T) {
	ObserveStep("income", nil, time.Second)
	ObserveStep("income", errors.New("boom"), time.Second)

	if n := testutil.CollectAndCount(PipelineSteps, "finance_journal_pipeline_step_duration_seconds"); n < 2 {
		t.Fatalf("expected ok and error series, got %d", n)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := NewRegistry()
	ModelCalls.WithLabelValues(OutcomeSuccess).Inc()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "finance_journal_model_calls_total") {
		t.Fatalf("expected model call counter in exposition, got:\n%s", body)
	}
}
