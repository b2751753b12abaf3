package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/equisage/equisage/internal/agent"
	"github.com/equisage/equisage/internal/config"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/logging"
	"github.com/equisage/equisage/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fixedFetcher struct {
	fact *models.RawFact
	err  error
}

func (f *fixedFetcher) Fetch(_ context.Context, ticker string) (*models.RawFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	fact := *f.fact
	fact.Ticker = ticker
	return &fact, nil
}

func testFact() *models.RawFact {
	n := 250
	daily := make([]models.OHLCV, n)
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range daily {
		c := 100 + 0.5*float64(i)
		daily[i] = models.OHLCV{Timestamp: ts.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	pe := 25.0
	fwd := 20.0
	cap := 2e12
	return &models.RawFact{
		Daily: daily,
		Fundamentals: models.Fundamentals{
			TrailingPE: &pe,
			ForwardPE:  &fwd,
			MarketCap:  &cap,
		},
		News:      []models.NewsArticle{{Title: "Quarterly results scheduled"}},
		FetchedAt: time.Now(),
	}
}

func testServer(t *testing.T, f *fixedFetcher) *Server {
	t.Helper()

	log := logging.Nop()
	srv := &Server{
		cfg: &config.Config{},
		orch: agent.NewOrchestrator(agent.OrchestratorConfig{
			Store:   store.New(),
			Fetcher: f,
			Logger:  log,
		}),
		wsHub: NewWSHub(),
		log:   log,
	}
	go srv.wsHub.Run()
	srv.router = srv.buildRouter()
	return srv
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Endpoint tests
// ════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, &fixedFetcher{fact: testFact()})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("health should report success")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t, &fixedFetcher{fact: testFact()})

	body := strings.NewReader(`{"ticker": "aapl"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}

	data, _ := json.Marshal(resp.Data)
	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report decode: %v", err)
	}
	if report.Ticker != "AAPL" {
		t.Errorf("ticker not normalized: %q", report.Ticker)
	}
	if report.Rating == "" {
		t.Error("report has no rating")
	}
	if report.Technical == nil || report.Fundamental == nil || report.Sentiment == nil || report.Risk == nil {
		t.Error("report has missing sections")
	}
}

func TestAnalyzeEndpointByPath(t *testing.T) {
	srv := testServer(t, &fixedFetcher{fact: testFact()})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze/MSFT", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeEndpointBadRequest(t *testing.T) {
	srv := testServer(t, &fixedFetcher{fact: testFact()})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "{not json"},
		{"missing ticker", `{}`},
		{"empty ticker", `{"ticker": ""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			if resp := decodeResponse(t, rec); resp.Success {
				t.Error("expected error response")
			}
		})
	}
}

func TestAnalyzeEndpointFetchFailure(t *testing.T) {
	srv := testServer(t, &fixedFetcher{err: errors.New("upstream down")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"ticker": "AAPL"}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error == "" {
		t.Errorf("expected error payload, got %+v", resp)
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := testServer(t, &fixedFetcher{fact: testFact()})

	// Nothing cached yet.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report/AAPL", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("uncached report: got %d, want 404", rec.Code)
	}

	// Run an analysis, then the report is served from the store.
	runReq := httptest.NewRequest(http.MethodGet, "/api/v1/analyze/AAPL", nil)
	srv.Router().ServeHTTP(httptest.NewRecorder(), runReq)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report/AAPL", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("cached report: got %d, body %s", rec.Code, rec.Body.String())
	}
	if resp := decodeResponse(t, rec); !resp.Success {
		t.Errorf("expected success, got %q", resp.Error)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&agent.NoDataError{Ticker: "X"}, http.StatusNotFound},
		{agent.ErrIncompleteData, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusForError(tt.err); got != tt.want {
			t.Errorf("statusForError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"BRK-B", "BRK-B"},
	}
	for _, tt := range tests {
		if got := normalizeTicker(tt.in); got != tt.want {
			t.Errorf("normalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket hub
// ════════════════════════════════════════════════════════════════════

func TestWSHubBroadcastDropsWhenFull(t *testing.T) {
	h := NewWSHub()
	// Not running; fill the buffered channel and confirm Broadcast never
	// blocks past capacity.
	for i := 0; i < 300; i++ {
		h.Broadcast(WSMessage{Type: "progress"})
	}
	if n := len(h.broadcast); n != cap(h.broadcast) {
		t.Errorf("broadcast queue: got %d, want full at %d", n, cap(h.broadcast))
	}
}

func TestWSHubRegisterUnregister(t *testing.T) {
	h := NewWSHub()
	go h.Run()

	c := &WSClient{hub: h, send: make(chan WSMessage, 1)}
	h.Register(c)

	deadline := time.After(time.Second)
	for h.ClientCount() != 1 {
		select {
		case <-deadline:
			t.Fatal("client never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	h.Broadcast(WSMessage{Type: "progress"})
	select {
	case msg := <-c.send:
		if msg.Type != "progress" {
			t.Errorf("got message type %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast never delivered")
	}

	h.Unregister(c)
	deadline = time.After(time.Second)
	for h.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("client never unregistered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
