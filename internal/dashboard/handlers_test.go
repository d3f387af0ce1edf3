package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/adanbank/signal-sentinel/internal/audit"
	"github.com/adanbank/signal-sentinel/internal/config"
	"github.com/adanbank/signal-sentinel/internal/enrich"
	"github.com/adanbank/signal-sentinel/internal/logger"
	"github.com/adanbank/signal-sentinel/internal/store"
	"github.com/adanbank/signal-sentinel/internal/synth"
	"github.com/adanbank/signal-sentinel/internal/websocket"
)

func reviewSignal(id string) enrich.ReviewSignal {
	return enrich.ReviewSignal{
		ScoredSignal: enrich.ScoredSignal{
			AnonymizedRecord: synth.AnonymizedRecord{
				Record: synth.Record{
					SyntheticID: id,
					Timestamp:   "2026-01-01T00:00:00Z",
					RawText:     "masked post",
					SourceType:  "social_media",
					Category:    synth.CategoryUnset,
				},
			},
			ScenarioCategory:    "fee_complaint",
			ShadowReviewUrgency: enrich.UrgencyMedium,
		},
		ReasoningExplanation: "customers upset about fees",
		ReasoningConfidence:  0.65,
	}
}

func newTestServer(t *testing.T, signals []enrich.ReviewSignal) (*Server, *store.Store, *audit.MemoryLog) {
	t.Helper()
	review := store.New(filepath.Join(t.TempDir(), "review.json"), logger.Nop())
	if len(signals) > 0 {
		if _, err := review.Append(signals); err != nil {
			t.Fatal(err)
		}
	}

	auditLog := audit.NewMemoryLog()
	hub := websocket.NewHub(websocket.HubConfig{
		BroadcastSignals:     true,
		BroadcastResolutions: true,
	}, logger.Nop())
	go hub.Run()

	cfg := config.GetDefaults().Dashboard
	srv := NewServer(review, auditLog, nil, hub, "", cfg, logger.Nop())
	return srv, review, auditLog
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	rec := doRequest(t, srv, "GET", "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSignals(t *testing.T) {
	srv, _, _ := newTestServer(t, []enrich.ReviewSignal{reviewSignal("id-1"), reviewSignal("id-2")})

	rec := doRequest(t, srv, "GET", "/api/signals", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Signals []enrich.ReviewSignal `json:"signals"`
		Count   int                   `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Signals) != 2 {
		t.Errorf("count = %d, signals = %d, want 2", resp.Count, len(resp.Signals))
	}
}

func TestResolveSignal(t *testing.T) {
	t.Run("approve removes and audits", func(t *testing.T) {
		srv, review, auditLog := newTestServer(t,
			[]enrich.ReviewSignal{reviewSignal("id-1"), reviewSignal("id-2")})

		rec := doRequest(t, srv, "POST", "/api/resolve-signal",
			map[string]string{"synthetic_id": "id-1", "action": "approve"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		remaining, err := store.ReadAs[enrich.ReviewSignal](review)
		if err != nil {
			t.Fatal(err)
		}
		if len(remaining) != 1 || remaining[0].SyntheticID != "id-2" {
			t.Errorf("remaining = %+v, want only id-2", remaining)
		}

		entries, err := auditLog.List(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].SyntheticID != "id-1" || entries[0].Action != audit.ActionApprove {
			t.Errorf("audit entries = %+v", entries)
		}
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		srv, _, _ := newTestServer(t, []enrich.ReviewSignal{reviewSignal("id-1")})
		rec := doRequest(t, srv, "POST", "/api/resolve-signal",
			map[string]string{"synthetic_id": "ghost", "action": "decline"})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("invalid action is 400", func(t *testing.T) {
		srv, _, _ := newTestServer(t, []enrich.ReviewSignal{reviewSignal("id-1")})
		rec := doRequest(t, srv, "POST", "/api/resolve-signal",
			map[string]string{"synthetic_id": "id-1", "action": "shred"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing body is 400", func(t *testing.T) {
		srv, _, _ := newTestServer(t, nil)
		rec := doRequest(t, srv, "POST", "/api/resolve-signal", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAuditLogEndpoint(t *testing.T) {
	srv, _, auditLog := newTestServer(t, []enrich.ReviewSignal{reviewSignal("id-1")})

	if err := auditLog.Record(context.Background(), audit.NewEntry("id-0", audit.ActionDecline)); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(t, srv, "GET", "/api/audit-log?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Entries []audit.Entry `json:"entries"`
		Count   int           `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || resp.Entries[0].SyntheticID != "id-0" {
		t.Errorf("unexpected audit response: %+v", resp)
	}
}
