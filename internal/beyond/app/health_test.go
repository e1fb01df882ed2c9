package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/beyondtyping/beyond/internal/beyond/app"
	"github.com/beyondtyping/beyond/internal/beyond/clarify"
	"github.com/beyondtyping/beyond/internal/beyond/store"
)

type fixedStatus struct{ s app.Status }

func (f fixedStatus) Status() app.Status { return f.s }

type failingCycles struct{}

func (failingCycles) RecentCycles(context.Context, int) ([]store.Cycle, error) {
	return nil, errors.New("disk on fire")
}

func (failingCycles) CycleStats(context.Context, time.Time) ([]store.IntentCount, error) {
	return nil, errors.New("disk on fire")
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealthServer_Health(t *testing.T) {
	hs := app.NewHealthServer("127.0.0.1:0", nil, nil)

	w := get(t, hs, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %v", resp["status"])
	}
}

func TestHealthServer_Status(t *testing.T) {
	status := app.Status{
		Transport:           "console",
		ClassifierAvailable: true,
		ClarificationState:  "awaiting_clarification",
		Pending:             &clarify.Pending{Intent: "file_delete", Slot: "file", Prompt: "Which file would you like to delete?"},
	}
	hs := app.NewHealthServer("127.0.0.1:0", fixedStatus{status}, nil)

	w := get(t, hs, "/status")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Status  string     `json:"status"`
		Runtime app.Status `json:"runtime"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "ok" || !resp.Runtime.ClassifierAvailable {
		t.Errorf("unexpected status %+v", resp)
	}
	if resp.Runtime.Pending == nil || resp.Runtime.Pending.Slot != "file" {
		t.Errorf("pending clarification not reported: %+v", resp.Runtime.Pending)
	}
}

func TestHealthServer_StatusIntentStats(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "beyond.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	old := store.Cycle{ID: "c_old", StartedAt: time.Now().Add(-time.Hour), Utterance: "stop", Kind: "dispatched", Intent: "utility_stop", Success: true}
	if err := s.RecordCycle(ctx, old); err != nil {
		t.Fatalf("RecordCycle: %v", err)
	}
	hs := app.NewHealthServer("127.0.0.1:0", nil, s)
	for i, c := range []store.Cycle{
		{Utterance: "go to documents", Intent: "navigate_folder", Success: true},
		{Utterance: "go to downloads", Intent: "navigate_folder", Success: false},
		{Utterance: "what time is it", Intent: "utility_time", Success: true},
		{Utterance: "lovely weather", Kind: "unresolved"},
	} {
		c.ID = fmt.Sprintf("c_%d", i)
		c.StartedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
		if c.Kind == "" {
			c.Kind = "dispatched"
		}
		if err := s.RecordCycle(ctx, c); err != nil {
			t.Fatalf("RecordCycle: %v", err)
		}
	}

	w := get(t, hs, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		IntentStats []struct {
			Intent string `json:"intent"`
			Total  int    `json:"total"`
			Failed int    `json:"failed"`
		} `json:"intent_stats"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	got := map[string][2]int{}
	for _, st := range resp.IntentStats {
		got[st.Intent] = [2]int{st.Total, st.Failed}
	}
	want := map[string][2]int{"navigate_folder": {2, 1}, "utility_time": {1, 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("intent stats (-want +got):\n%s", diff)
	}

	if w := get(t, app.NewHealthServer("127.0.0.1:0", nil, failingCycles{}), "/status"); w.Code != http.StatusOK {
		t.Errorf("failing journal: got %d, want 200", w.Code)
	}
}

func TestHealthServer_Cycles(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "beyond.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, utt := range []string{"help", "what time is it", "stop"} {
		c := store.Cycle{
			ID:        "c_" + utt,
			StartedAt: base.Add(time.Duration(i) * time.Second),
			Utterance: utt,
			Kind:      "dispatched",
			Success:   true,
		}
		if err := s.RecordCycle(ctx, c); err != nil {
			t.Fatalf("RecordCycle: %v", err)
		}
	}
	hs := app.NewHealthServer("127.0.0.1:0", nil, s)

	w := get(t, hs, "/cycles?limit=2")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
	}
	var cycles []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&cycles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(cycles) != 2 || cycles[0]["utterance"] != "stop" {
		t.Errorf("unexpected cycles %v", cycles)
	}

	if w := get(t, hs, "/cycles?limit=zero"); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d", w.Code)
	}
}

func TestHealthServer_CyclesUnavailable(t *testing.T) {
	if w := get(t, app.NewHealthServer("127.0.0.1:0", nil, nil), "/cycles"); w.Code != http.StatusNotFound {
		t.Errorf("no journal: got %d, want 404", w.Code)
	}
	if w := get(t, app.NewHealthServer("127.0.0.1:0", nil, failingCycles{}), "/cycles"); w.Code != http.StatusInternalServerError {
		t.Errorf("failing journal: got %d, want 500", w.Code)
	}
}
