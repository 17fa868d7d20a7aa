package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"llm_request_events", "session_events", "attempt_events", "hint_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s: %v", table, err)
		}
	}
}

func TestOpenTwiceKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendHintEvent(ctx, HintEventData{SessionID: "s", SlotID: 1, Level: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var count int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM hint_events").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("hint events = %d, want 1", count)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestDefaultDBPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("SHERPA_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("SHERPA_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dataHome, "sherpa", "sherpa.db"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestLLMEvents_AppendQueryGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()
	start := time.Now().Add(-time.Second)

	for _, purpose := range []string{"skeleton", "review", "review"} {
		err := repo.AppendLLMRequest(ctx, LLMRequestEventData{
			Provider:     "mock",
			Model:        "mock-model",
			Purpose:      purpose,
			InputTokens:  100,
			OutputTokens: 20,
			LatencyMs:    30,
			Success:      true,
			RequestBody:  "[user]\nhello",
			ResponseBody: `{"outcome":"correct"}`,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("events = %d, want 3", len(all))
	}
	if all[0].Sequence < all[1].Sequence {
		t.Errorf("events not newest first: %d before %d", all[0].Sequence, all[1].Sequence)
	}
	if all[0].Timestamp.Before(start) {
		t.Errorf("timestamp %v before test start", all[0].Timestamp)
	}

	reviews, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "review", Limit: 1})
	if err != nil {
		t.Fatalf("query purpose: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Purpose != "review" {
		t.Fatalf("filtered events = %+v", reviews)
	}

	got, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Purpose != "skeleton" || got.ResponseBody != `{"outcome":"correct"}` || !got.Success {
		t.Errorf("get = %+v", got)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestLLMUsageAggregates(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Model: "gpt-4o", Purpose: "review", InputTokens: 10, OutputTokens: 5, LatencyMs: 100},
		{Model: "gpt-4o", Purpose: "review", InputTokens: 30, OutputTokens: 15, LatencyMs: 300},
		{Model: "claude-sonnet-4", Purpose: "skeleton", InputTokens: 7, OutputTokens: 3, LatencyMs: 50},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("purposes = %d, want 2", len(byPurpose))
	}
	review := byPurpose[0]
	if review.Purpose != "review" || review.Calls != 2 || review.InputTokens != 40 || review.OutputTokens != 20 || review.AvgLatencyMs != 200 {
		t.Errorf("review usage = %+v", review)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gpt-4o" {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestAttemptEvents_OrderedBySequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "abc", Action: SessionStarted, Topic: "DPO", SlotCount: 5}); err != nil {
		t.Fatalf("session: %v", err)
	}
	for i, outcome := range []string{"needs_improvement", "correct"} {
		err := repo.AppendAttemptEvent(ctx, AttemptEventData{
			SessionID: "abc", SlotID: 2, Outcome: outcome, HintLevel: i,
		})
		if err != nil {
			t.Fatalf("attempt: %v", err)
		}
	}
	if err := repo.AppendAttemptEvent(ctx, AttemptEventData{SessionID: "other", SlotID: 1, Outcome: "correct"}); err != nil {
		t.Fatalf("attempt other: %v", err)
	}

	got, err := repo.QueryAttemptEvents(ctx, "abc")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("attempts = %d, want 2", len(got))
	}
	if got[0].Outcome != "needs_improvement" || got[1].Outcome != "correct" {
		t.Errorf("order = %s, %s", got[0].Outcome, got[1].Outcome)
	}
	// Session start took sequence 1.
	if got[0].Sequence != 2 {
		t.Errorf("first attempt sequence = %d, want 2", got[0].Sequence)
	}
}
