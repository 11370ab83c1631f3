package backfill

import (
	"testing"
	"time"

	"github.com/anfask/quitlog/internal/models"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	// Registration Jan 1, nothing recorded, today Jan 5: missing Jan 1-4.
	s, err := NewSession("2025-01-01", "", map[string]models.DailyRecord{}, "2025-01-05")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func TestNewSession_NoMissingDaysCompletesImmediately(t *testing.T) {
	records := map[string]models.DailyRecord{
		"2025-01-04": {Date: "2025-01-04", Recorded: true, Timestamp: time.Now()},
	}
	s, err := NewSession("2025-01-01", "2025-01-04", records, "2025-01-05")
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if s.State() != StateCompleted {
		t.Errorf("Expected StateCompleted, got %v", s.State())
	}
	if len(s.Responses()) != 0 {
		t.Errorf("Expected no responses, got %v", s.Responses())
	}
}

func TestSession_AnswerWalksAllDates(t *testing.T) {
	s := newTestSession(t)

	if step, total := s.Step(); step != 1 || total != 4 {
		t.Errorf("Expected step 1/4, got %d/%d", step, total)
	}

	answers := []bool{false, true, false, false}
	for i, smoked := range answers {
		date, ok := s.Current()
		if !ok {
			t.Fatalf("Expected a current date at step %d", i+1)
		}
		if want := []string{"2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04"}[i]; date != want {
			t.Errorf("Step %d: expected %s, got %s", i+1, want, date)
		}
		s.Answer(smoked)
	}

	if s.State() != StateCompleted {
		t.Fatalf("Expected StateCompleted after last answer, got %v", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report not-ok once completed")
	}

	responses := s.Responses()
	if len(responses) != 4 {
		t.Fatalf("Expected 4 responses, got %d", len(responses))
	}
	if !responses["2025-01-02"] {
		t.Error("Expected Jan 2 recorded as smoked")
	}
	if responses["2025-01-01"] || responses["2025-01-03"] || responses["2025-01-04"] {
		t.Error("Expected remaining days recorded as smoke-free")
	}
}

func TestSession_BackKeepsEarlierAnswer(t *testing.T) {
	s := newTestSession(t)

	if s.Back() {
		t.Error("Back on the first date should report false")
	}

	s.Answer(true)
	if !s.Back() {
		t.Fatal("Expected Back to succeed from the second date")
	}

	date, _ := s.Current()
	if date != "2025-01-01" {
		t.Errorf("Expected to be back on 2025-01-01, got %s", date)
	}
	if !s.Responses()["2025-01-01"] {
		t.Error("Earlier answer must survive going back")
	}

	// Re-answering overwrites.
	s.Answer(false)
	if s.Responses()["2025-01-01"] {
		t.Error("Expected re-answer to overwrite the earlier response")
	}
}

func TestSession_SkipRemainingFillsSmokeFree(t *testing.T) {
	s := newTestSession(t)

	s.Answer(true)
	s.SkipRemaining()

	if s.State() != StateCompleted {
		t.Fatalf("Expected StateCompleted, got %v", s.State())
	}

	responses := s.Responses()
	if len(responses) != 4 {
		t.Fatalf("Expected 4 responses, got %d", len(responses))
	}
	if !responses["2025-01-01"] {
		t.Error("Explicit answer must not be overwritten by skip")
	}
	for _, date := range []string{"2025-01-02", "2025-01-03", "2025-01-04"} {
		if responses[date] {
			t.Errorf("Expected %s filled as smoke-free", date)
		}
	}
}

func TestSession_CancelDiscardsNothingButBlocksProgress(t *testing.T) {
	s := newTestSession(t)

	s.Answer(false)
	s.Cancel()

	if s.State() != StateCancelled {
		t.Fatalf("Expected StateCancelled, got %v", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Error("Current should report not-ok after cancel")
	}

	// Further input is ignored.
	s.Answer(true)
	s.SkipRemaining()
	if len(s.Responses()) != 1 {
		t.Errorf("Expected responses frozen at 1 after cancel, got %d", len(s.Responses()))
	}
}

func TestSession_RemainingCountsOnlyUnanswered(t *testing.T) {
	s := newTestSession(t)

	if got := s.Remaining(); got != 4 {
		t.Errorf("Expected 4 remaining at the start, got %d", got)
	}

	s.Answer(true)
	if got := s.Remaining(); got != 3 {
		t.Errorf("Expected 3 remaining after one answer, got %d", got)
	}

	// Going back re-presents an already-answered date; it must not count
	// as remaining since skipping would not overwrite it.
	if !s.Back() {
		t.Fatal("Expected Back to succeed")
	}
	if got := s.Remaining(); got != 3 {
		t.Errorf("Expected 3 remaining after going back, got %d", got)
	}

	s.SkipRemaining()
	if got := s.Remaining(); got != 0 {
		t.Errorf("Expected 0 remaining once completed, got %d", got)
	}
	if len(s.Responses()) != 4 {
		t.Errorf("Expected all 4 dates answered after skip, got %d", len(s.Responses()))
	}
}

func TestSession_ResponsesReturnsCopy(t *testing.T) {
	s := newTestSession(t)
	s.Answer(false)

	got := s.Responses()
	got["2025-01-01"] = true

	if s.Responses()["2025-01-01"] {
		t.Error("Mutating the returned map must not affect the session")
	}
}
