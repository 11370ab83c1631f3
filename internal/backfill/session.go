// Package backfill implements the questionnaire state machine that walks a
// user through answering "did you smoke?" for each day missing from their
// record map. All session state lives in memory; nothing is persisted until
// the caller commits the collected responses in one merge.
package backfill

import (
	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/reconcile"
)

type State int

const (
	StatePresenting State = iota
	StateCompleted
	StateCancelled
)

// Session walks the missing dates one at a time, collecting a boolean
// answer per date. Going back does not discard answers already given.
type Session struct {
	missing   []string
	index     int
	responses map[string]bool
	state     State
}

// NewSession computes the missing dates for the user and positions the
// session on the first one. With no missing dates the session starts in
// StateCompleted with nothing to commit.
func NewSession(registrationDate, lastRecordedDate string, records map[string]models.DailyRecord, today string) (*Session, error) {
	missing, err := reconcile.MissingDays(registrationDate, lastRecordedDate, records, today)
	if err != nil {
		return nil, err
	}

	s := &Session{
		missing:   missing,
		responses: make(map[string]bool, len(missing)),
		state:     StatePresenting,
	}
	if len(missing) == 0 {
		s.state = StateCompleted
	}
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

// Current returns the date being presented. ok is false once the session
// has completed or been cancelled.
func (s *Session) Current() (date string, ok bool) {
	if s.state != StatePresenting {
		return "", false
	}
	return s.missing[s.index], true
}

// Step reports the 1-based position and the total number of missing dates.
func (s *Session) Step() (step, total int) {
	return s.index + 1, len(s.missing)
}

// Answer records the response for the current date and advances. Answering
// the last date completes the session.
func (s *Session) Answer(smoked bool) {
	if s.state != StatePresenting {
		return
	}

	s.responses[s.missing[s.index]] = smoked
	if s.index < len(s.missing)-1 {
		s.index++
	} else {
		s.state = StateCompleted
	}
}

// Back steps to the previous date. Returns false when already on the first.
func (s *Session) Back() bool {
	if s.state != StatePresenting || s.index == 0 {
		return false
	}
	s.index--
	return true
}

// Remaining reports how many dates from the current one onward have no
// answer yet. SkipRemaining would fill exactly these.
func (s *Session) Remaining() int {
	if s.state != StatePresenting {
		return 0
	}

	remaining := 0
	for _, date := range s.missing[s.index:] {
		if _, ok := s.responses[date]; !ok {
			remaining++
		}
	}
	return remaining
}

// SkipRemaining fills every unanswered remaining date with smoked=false and
// completes the session.
func (s *Session) SkipRemaining() {
	if s.state != StatePresenting {
		return
	}

	for _, date := range s.missing[s.index:] {
		if _, ok := s.responses[date]; !ok {
			s.responses[date] = false
		}
	}
	s.state = StateCompleted
}

// Cancel abandons the session. Collected responses are kept in memory but
// must not be persisted.
func (s *Session) Cancel() {
	if s.state == StatePresenting {
		s.state = StateCancelled
	}
}

// Responses returns a copy of the answers collected so far, keyed by date.
func (s *Session) Responses() map[string]bool {
	out := make(map[string]bool, len(s.responses))
	for date, smoked := range s.responses {
		out[date] = smoked
	}
	return out
}

// Missing returns the dates this session covers, ascending.
func (s *Session) Missing() []string {
	out := make([]string, len(s.missing))
	copy(out, s.missing)
	return out
}
