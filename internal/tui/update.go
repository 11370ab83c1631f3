package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/anfask/quitlog/internal/backfill"
	"github.com/anfask/quitlog/internal/reconcile"
)

// backfillSavedMsg is emitted when an asynchronous backfill commit finishes.
type backfillSavedMsg struct {
	err error
}

func (m Model) commitBackfillCmd(responses map[string]bool) tea.Cmd {
	return func() tea.Msg {
		_, err := m.tracker.CommitBackfill(m.username, responses, time.Now())
		return backfillSavedMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.state == StateSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case backfillSavedMsg:
		m.state = StateDashboard
		if msg.err != nil {
			// The completed session and its answers are kept; pressing
			// the backfill key retries the commit with them.
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.session = nil
		m.errMsg = ""
		if err := m.refresh(); err != nil {
			m.errMsg = err.Error()
		}
		return m, nil
	}

	switch m.state {
	case StateSetup:
		return m.updateSetup(msg)
	case StateDashboard:
		return m.updateDashboard(msg)
	case StateDailyQuestion:
		return m.updateDailyQuestion(msg)
	case StateBackfill:
		return m.updateBackfill(msg)
	case StateConfirmSkip:
		return m.updateConfirmSkip(msg)
	}

	return m, nil
}

func (m Model) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if err := m.createUser(); err != nil {
			m.errMsg = err.Error()
			m.setup = &SetupFormModel{QuitDate: reconcile.Today()}
			m.form = newSetupForm(m.setup, m.username)
			return m, m.form.Init()
		}
		m.errMsg = ""
		m.state = StateDashboard
		return m, nil
	}
	if m.form.State == huh.StateAborted {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

func (m Model) updateDashboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(keyMsg, m.keys.Answer):
		if !m.todayAnswered() {
			m.errMsg = ""
			m.state = StateDailyQuestion
		}

	case key.Matches(keyMsg, m.keys.Backfill):
		if m.session != nil && m.session.State() == backfill.StateCompleted {
			// A completed session whose commit failed; retry it.
			m.errMsg = ""
			return m.startCommit()
		}
		if len(m.missing) == 0 {
			return m, nil
		}
		session, err := backfill.NewSession(m.user.RegistrationDate, m.progress.LastRecordedDate, m.user.DailyRecords, reconcile.Today())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if session.State() == backfill.StateCompleted {
			return m, nil
		}
		m.errMsg = ""
		m.session = session
		m.state = StateBackfill

	case key.Matches(keyMsg, m.keys.Recalc):
		if _, err := m.tracker.Recalculate(m.username); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		if err := m.refresh(); err != nil {
			m.errMsg = err.Error()
		}
	}

	return m, nil
}

func (m Model) updateDailyQuestion(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes), key.Matches(keyMsg, m.keys.No):
		smoked := key.Matches(keyMsg, m.keys.Yes)
		if _, err := m.tracker.RecordDay(m.username, reconcile.Today(), smoked, false, time.Now()); err != nil {
			m.errMsg = err.Error()
			m.state = StateDashboard
			return m, nil
		}
		m.errMsg = ""
		m.state = StateDashboard
		if err := m.refresh(); err != nil {
			m.errMsg = err.Error()
		}

	case key.Matches(keyMsg, m.keys.Escape):
		m.state = StateDashboard

	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateBackfill(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes), key.Matches(keyMsg, m.keys.No):
		m.session.Answer(key.Matches(keyMsg, m.keys.Yes))
		if m.session.State() == backfill.StateCompleted {
			return m.startCommit()
		}

	case key.Matches(keyMsg, m.keys.Back):
		m.session.Back()

	case key.Matches(keyMsg, m.keys.Skip):
		m.state = StateConfirmSkip

	case key.Matches(keyMsg, m.keys.Escape):
		m.session.Cancel()
		m.session = nil
		m.state = StateDashboard
	}

	return m, nil
}

func (m Model) updateConfirmSkip(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.session.SkipRemaining()
		return m.startCommit()

	case key.Matches(keyMsg, m.keys.No), key.Matches(keyMsg, m.keys.Escape):
		m.state = StateBackfill
	}

	return m, nil
}

// startCommit hands the completed session's responses to the tracker and
// shows the spinner until the merge lands.
func (m Model) startCommit() (tea.Model, tea.Cmd) {
	responses := m.session.Responses()
	m.state = StateSaving
	return m, tea.Batch(m.spinner.Tick, m.commitBackfillCmd(responses))
}
