package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/anfask/quitlog/internal/backfill"
	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/reconcile"
	"github.com/anfask/quitlog/internal/storage"
	"github.com/anfask/quitlog/internal/tracker"
)

type SessionState int

const (
	StateSetup SessionState = iota
	StateDashboard
	StateDailyQuestion
	StateBackfill
	StateConfirmSkip
	StateSaving
)

type SetupFormModel struct {
	Username   string
	Cigarettes string
	Price      string
	QuitDate   string
}

type Model struct {
	store    storage.Provider
	tracker  *tracker.Tracker
	state    SessionState
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	bar      progress.Model
	form     *huh.Form
	setup    *SetupFormModel
	session  *backfill.Session
	username string
	user     models.User
	progress models.Progress
	missing  []string
	errMsg   string
	quitting bool
	width    int
	height   int
}

func NewModel(store storage.Provider, trk *tracker.Tracker, username string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		store:    store,
		tracker:  trk,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		bar:      progress.New(progress.WithDefaultGradient()),
		username: username,
	}

	if err := m.refresh(); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			m.state = StateSetup
			m.setup = &SetupFormModel{QuitDate: reconcile.Today()}
			m.form = newSetupForm(m.setup, username)
		} else {
			m.state = StateDashboard
			m.errMsg = err.Error()
		}
		return m
	}

	m.state = StateDashboard
	return m
}

// refresh reloads the user, the derived metrics and the missing dates.
func (m *Model) refresh() error {
	user, progress, missing, err := m.tracker.Overview(m.username, reconcile.Today())
	if err != nil {
		return err
	}
	m.user = user
	m.progress = progress
	m.missing = missing
	return nil
}

func newSetupForm(f *SetupFormModel, username string) *huh.Form {
	f.Username = username
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Value(&f.Username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("username is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Cigarettes per day (before quitting)").
				Value(&f.Cigarettes).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Price per cigarette").
				Value(&f.Price).
				Validate(func(s string) error {
					p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || p <= 0 {
						return fmt.Errorf("enter a positive price")
					}
					return nil
				}),
			huh.NewInput().
				Title("Quit date (YYYY-MM-DD)").
				Value(&f.QuitDate).
				Validate(func(s string) error {
					day, err := reconcile.ParseDate(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					if reconcile.FormatDate(day) > reconcile.Today() {
						return fmt.Errorf("quit date cannot be in the future")
					}
					return nil
				}),
		),
	)
}

// createUser persists the completed setup form as a new user.
func (m *Model) createUser() error {
	cigarettes, _ := strconv.Atoi(strings.TrimSpace(m.setup.Cigarettes))
	price, _ := strconv.ParseFloat(strings.TrimSpace(m.setup.Price), 64)

	user := models.User{
		ID:               uuid.New().String(),
		Username:         strings.TrimSpace(m.setup.Username),
		RegistrationDate: strings.TrimSpace(m.setup.QuitDate),
		DailyCigarettes:  cigarettes,
		CigarettePrice:   price,
		DailyRecords:     map[string]models.DailyRecord{},
		CreatedAt:        time.Now(),
	}

	if err := m.store.CreateUser(user); err != nil {
		return err
	}
	m.username = user.Username
	return m.refresh()
}

// todayAnswered reports whether today already has a recorded entry.
func (m Model) todayAnswered() bool {
	rec, ok := m.user.DailyRecords[reconcile.Today()]
	return ok && rec.Recorded
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case StateDailyQuestion:
		return []key.Binding{m.keys.Yes, m.keys.No, m.keys.Escape}
	case StateBackfill:
		return []key.Binding{m.keys.Yes, m.keys.No, m.keys.Back, m.keys.Skip, m.keys.Escape}
	case StateConfirmSkip:
		return []key.Binding{m.keys.Yes, m.keys.No}
	default:
		keys := []key.Binding{m.keys.Answer, m.keys.Quit, m.keys.Help}
		if len(m.missing) > 0 {
			keys = append(keys, m.keys.Backfill)
		}
		return keys
	}
}

func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Answer, m.keys.Backfill, m.keys.Recalc},
		{m.keys.Yes, m.keys.No, m.keys.Back, m.keys.Skip},
		{m.keys.Escape, m.keys.Help, m.keys.Quit},
	}
}

func (m Model) Init() tea.Cmd {
	if m.state == StateSetup {
		return m.form.Init()
	}
	return nil
}
