package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/anfask/quitlog/internal/reconcile"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateSetup:
		content = m.viewSetup()
	case StateDashboard:
		content = m.viewDashboard()
	case StateDailyQuestion:
		content = m.viewDailyQuestion()
	case StateBackfill:
		content = m.viewBackfill()
	case StateConfirmSkip:
		content = m.viewConfirmSkip()
	case StateSaving:
		content = m.viewSaving()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("quitlog"),
		content,
		m.help.View(m),
	)
}

func (m Model) viewSetup() string {
	parts := []string{"Welcome! Let's set up your quit tracker.", "", m.form.View()}
	if m.errMsg != "" {
		parts = append(parts, "", dangerStyle.Render(m.errMsg))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewDashboard() string {
	stat := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	rows := []string{
		fmt.Sprintf("Hello, %s. Quit date: %s", m.user.Username, m.user.RegistrationDate),
		"",
		labelStyle.Render("Current streak") + streakStyle.Render(fmt.Sprintf("%d days", m.progress.ConsecutiveDaysWithoutSmoking)),
		stat("Days without smoking", fmt.Sprintf("%d", m.progress.TotalDaysWithoutSmoking)),
		stat("Days smoked", fmt.Sprintf("%d", m.progress.TotalDaysSmoked)),
		stat("Net smoke-free days", fmt.Sprintf("%d", m.progress.NetDaysWithoutSmoking)),
		stat("Cigarettes avoided", fmt.Sprintf("%d", m.progress.TotalCigarettesAvoided)),
		stat("Money saved", fmt.Sprintf("%.2f", m.progress.TotalMoneySaved)),
	}

	if m.progress.LastRecordedDate != "" {
		rows = append(rows, stat("Last recorded", m.progress.LastRecordedDate))
	}

	rows = append(rows, "")
	if m.todayAnswered() {
		rows = append(rows, faintStyle.Render("Today is already recorded."))
	} else {
		rows = append(rows, warnStyle.Render("Today's question is waiting. Press 'a' to answer."))
	}

	if m.session != nil {
		rows = append(rows, dangerStyle.Render("Your answers were not saved. Press 'b' to retry."))
	} else if n := len(m.missing); n > 0 {
		rows = append(rows, warnStyle.Render(fmt.Sprintf("%d unanswered day(s) before today. Press 'b' to fill them in.", n)))
	}

	if m.errMsg != "" {
		rows = append(rows, "", dangerStyle.Render(m.errMsg))
	}

	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewDailyQuestion() string {
	return lipgloss.Place(m.width, max(m.height-4, 10),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			fmt.Sprintf("Did you smoke today (%s)?", reconcile.Today()),
			"",
			"[y] Yes",
			"[n] No",
			"",
			faintStyle.Render("[esc] Not now"),
		),
	)
}

func (m Model) viewBackfill() string {
	date, ok := m.session.Current()
	if !ok {
		return ""
	}
	step, total := m.session.Step()

	return lipgloss.Place(m.width, max(m.height-4, 10),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			faintStyle.Render(fmt.Sprintf("Day %d of %d", step, total)),
			m.bar.ViewAs(float64(step-1)/float64(total)),
			"",
			fmt.Sprintf("Did you smoke on %s?", date),
			"",
			"[y] Yes",
			"[n] No",
			"",
			faintStyle.Render("[←] Previous  [s] Mark rest smoke-free  [esc] Cancel"),
		),
	)
}

func (m Model) viewConfirmSkip() string {
	return lipgloss.Place(m.width, max(m.height-4, 10),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			warnStyle.Render(fmt.Sprintf("Mark the remaining %d day(s) as smoke-free?", m.session.Remaining())),
			"",
			"[y] Yes",
			"[n] Go back",
		),
	)
}

func (m Model) viewSaving() string {
	return docStyle.Render(m.spinner.View() + " Saving your answers...")
}
