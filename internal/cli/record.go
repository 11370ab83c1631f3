package cli

import (
	"fmt"
	"time"

	"github.com/anfask/quitlog/internal/reconcile"
)

type RecordCmd struct {
	Date   string `arg:"" optional:"" help:"Date to record (YYYY-MM-DD or 'today')." default:"today"`
	Smoked bool   `help:"Mark the day as smoked. Without this flag the day is recorded smoke-free."`
}

func (c *RecordCmd) Run(ctx *Context) error {
	user, err := requireUser(ctx)
	if err != nil {
		return err
	}

	lock, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	date := c.Date
	if date == "today" {
		date = reconcile.Today()
	}
	if _, err := reconcile.ParseDate(date); err != nil {
		return fmt.Errorf("invalid date, use YYYY-MM-DD or 'today': %w", err)
	}
	if date > reconcile.Today() {
		return fmt.Errorf("cannot record a future date")
	}
	if date < user.RegistrationDate {
		return fmt.Errorf("date %s is before the quit date %s", date, user.RegistrationDate)
	}

	manually := date != reconcile.Today()
	progress, err := ctx.Tracker.RecordDay(user.Username, date, c.Smoked, manually, time.Now())
	if err != nil {
		return err
	}

	if c.Smoked {
		fmt.Printf("Recorded %s as smoked. Streak is now %d day(s).\n", date, progress.ConsecutiveDaysWithoutSmoking)
	} else {
		fmt.Printf("Recorded %s as smoke-free. Streak is now %d day(s).\n", date, progress.ConsecutiveDaysWithoutSmoking)
	}
	return nil
}
