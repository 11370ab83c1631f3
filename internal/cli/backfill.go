package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anfask/quitlog/internal/reconcile"
)

// BackfillCmd answers every missing day as smoke-free in one merge. Per-day
// answers belong in the TUI; the CLI covers the common "I just forgot to open
// the app" case.
type BackfillCmd struct {
	Yes bool `help:"Skip the confirmation prompt." short:"y"`
}

func (c *BackfillCmd) Run(ctx *Context) error {
	user, err := requireUser(ctx)
	if err != nil {
		return err
	}

	lock, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	_, progress, missing, err := ctx.Tracker.Overview(user.Username, reconcile.Today())
	if err != nil {
		return err
	}

	if len(missing) == 0 {
		fmt.Println("No missing days. Nothing to backfill.")
		return nil
	}

	fmt.Printf("%d day(s) between %s and today have no answer:\n", len(missing), firstOr(missing, progress.LastRecordedDate))
	for _, date := range missing {
		fmt.Printf("  %s\n", date)
	}

	if !c.Yes {
		fmt.Print("\nMark all of them as smoke-free? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Backfill cancelled.")
			return nil
		}
	}

	responses := make(map[string]bool, len(missing))
	for _, date := range missing {
		responses[date] = false
	}

	newProgress, err := ctx.Tracker.CommitBackfill(user.Username, responses, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %d day(s) as smoke-free. Streak is now %d day(s).\n", len(missing), newProgress.ConsecutiveDaysWithoutSmoking)
	return nil
}

func firstOr(dates []string, fallback string) string {
	if len(dates) > 0 {
		return dates[0]
	}
	return fallback
}
