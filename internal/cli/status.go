package cli

import (
	"fmt"

	"github.com/anfask/quitlog/internal/reconcile"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	user, err := requireUser(ctx)
	if err != nil {
		return err
	}

	_, progress, missing, err := ctx.Tracker.Overview(user.Username, reconcile.Today())
	if err != nil {
		return err
	}

	fmt.Printf("%s (quit date %s)\n\n", user.Username, user.RegistrationDate)
	fmt.Printf("  Current streak:        %d days\n", progress.ConsecutiveDaysWithoutSmoking)
	fmt.Printf("  Days without smoking:  %d\n", progress.TotalDaysWithoutSmoking)
	fmt.Printf("  Days smoked:           %d\n", progress.TotalDaysSmoked)
	fmt.Printf("  Net smoke-free days:   %d\n", progress.NetDaysWithoutSmoking)
	fmt.Printf("  Cigarettes avoided:    %d\n", progress.TotalCigarettesAvoided)
	fmt.Printf("  Money saved:           %.2f\n", progress.TotalMoneySaved)
	if progress.LastRecordedDate != "" {
		fmt.Printf("  Last recorded:         %s\n", progress.LastRecordedDate)
	}

	if len(missing) > 0 {
		fmt.Printf("\n%d day(s) before today have no answer yet:\n", len(missing))
		for _, date := range missing {
			fmt.Printf("  %s\n", date)
		}
		fmt.Println("\nRun 'quitlog backfill' or launch the TUI to fill them in.")
	}

	return nil
}
