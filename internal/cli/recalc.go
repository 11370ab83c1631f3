package cli

import "fmt"

type RecalcCmd struct{}

func (c *RecalcCmd) Run(ctx *Context) error {
	user, err := requireUser(ctx)
	if err != nil {
		return err
	}

	lock, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	progress, err := ctx.Tracker.Recalculate(user.Username)
	if err != nil {
		return err
	}

	fmt.Println("Recalculated derived metrics from daily records:")
	fmt.Printf("  Current streak:        %d days\n", progress.ConsecutiveDaysWithoutSmoking)
	fmt.Printf("  Days without smoking:  %d\n", progress.TotalDaysWithoutSmoking)
	fmt.Printf("  Days smoked:           %d\n", progress.TotalDaysSmoked)
	fmt.Printf("  Cigarettes avoided:    %d\n", progress.TotalCigarettesAvoided)
	fmt.Printf("  Money saved:           %.2f\n", progress.TotalMoneySaved)
	return nil
}
