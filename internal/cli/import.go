package cli

import (
	"fmt"
	"time"

	"github.com/anfask/quitlog/internal/legacy"
)

// ImportCmd migrates users from the old counter-based tracking into the
// per-day record map. A backup is taken first; the migration rewrites the
// user's record history.
type ImportCmd struct {
	All bool `help:"Migrate every stored user instead of just --user."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	lock, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer lock.Release()

	ctx.PerformAutomaticBackup()

	now := time.Now()
	policy := ctx.Tracker.Policy()

	if c.All {
		migrated, failed, err := legacy.ImportAll(ctx.Store, policy, now)
		if err != nil {
			return err
		}
		fmt.Printf("Migration finished: %d user(s) processed, %d failed.\n", migrated, failed)
		if failed > 0 {
			return fmt.Errorf("%d user(s) could not be migrated", failed)
		}
		return nil
	}

	user, err := ctx.Store.GetUser(ctx.User)
	if err != nil {
		return err
	}
	if !legacy.NeedsImport(user) {
		fmt.Printf("User %q is already on record-based tracking.\n", ctx.User)
		return nil
	}

	if err := legacy.ImportUser(ctx.Store, ctx.User, policy, now); err != nil {
		return err
	}
	fmt.Printf("Migrated user %q to record-based tracking.\n", ctx.User)
	return nil
}
