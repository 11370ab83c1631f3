package cli

import (
	"fmt"
	"os"

	"github.com/anfask/quitlog/internal/backup"
	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/proclock"
	"github.com/anfask/quitlog/internal/storage"
	"github.com/anfask/quitlog/internal/tracker"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Tracker
	User    string
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		fmt.Fprintf(os.Stderr, "Warning: automatic backup failed: %v\n", err)
	}
}

// AcquireLock takes the single-writer lock for the store file. Commands that
// write records call this before touching the store.
func (c *Context) AcquireLock() (*proclock.Lock, error) {
	return proclock.Acquire(c.Store.GetConfigPath())
}

// requireUser loads the store and fetches the user named by the --user flag.
func requireUser(ctx *Context) (models.User, error) {
	if err := ctx.Store.Load(); err != nil {
		return models.User{}, err
	}
	user, err := ctx.Store.GetUser(ctx.User)
	if err != nil {
		return models.User{}, fmt.Errorf("user %q: %w (run 'quitlog init' to create one)", ctx.User, err)
	}
	return user, nil
}
