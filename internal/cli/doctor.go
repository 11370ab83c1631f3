package cli

import (
	"fmt"
	"time"

	"github.com/anfask/quitlog/internal/backup"
	"github.com/anfask/quitlog/internal/proclock"
	"github.com/anfask/quitlog/internal/reconcile"
	"github.com/anfask/quitlog/internal/storage"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	storeReachable := false

	// Check 1: store reachable
	if err := checkStoreReachable(ctx); err != nil {
		fmt.Printf("❌ Store reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	// Check 2: schema version valid
	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	// Check 3: record consistency (only if the store is reachable)
	if storeReachable {
		if err := checkRecordConsistency(ctx); err != nil {
			fmt.Printf("❌ Record consistency: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Record consistency: OK\n")
		}
	} else {
		fmt.Printf("⊘ Record consistency: SKIPPED (store not reachable)\n")
	}

	// Check 4: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 5: lockfile state (warning only)
	if err := checkLockfile(ctx); err != nil {
		fmt.Printf("⚠ Lockfile: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Lockfile: OK\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}

	return nil
}

func checkSchemaVersion(ctx *Context) error {
	sqliteStore, ok := ctx.Store.(*storage.SQLiteStore)
	if !ok {
		// JSON store doesn't have a schema version
		return nil
	}

	current, supported, err := sqliteStore.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > supported {
		return fmt.Errorf("store schema version (%d) is newer than supported version (%d)", current, supported)
	}

	return nil
}

// checkRecordConsistency walks every user's record map looking for entries
// that would confuse the reconciliation engine.
func checkRecordConsistency(ctx *Context) error {
	usernames, err := ctx.Store.ListUsernames()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	today := reconcile.Today()
	userIDs := make(map[string]string)

	for _, username := range usernames {
		user, err := ctx.Store.GetUser(username)
		if err != nil {
			return fmt.Errorf("failed to load user %q: %w", username, err)
		}

		if user.ID != "" {
			if other, ok := userIDs[user.ID]; ok {
				return fmt.Errorf("duplicate user ID %s shared by %q and %q", user.ID, other, username)
			}
			userIDs[user.ID] = username
		}

		if user.RegistrationDate != "" {
			if _, err := reconcile.ParseDate(user.RegistrationDate); err != nil {
				return fmt.Errorf("user %q has an invalid registration date %q", username, user.RegistrationDate)
			}
		}

		for date, rec := range user.DailyRecords {
			if _, err := reconcile.ParseDate(date); err != nil {
				return fmt.Errorf("user %q has a record under invalid date key %q", username, date)
			}
			if rec.Date != "" && rec.Date != date {
				return fmt.Errorf("user %q record keyed %q carries mismatched date %q", username, date, rec.Date)
			}
			if date > today {
				return fmt.Errorf("user %q has a record in the future: %s", username, date)
			}
		}
	}

	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'quitlog backup create'")
	}

	return nil
}

func checkLockfile(ctx *Context) error {
	pid, live, stale := proclock.Inspect(ctx.Store.GetConfigPath())
	if live {
		return fmt.Errorf("store is locked by a running quitlog process (pid %d)", pid)
	}
	if stale {
		return fmt.Errorf("stale lockfile found at %s.lock - it will be taken over on the next write", ctx.Store.GetConfigPath())
	}
	return nil
}

func checkClockTimezone() error {
	// Check if system time is reasonable
	now := time.Now()

	// Check if time is in a reasonable range (after 2020 and before 2100)
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// Check if timezone is set
	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		// This might be intentional, so just note it
		fmt.Printf("   Note: timezone is UTC\n")
	}

	return nil
}
