// Package legacy imports users from the old counter-based tracking into the
// record-map system. The old system stored only a daysWithoutSmoking number;
// the import synthesizes a per-day record map from it so the reconciliation
// engine can take over as the single source of truth.
package legacy

import (
	"errors"
	"fmt"
	"time"

	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/reconcile"
	"github.com/anfask/quitlog/internal/storage"
)

// NeedsImport reports whether the user still runs on the old counter: not
// yet marked migrated and without any daily records.
func NeedsImport(user models.User) bool {
	return !user.Migrated && len(user.DailyRecords) == 0
}

// SynthesizeRecords builds a record map covering registrationDate..today
// from the old consecutive-days counter. The most recent daysWithoutSmoking
// days become recorded smoke-free entries; everything earlier becomes an
// unrecorded placeholder the engine treats per its gap policy.
func SynthesizeRecords(registrationDate, today string, daysWithoutSmoking int, now time.Time) (map[string]models.DailyRecord, error) {
	all, err := reconcile.DatesBetween(registrationDate, today)
	if err != nil {
		return nil, err
	}

	if daysWithoutSmoking < 0 {
		daysWithoutSmoking = 0
	}
	if daysWithoutSmoking > len(all) {
		daysWithoutSmoking = len(all)
	}

	records := make(map[string]models.DailyRecord, len(all))
	cut := len(all) - daysWithoutSmoking
	for i, date := range all {
		records[date] = models.DailyRecord{
			Date:      date,
			Smoked:    false,
			Recorded:  i >= cut,
			Timestamp: now,
		}
	}
	return records, nil
}

// ImportUser migrates one user. Already-migrated users are left alone (nil
// error); the synthesized map and the recomputed derived fields are
// persisted in one merge together with the migration markers.
func ImportUser(store storage.Provider, username string, policy reconcile.GapPolicy, now time.Time) error {
	user, err := store.GetUser(username)
	if err != nil {
		return err
	}

	if !NeedsImport(user) {
		return nil
	}
	if user.RegistrationDate == "" {
		return fmt.Errorf("user %s has no registration date", username)
	}

	today := reconcile.FormatDate(now)
	records, err := SynthesizeRecords(user.RegistrationDate, today, user.Progress.ConsecutiveDaysWithoutSmoking, now)
	if err != nil {
		return fmt.Errorf("failed to synthesize records for %s: %w", username, err)
	}

	progress := reconcile.CalculateProgress(records, user.DailyCigarettes, user.CigarettePrice, policy)

	migrated := true
	patch := storage.UserPatch{
		DailyRecords:  records,
		Progress:      &progress,
		Migrated:      &migrated,
		MigrationDate: &now,
	}
	if err := store.MergeUser(username, patch); err != nil {
		return fmt.Errorf("failed to save migrated data for %s: %w", username, err)
	}
	return nil
}

// ImportAll migrates every stored user, continuing past individual
// failures. Users that do not need migration count as successes.
func ImportAll(store storage.Provider, policy reconcile.GapPolicy, now time.Time) (migrated, failed int, err error) {
	usernames, err := store.ListUsernames()
	if err != nil {
		return 0, 0, err
	}

	for _, username := range usernames {
		if err := ImportUser(store, username, policy, now); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			failed++
			continue
		}
		migrated++
	}
	return migrated, failed, nil
}
