// Package tracker is the single write path for daily records: merge new
// entries into the record map, recompute the derived metrics through the
// reconciliation engine, and persist both in one atomic merge. The daily
// question, the backfill commit, the legacy import and the recalculation
// tool all go through here so the arithmetic cannot drift between callers.
package tracker

import (
	"fmt"
	"time"

	"github.com/anfask/quitlog/internal/models"
	"github.com/anfask/quitlog/internal/reconcile"
	"github.com/anfask/quitlog/internal/storage"
)

type Tracker struct {
	store  storage.Provider
	policy reconcile.GapPolicy
}

func New(store storage.Provider, policy reconcile.GapPolicy) *Tracker {
	if !policy.Valid() {
		policy = reconcile.GapTreatAsNonSmoking
	}
	return &Tracker{store: store, policy: policy}
}

// Overview is what a caller needs to drive the UI: the user document, fresh
// derived metrics, and the dates still missing an answer. storage.ErrNotFound
// propagates so the caller can redirect to setup.
func (t *Tracker) Overview(username, today string) (models.User, models.Progress, []string, error) {
	user, err := t.store.GetUser(username)
	if err != nil {
		return models.User{}, models.Progress{}, nil, err
	}

	progress := reconcile.CalculateProgress(user.DailyRecords, user.DailyCigarettes, user.CigarettePrice, t.policy)

	missing, err := reconcile.MissingDays(user.RegistrationDate, progress.LastRecordedDate, user.DailyRecords, today)
	if err != nil {
		return models.User{}, models.Progress{}, nil, fmt.Errorf("failed to compute missing days: %w", err)
	}

	return user, progress, missing, nil
}

// RecordDay stores one day's answer (the live daily question, or a single
// manual correction) and refreshes the derived fields in the same merge.
func (t *Tracker) RecordDay(username, date string, smoked, manually bool, now time.Time) (models.Progress, error) {
	if _, err := reconcile.ParseDate(date); err != nil {
		return models.Progress{}, err
	}

	user, err := t.store.GetUser(username)
	if err != nil {
		return models.Progress{}, err
	}

	merged := cloneRecords(user.DailyRecords)
	merged[date] = models.DailyRecord{
		Date:             date,
		Smoked:           smoked,
		Recorded:         true,
		RecordedManually: manually,
		Timestamp:        now,
	}

	progress := reconcile.CalculateProgress(merged, user.DailyCigarettes, user.CigarettePrice, t.policy)

	today := reconcile.FormatDate(now)
	patch := storage.UserPatch{
		DailyRecords:  map[string]models.DailyRecord{date: merged[date]},
		Progress:      &progress,
		LastCheckDate: &today,
	}
	if date == today {
		patch.TodaySmoking = &smoked
	}

	if err := t.store.MergeUser(username, patch); err != nil {
		return models.Progress{}, fmt.Errorf("failed to save daily record: %w", err)
	}
	return progress, nil
}

// CommitBackfill persists a completed backfill session: every response
// becomes a manually-recorded entry stamped with now, and the derived
// fields are recomputed from the merged map. Map entries and derived
// fields land in one atomic merge; on failure nothing is persisted and the
// caller's responses remain valid for retry.
func (t *Tracker) CommitBackfill(username string, responses map[string]bool, now time.Time) (models.Progress, error) {
	user, err := t.store.GetUser(username)
	if err != nil {
		return models.Progress{}, err
	}

	if len(responses) == 0 {
		return reconcile.CalculateProgress(user.DailyRecords, user.DailyCigarettes, user.CigarettePrice, t.policy), nil
	}

	newRecords := make(map[string]models.DailyRecord, len(responses))
	merged := cloneRecords(user.DailyRecords)
	for date, smoked := range responses {
		rec := models.DailyRecord{
			Date:             date,
			Smoked:           smoked,
			Recorded:         true,
			RecordedManually: true,
			Timestamp:        now,
		}
		newRecords[date] = rec
		merged[date] = rec
	}

	progress := reconcile.CalculateProgress(merged, user.DailyCigarettes, user.CigarettePrice, t.policy)

	today := reconcile.FormatDate(now)
	patch := storage.UserPatch{
		DailyRecords:  newRecords,
		Progress:      &progress,
		LastCheckDate: &today,
	}

	if err := t.store.MergeUser(username, patch); err != nil {
		return models.Progress{}, fmt.Errorf("failed to save backfill answers: %w", err)
	}
	return progress, nil
}

// Recalculate refreshes the persisted derived fields from the record map
// without touching any records. Maintenance/admin operation.
func (t *Tracker) Recalculate(username string) (models.Progress, error) {
	user, err := t.store.GetUser(username)
	if err != nil {
		return models.Progress{}, err
	}

	progress := reconcile.CalculateProgress(user.DailyRecords, user.DailyCigarettes, user.CigarettePrice, t.policy)

	patch := storage.UserPatch{Progress: &progress}
	if err := t.store.MergeUser(username, patch); err != nil {
		return models.Progress{}, fmt.Errorf("failed to save recalculated progress: %w", err)
	}
	return progress, nil
}

// Policy returns the gap policy this tracker reconciles with.
func (t *Tracker) Policy() reconcile.GapPolicy {
	return t.policy
}

func cloneRecords(records map[string]models.DailyRecord) map[string]models.DailyRecord {
	out := make(map[string]models.DailyRecord, len(records)+1)
	for date, rec := range records {
		out[date] = rec
	}
	return out
}
