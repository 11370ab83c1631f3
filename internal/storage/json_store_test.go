package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anfask/quitlog/internal/models"
)

func newTestJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quitlog.json")
	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store
}

func testUser(username string) models.User {
	return models.User{
		ID:               "id-" + username,
		Username:         username,
		RegistrationDate: "2025-01-01",
		DailyCigarettes:  20,
		CigarettePrice:   0.5,
		DailyRecords:     map[string]models.DailyRecord{},
		CreatedAt:        time.Now(),
	}
}

func TestJSONStore_LoadWithoutInit(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := store.Load(); err == nil {
		t.Error("Expected Load to fail before Init")
	}
}

func TestJSONStore_InitTwiceFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quitlog.json")
	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Init(); err == nil {
		t.Error("Expected second Init to fail")
	}
}

func TestJSONStore_CreateAndGetUser(t *testing.T) {
	store := newTestJSONStore(t)

	if err := store.CreateUser(testUser("alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := store.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Username != "alice" || user.DailyCigarettes != 20 {
		t.Errorf("Unexpected user: %+v", user)
	}

	if err := store.CreateUser(testUser("alice")); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists, got %v", err)
	}
	if _, err := store.GetUser("bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestJSONStore_MergeUser_RecordsMergePerDate(t *testing.T) {
	store := newTestJSONStore(t)
	if err := store.CreateUser(testUser("alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := map[string]models.DailyRecord{
		"2025-01-01": {Date: "2025-01-01", Smoked: false, Recorded: true, Timestamp: time.Now()},
		"2025-01-02": {Date: "2025-01-02", Smoked: true, Recorded: true, Timestamp: time.Now()},
	}
	if err := store.MergeUser("alice", UserPatch{DailyRecords: first}); err != nil {
		t.Fatalf("MergeUser failed: %v", err)
	}

	// Second patch adds one date and overwrites another; untouched dates stay.
	second := map[string]models.DailyRecord{
		"2025-01-02": {Date: "2025-01-02", Smoked: false, Recorded: true, RecordedManually: true, Timestamp: time.Now()},
		"2025-01-03": {Date: "2025-01-03", Smoked: false, Recorded: true, Timestamp: time.Now()},
	}
	if err := store.MergeUser("alice", UserPatch{DailyRecords: second}); err != nil {
		t.Fatalf("MergeUser failed: %v", err)
	}

	user, err := store.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if len(user.DailyRecords) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(user.DailyRecords))
	}
	if user.DailyRecords["2025-01-02"].Smoked {
		t.Error("Expected Jan 2 overwritten to smoke-free")
	}
	if !user.DailyRecords["2025-01-02"].RecordedManually {
		t.Error("Expected Jan 2 marked manually recorded")
	}
	if !user.DailyRecords["2025-01-01"].Recorded {
		t.Error("Expected Jan 1 untouched by second merge")
	}
}

func TestJSONStore_MergeUser_NilFieldsUntouched(t *testing.T) {
	store := newTestJSONStore(t)
	if err := store.CreateUser(testUser("alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	progress := models.Progress{ConsecutiveDaysWithoutSmoking: 5, TotalDaysWithoutSmoking: 5}
	if err := store.MergeUser("alice", UserPatch{Progress: &progress}); err != nil {
		t.Fatalf("MergeUser failed: %v", err)
	}

	// A patch that only sets LastCheckDate must not clobber Progress.
	check := "2025-01-06"
	if err := store.MergeUser("alice", UserPatch{LastCheckDate: &check}); err != nil {
		t.Fatalf("MergeUser failed: %v", err)
	}

	user, err := store.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user.Progress.ConsecutiveDaysWithoutSmoking != 5 {
		t.Errorf("Progress clobbered: %+v", user.Progress)
	}
	if user.LastCheckDate != "2025-01-06" {
		t.Errorf("Expected LastCheckDate updated, got %q", user.LastCheckDate)
	}
	if user.DailyCigarettes != 20 {
		t.Errorf("Settings clobbered: %d", user.DailyCigarettes)
	}
}

func TestJSONStore_MergeUser_NotFound(t *testing.T) {
	store := newTestJSONStore(t)
	if err := store.MergeUser("ghost", UserPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestJSONStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quitlog.json")
	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if err := store.CreateUser(testUser("alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	migrated := true
	now := time.Now()
	if err := store.MergeUser("alice", UserPatch{Migrated: &migrated, MigrationDate: &now}); err != nil {
		t.Fatalf("MergeUser failed: %v", err)
	}

	reopened := NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load after reopen failed: %v", err)
	}
	user, err := reopened.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser after reopen failed: %v", err)
	}
	if !user.Migrated || user.MigrationDate == nil {
		t.Errorf("Migration markers lost across reopen: %+v", user)
	}
}

func TestJSONStore_ListUsernamesSorted(t *testing.T) {
	store := newTestJSONStore(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		if err := store.CreateUser(testUser(name)); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", name, err)
		}
	}

	names, err := store.ListUsernames()
	if err != nil {
		t.Fatalf("ListUsernames failed: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestJSONStore_FilePermissions(t *testing.T) {
	store := newTestJSONStore(t)
	if err := store.CreateUser(testUser("alice")); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	info, err := os.Stat(store.GetConfigPath())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}
