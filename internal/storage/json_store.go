package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/anfask/quitlog/internal/models"
)

type Store struct {
	Version int                    `json:"version"`
	Users   map[string]models.User `json:"users"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version: 1,
		Users:   make(map[string]models.User),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'quitlog init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	// Ensure maps are initialized
	if s.store.Users == nil {
		s.store.Users = make(map[string]models.User)
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) CreateUser(user models.User) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Users[user.Username]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, user.Username)
	}

	if user.DailyRecords == nil {
		user.DailyRecords = make(map[string]models.DailyRecord)
	}
	s.store.Users[user.Username] = user
	return s.save()
}

func (s *JSONStore) GetUser(username string) (models.User, error) {
	if s.store == nil {
		return models.User{}, fmt.Errorf("storage not loaded")
	}

	user, ok := s.store.Users[username]
	if !ok {
		return models.User{}, fmt.Errorf("%w: %s", ErrNotFound, username)
	}

	if user.DailyRecords == nil {
		user.DailyRecords = make(map[string]models.DailyRecord)
	}
	return user, nil
}

// MergeUser applies the patch in memory and persists the whole document in
// one write, so a failed save leaves the file unchanged.
func (s *JSONStore) MergeUser(username string, patch UserPatch) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	user, ok := s.store.Users[username]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	}

	if len(patch.DailyRecords) > 0 {
		if user.DailyRecords == nil {
			user.DailyRecords = make(map[string]models.DailyRecord, len(patch.DailyRecords))
		}
		for date, rec := range patch.DailyRecords {
			user.DailyRecords[date] = rec
		}
	}
	if patch.Progress != nil {
		user.Progress = *patch.Progress
	}
	if patch.LastCheckDate != nil {
		user.LastCheckDate = *patch.LastCheckDate
	}
	if patch.TodaySmoking != nil {
		user.TodaySmoking = patch.TodaySmoking
	}
	if patch.DailyCigarettes != nil {
		user.DailyCigarettes = *patch.DailyCigarettes
	}
	if patch.CigarettePrice != nil {
		user.CigarettePrice = *patch.CigarettePrice
	}
	if patch.Migrated != nil {
		user.Migrated = *patch.Migrated
	}
	if patch.MigrationDate != nil {
		user.MigrationDate = patch.MigrationDate
	}

	s.store.Users[username] = user
	return s.save()
}

func (s *JSONStore) ListUsernames() ([]string, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	names := make([]string, 0, len(s.store.Users))
	for name := range s.store.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}
