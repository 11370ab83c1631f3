package storage

import (
	"errors"
	"time"

	"github.com/anfask/quitlog/internal/models"
)

var (
	// ErrNotFound is returned when a user document does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned when creating a user that is already stored.
	ErrAlreadyExists = errors.New("user already exists")
)

// UserPatch is an atomic partial update of a user document. Nil fields are
// left untouched; DailyRecords entries are merged into the stored map per
// date rather than replacing the whole map.
type UserPatch struct {
	DailyRecords map[string]models.DailyRecord

	Progress *models.Progress

	LastCheckDate *string
	TodaySmoking  *bool

	DailyCigarettes *int
	CigarettePrice  *float64

	Migrated      *bool
	MigrationDate *time.Time
}

// Provider is the record-store port. Implementations must apply MergeUser
// atomically: either the whole patch lands or none of it does.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Users
	CreateUser(models.User) error
	GetUser(username string) (models.User, error)
	MergeUser(username string, patch UserPatch) error
	ListUsernames() ([]string, error)

	// Utils
	GetConfigPath() string
}
