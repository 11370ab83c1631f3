package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anfask/quitlog/internal/models"
)

// schemaVersion is stored in the SQLite user_version pragma and bumped on
// every schema change.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	username                   TEXT PRIMARY KEY,
	id                         TEXT NOT NULL,
	registration_date          TEXT NOT NULL,
	daily_cigarettes           INTEGER NOT NULL DEFAULT 0,
	cigarette_price            REAL NOT NULL DEFAULT 0,
	days_without_smoking       INTEGER NOT NULL DEFAULT 0,
	total_days_without_smoking INTEGER NOT NULL DEFAULT 0,
	total_days_smoked          INTEGER NOT NULL DEFAULT 0,
	net_days_without_smoking   INTEGER NOT NULL DEFAULT 0,
	total_cigarettes_avoided   INTEGER NOT NULL DEFAULT 0,
	total_money_saved          REAL NOT NULL DEFAULT 0,
	last_recorded_date         TEXT NOT NULL DEFAULT '',
	last_check_date            TEXT NOT NULL DEFAULT '',
	today_smoking              INTEGER,
	migrated                   INTEGER NOT NULL DEFAULT 0,
	migration_date             TEXT,
	created_at                 TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_records (
	username          TEXT NOT NULL,
	date              TEXT NOT NULL,
	smoked            INTEGER NOT NULL,
	recorded          INTEGER NOT NULL,
	recorded_manually INTEGER NOT NULL DEFAULT 0,
	timestamp         TEXT NOT NULL,
	PRIMARY KEY (username, date),
	FOREIGN KEY (username) REFERENCES users(username)
);
`

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'quitlog init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.validateSchemaVersion()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) validateSchemaVersion() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", version, schemaVersion)
	}
	return nil
}

// SchemaVersion reports the stored and supported schema versions.
func (s *SQLiteStore) SchemaVersion() (current, supported int, err error) {
	if s.db == nil {
		return 0, 0, fmt.Errorf("storage not loaded")
	}
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return 0, 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return current, schemaVersion, nil
}

func (s *SQLiteStore) CreateUser(user models.User) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", user.Username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, user.Username)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var migrationDate sql.NullString
	if user.MigrationDate != nil {
		migrationDate = sql.NullString{String: user.MigrationDate.UTC().Format(time.RFC3339), Valid: true}
	}
	var todaySmoking sql.NullBool
	if user.TodaySmoking != nil {
		todaySmoking = sql.NullBool{Bool: *user.TodaySmoking, Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO users (
			username, id, registration_date, daily_cigarettes, cigarette_price,
			days_without_smoking, total_days_without_smoking, total_days_smoked,
			net_days_without_smoking, total_cigarettes_avoided, total_money_saved,
			last_recorded_date, last_check_date, today_smoking, migrated, migration_date, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.ID, user.RegistrationDate, user.DailyCigarettes, user.CigarettePrice,
		user.Progress.ConsecutiveDaysWithoutSmoking, user.Progress.TotalDaysWithoutSmoking, user.Progress.TotalDaysSmoked,
		user.Progress.NetDaysWithoutSmoking, user.Progress.TotalCigarettesAvoided, user.Progress.TotalMoneySaved,
		user.Progress.LastRecordedDate, user.LastCheckDate, todaySmoking, user.Migrated, migrationDate,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if err := upsertRecords(tx, user.Username, user.DailyRecords); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetUser(username string) (models.User, error) {
	if s.db == nil {
		return models.User{}, fmt.Errorf("storage not loaded")
	}

	row := s.db.QueryRow(`
		SELECT username, id, registration_date, daily_cigarettes, cigarette_price,
		       days_without_smoking, total_days_without_smoking, total_days_smoked,
		       net_days_without_smoking, total_cigarettes_avoided, total_money_saved,
		       last_recorded_date, last_check_date, today_smoking, migrated, migration_date, created_at
		FROM users WHERE username = ?`, username)

	var u models.User
	var todaySmoking sql.NullBool
	var migrationDate sql.NullString
	var createdAt string

	err := row.Scan(
		&u.Username, &u.ID, &u.RegistrationDate, &u.DailyCigarettes, &u.CigarettePrice,
		&u.Progress.ConsecutiveDaysWithoutSmoking, &u.Progress.TotalDaysWithoutSmoking, &u.Progress.TotalDaysSmoked,
		&u.Progress.NetDaysWithoutSmoking, &u.Progress.TotalCigarettesAvoided, &u.Progress.TotalMoneySaved,
		&u.Progress.LastRecordedDate, &u.LastCheckDate, &todaySmoking, &u.Migrated, &migrationDate, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("%w: %s", ErrNotFound, username)
		}
		return models.User{}, err
	}

	if todaySmoking.Valid {
		u.TodaySmoking = &todaySmoking.Bool
	}
	if migrationDate.Valid {
		if t, err := time.Parse(time.RFC3339, migrationDate.String); err == nil {
			u.MigrationDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = t
	}

	records, err := s.loadRecords(username)
	if err != nil {
		return models.User{}, err
	}
	u.DailyRecords = records

	return u, nil
}

func (s *SQLiteStore) loadRecords(username string) (map[string]models.DailyRecord, error) {
	rows, err := s.db.Query(`
		SELECT date, smoked, recorded, recorded_manually, timestamp
		FROM daily_records WHERE username = ?`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]models.DailyRecord)
	for rows.Next() {
		var rec models.DailyRecord
		var ts string
		if err := rows.Scan(&rec.Date, &rec.Smoked, &rec.Recorded, &rec.RecordedManually, &ts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		records[rec.Date] = rec
	}
	return records, rows.Err()
}

// MergeUser applies the patch in a single transaction. Fields absent from
// the patch keep their stored values; record entries are upserted per date.
func (s *SQLiteStore) MergeUser(username string, patch UserPatch) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	var exists int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", username).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, username)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertRecords(tx, username, patch.DailyRecords); err != nil {
		return err
	}

	set := func(column string, value any) error {
		_, err := tx.Exec(fmt.Sprintf("UPDATE users SET %s = ? WHERE username = ?", column), value, username)
		return err
	}

	if p := patch.Progress; p != nil {
		_, err := tx.Exec(`
			UPDATE users SET
				days_without_smoking = ?, total_days_without_smoking = ?, total_days_smoked = ?,
				net_days_without_smoking = ?, total_cigarettes_avoided = ?, total_money_saved = ?,
				last_recorded_date = ?
			WHERE username = ?`,
			p.ConsecutiveDaysWithoutSmoking, p.TotalDaysWithoutSmoking, p.TotalDaysSmoked,
			p.NetDaysWithoutSmoking, p.TotalCigarettesAvoided, p.TotalMoneySaved,
			p.LastRecordedDate, username,
		)
		if err != nil {
			return fmt.Errorf("failed to update derived fields: %w", err)
		}
	}
	if patch.LastCheckDate != nil {
		if err := set("last_check_date", *patch.LastCheckDate); err != nil {
			return err
		}
	}
	if patch.TodaySmoking != nil {
		if err := set("today_smoking", *patch.TodaySmoking); err != nil {
			return err
		}
	}
	if patch.DailyCigarettes != nil {
		if err := set("daily_cigarettes", *patch.DailyCigarettes); err != nil {
			return err
		}
	}
	if patch.CigarettePrice != nil {
		if err := set("cigarette_price", *patch.CigarettePrice); err != nil {
			return err
		}
	}
	if patch.Migrated != nil {
		if err := set("migrated", *patch.Migrated); err != nil {
			return err
		}
	}
	if patch.MigrationDate != nil {
		if err := set("migration_date", patch.MigrationDate.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func upsertRecords(tx *sql.Tx, username string, records map[string]models.DailyRecord) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_records (username, date, smoked, recorded, recorded_manually, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.Exec(username, rec.Date, rec.Smoked, rec.Recorded, rec.RecordedManually,
			rec.Timestamp.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to upsert record for %s: %w", rec.Date, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListUsernames() ([]string, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	rows, err := s.db.Query("SELECT username FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
