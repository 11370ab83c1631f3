package models

import "time"

// DailyRecord is one day's answer to "did you smoke today?".
type DailyRecord struct {
	Date             string    `json:"date"` // YYYY-MM-DD
	Smoked           bool      `json:"smoked"`
	Recorded         bool      `json:"recorded"`
	RecordedManually bool      `json:"recorded_manually,omitempty"` // filled in later via backfill
	Timestamp        time.Time `json:"timestamp"`                   // when the record was written; audit only
}

// Progress holds the derived metrics projected from a user's record map.
// It is recomputed on every read/write cycle and is never the source of
// truth; the record map is.
type Progress struct {
	TotalDaysWithoutSmoking       int     `json:"total_days_without_smoking"`
	ConsecutiveDaysWithoutSmoking int     `json:"consecutive_days_without_smoking"`
	TotalDaysSmoked               int     `json:"total_days_smoked"`
	NetDaysWithoutSmoking         int     `json:"net_days_without_smoking"`
	TotalCigarettesAvoided        int     `json:"total_cigarettes_avoided"`
	TotalMoneySaved               float64 `json:"total_money_saved"`
	LastRecordedDate              string  `json:"last_recorded_date"` // YYYY-MM-DD, empty if nothing recorded
}

// User is one person's document in the record store.
type User struct {
	ID               string                 `json:"id"`
	Username         string                 `json:"username"`
	RegistrationDate string                 `json:"registration_date"` // YYYY-MM-DD
	DailyCigarettes  int                    `json:"daily_cigarettes"`
	CigarettePrice   float64                `json:"cigarette_price"`
	DailyRecords     map[string]DailyRecord `json:"daily_records"`

	// Derived fields, persisted for display but always re-derivable
	// from DailyRecords.
	Progress Progress `json:"progress"`

	LastCheckDate string `json:"last_check_date,omitempty"` // last day the daily question was answered
	TodaySmoking  *bool  `json:"today_smoking,omitempty"`

	Migrated      bool       `json:"migrated,omitempty"`
	MigrationDate *time.Time `json:"migration_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
