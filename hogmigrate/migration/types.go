// types.go
package migration

import (
	"time"
)

// PersistenceDocument is the shape of the old bot's persistence_data.json.
// Both sections map "<user_id>_voice" keys to "DD:HH:MM:SS" duration strings.
type PersistenceDocument struct {
	LifetimeSums     map[string]string `json:"lifetime_sums"`
	ThisWeekTimeSums map[string]string `json:"this_week_time_sums"`
}

// VoiceTimes is the merged per-user result of both sections, in seconds.
type VoiceTimes struct {
	LifetimeSeconds int64
	WeeklySeconds   int64
}

// MigrationStats tracks migration progress and issues
type MigrationStats struct {
	Tables         map[string]*TableStats `json:"tables"`
	StartTime      time.Time              `json:"start_time"`
	EndTime        time.Time              `json:"end_time"`
	TotalErrors    int                    `json:"total_errors"`
	TotalSkipped   int                    `json:"total_skipped"`
	TotalProcessed int                    `json:"total_processed"`
}

// TableStats tracks stats for individual tables
type TableStats struct {
	TableName      string          `json:"table_name"`
	Processed      int             `json:"processed"`
	Successful     int             `json:"successful"`
	Skipped        int             `json:"skipped"`
	Errors         int             `json:"errors"`
	Fallbacks      int             `json:"fallbacks"`
	SkippedRecords []SkippedRecord `json:"skipped_records"`
}

// SkippedRecord tracks why a record was skipped
type SkippedRecord struct {
	Reason    string    `json:"reason"`
	Data      string    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}
