package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Demco21/hogbot-migrate/hogmigrate/database/models"
	"github.com/Demco21/hogbot-migrate/hogmigrate/database/repositories"
	"github.com/disgoorg/snowflake/v2"
)

const aggregatesTable = "voice_time_aggregates"

// Migrator runs the voice time migration end to end: load the legacy JSON,
// merge the lifetime and weekly sections per user, and upsert everything
// for one guild in a single transaction.
type Migrator struct {
	repo      repositories.VoiceTimeRepository
	fetcher   ObjectFetcher
	guildID   snowflake.ID
	inputPath string
	dryRun    bool
	reportDir string
	stats     MigrationStats
}

func NewMigrator(repo repositories.VoiceTimeRepository, guildID snowflake.ID, inputPath string) *Migrator {
	return &Migrator{
		repo:      repo,
		guildID:   guildID,
		inputPath: inputPath,
		reportDir: ".",
		stats: MigrationStats{
			Tables:    make(map[string]*TableStats),
			StartTime: time.Now(),
		},
	}
}

// SetFetcher enables s3://bucket/key input paths
func (m *Migrator) SetFetcher(fetcher ObjectFetcher) { m.fetcher = fetcher }

// SetDryRun skips the write phase; the aggregate summary is still printed
func (m *Migrator) SetDryRun(v bool) { m.dryRun = v }

// SetReportDir overrides where the migration report is written
func (m *Migrator) SetReportDir(dir string) {
	if dir != "" {
		m.reportDir = dir
	}
}

// Run executes the migration. Any error is terminal: the transaction is
// rolled back and the error is returned to the caller.
func (m *Migrator) Run(ctx context.Context) error {
	logProgress("Starting voice time data migration")
	logProgress(fmt.Sprintf("Guild ID: %s", m.guildID))

	m.stats.StartTime = time.Now()
	m.initTableStats(aggregatesTable)

	doc, err := LoadPersistenceDocument(ctx, m.inputPath, m.fetcher)
	if err != nil {
		return err
	}

	voiceTimes, err := m.aggregateVoiceTimes(doc)
	if err != nil {
		return err
	}
	logProgress(fmt.Sprintf("Found %d users with voice time data", len(voiceTimes)))

	if m.dryRun {
		logProgress("Dry run: skipping database write")
		m.printDryRunSummary(voiceTimes)
		return nil
	}

	rows := buildAggregateRows(m.guildID.String(), voiceTimes)
	if err := m.repo.MigrateAggregates(ctx, m.guildID.String(), rows); err != nil {
		m.recordError(aggregatesTable)
		return fmt.Errorf("migration write failed: %w", err)
	}
	for range rows {
		m.recordSuccessful(aggregatesTable)
	}

	logProgress("Migration complete!")
	logProgress(fmt.Sprintf("Inserted/Updated: %d users", len(rows)))

	if err := m.printTopUsers(ctx); err != nil {
		slog.Warn("Failed to query top users for summary",
			slog.String("type", "db"),
			slog.Any("error", err))
	}

	m.stats.EndTime = time.Now()
	if err := m.generateMigrationReport(); err != nil {
		slog.Error("Failed to generate migration report", "error", err)
	}
	m.logFinalStats()
	return nil
}

// aggregateVoiceTimes merges both sections into one mapping per user. The
// lifetime section seeds entries; the weekly section fills weekly_seconds.
// A user with weekly data but no lifetime entry gets lifetime set equal to
// weekly (shouldn't happen in real exports, but the old bot handled it
// that way, so we keep it).
func (m *Migrator) aggregateVoiceTimes(doc *PersistenceDocument) (map[string]VoiceTimes, error) {
	voiceTimes := make(map[string]VoiceTimes)

	for key, timeString := range doc.LifetimeSums {
		userID, ok := ExtractVoiceUserID(key)
		if !ok {
			m.recordSkipped(aggregatesTable, "not a voice key", key)
			continue
		}
		m.recordProcessed(aggregatesTable)

		lifetimeSeconds, err := ParseLegacyDuration(timeString)
		if err != nil {
			m.recordError(aggregatesTable)
			return nil, fmt.Errorf("lifetime_sums[%s]: %w", key, err)
		}
		voiceTimes[userID] = VoiceTimes{LifetimeSeconds: lifetimeSeconds}
	}

	for key, timeString := range doc.ThisWeekTimeSums {
		userID, ok := ExtractVoiceUserID(key)
		if !ok {
			m.recordSkipped(aggregatesTable, "not a voice key", key)
			continue
		}
		m.recordProcessed(aggregatesTable)

		weeklySeconds, err := ParseLegacyDuration(timeString)
		if err != nil {
			m.recordError(aggregatesTable)
			return nil, fmt.Errorf("this_week_time_sums[%s]: %w", key, err)
		}

		if entry, exists := voiceTimes[userID]; exists {
			entry.WeeklySeconds = weeklySeconds
			voiceTimes[userID] = entry
		} else {
			m.recordFallback(aggregatesTable)
			voiceTimes[userID] = VoiceTimes{
				LifetimeSeconds: weeklySeconds,
				WeeklySeconds:   weeklySeconds,
			}
		}
	}

	return voiceTimes, nil
}

func buildAggregateRows(guildID string, voiceTimes map[string]VoiceTimes) []*models.VoiceTimeAggregate {
	rows := make([]*models.VoiceTimeAggregate, 0, len(voiceTimes))
	for userID, times := range voiceTimes {
		rows = append(rows, &models.VoiceTimeAggregate{
			UserID:        userID,
			GuildID:       guildID,
			TotalSeconds:  times.LifetimeSeconds,
			WeeklySeconds: times.WeeklySeconds,
		})
	}
	return rows
}

// printTopUsers prints the top 5 migrated users by total voice time, hours
// derived by integer division.
func (m *Migrator) printTopUsers(ctx context.Context) error {
	top, err := m.repo.TopByTotalSeconds(ctx, m.guildID.String(), 5)
	if err != nil {
		return err
	}

	logProgress("Top 5 users by total voice time:")
	for _, row := range top {
		fmt.Printf("  User %s: %d hours total, %d hours this week\n",
			row.UserID, row.TotalSeconds/3600, row.WeeklySeconds/3600)
	}
	return nil
}

func (m *Migrator) printDryRunSummary(voiceTimes map[string]VoiceTimes) {
	type userTimes struct {
		userID string
		times  VoiceTimes
	}
	sorted := make([]userTimes, 0, len(voiceTimes))
	for userID, times := range voiceTimes {
		sorted = append(sorted, userTimes{userID, times})
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].times.LifetimeSeconds > sorted[j].times.LifetimeSeconds
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}

	logProgress("Top 5 users that would be written:")
	for _, entry := range sorted {
		fmt.Printf("  User %s: %d hours total, %d hours this week\n",
			entry.userID, entry.times.LifetimeSeconds/3600, entry.times.WeeklySeconds/3600)
	}
}

func (m *Migrator) generateMigrationReport() error {
	timestamp := time.Now().Format("20060102_150405")
	reportFile := filepath.Join(m.reportDir, fmt.Sprintf("migration_report_%s.json", timestamp))

	file, err := os.Create(reportFile)
	if err != nil {
		return fmt.Errorf("failed to create migration report file: %w", err)
	}
	defer file.Close()

	// Calculate final totals
	m.stats.TotalProcessed = 0
	m.stats.TotalSkipped = 0
	m.stats.TotalErrors = 0
	for _, tableStats := range m.stats.Tables {
		m.stats.TotalProcessed += tableStats.Processed
		m.stats.TotalSkipped += tableStats.Skipped
		m.stats.TotalErrors += tableStats.Errors
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m.stats); err != nil {
		return fmt.Errorf("failed to write migration report: %w", err)
	}

	slog.Info("Migration report generated", "file", reportFile)
	return nil
}

// logFinalStats logs a summary of migration statistics
func (m *Migrator) logFinalStats() {
	duration := m.stats.EndTime.Sub(m.stats.StartTime)

	slog.Info("Migration completed",
		"duration", duration,
		"total_processed", m.stats.TotalProcessed,
		"total_skipped", m.stats.TotalSkipped,
		"total_errors", m.stats.TotalErrors)

	for tableName, stats := range m.stats.Tables {
		slog.Info("Table migration stats",
			"table", tableName,
			"processed", stats.Processed,
			"successful", stats.Successful,
			"skipped", stats.Skipped,
			"fallbacks", stats.Fallbacks,
			"errors", stats.Errors)
	}
}

// Helper methods for statistics tracking

func (m *Migrator) initTableStats(tableName string) {
	if m.stats.Tables == nil {
		m.stats.Tables = make(map[string]*TableStats)
	}
	m.stats.Tables[tableName] = &TableStats{
		TableName:      tableName,
		SkippedRecords: []SkippedRecord{},
	}
}

func (m *Migrator) recordProcessed(tableName string) {
	if stats, exists := m.stats.Tables[tableName]; exists {
		stats.Processed++
	}
}

func (m *Migrator) recordSuccessful(tableName string) {
	if stats, exists := m.stats.Tables[tableName]; exists {
		stats.Successful++
	}
}

func (m *Migrator) recordSkipped(tableName, reason, data string) {
	if stats, exists := m.stats.Tables[tableName]; exists {
		stats.Skipped++
		stats.SkippedRecords = append(stats.SkippedRecords, SkippedRecord{
			Reason:    reason,
			Data:      data,
			Timestamp: time.Now(),
		})
	}
}

func (m *Migrator) recordFallback(tableName string) {
	if stats, exists := m.stats.Tables[tableName]; exists {
		stats.Fallbacks++
	}
}

func (m *Migrator) recordError(tableName string) {
	if stats, exists := m.stats.Tables[tableName]; exists {
		stats.Errors++
	}
}

func logProgress(message string) {
	slog.Info(message, slog.String("type", "mig"))
}
