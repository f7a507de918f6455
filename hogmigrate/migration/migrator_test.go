package migration

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Demco21/hogbot-migrate/hogmigrate/database/models"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVoiceTimeRepository struct {
	guildID    string
	rows       []*models.VoiceTimeAggregate
	migrateErr error
}

func (f *fakeVoiceTimeRepository) MigrateAggregates(_ context.Context, guildID string, rows []*models.VoiceTimeAggregate) error {
	if f.migrateErr != nil {
		return f.migrateErr
	}
	f.guildID = guildID
	f.rows = rows
	return nil
}

func (f *fakeVoiceTimeRepository) TopByTotalSeconds(_ context.Context, _ string, limit int) ([]*models.VoiceTimeAggregate, error) {
	sorted := make([]*models.VoiceTimeAggregate, len(f.rows))
	copy(sorted, f.rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TotalSeconds > sorted[j].TotalSeconds })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

func newTestMigrator(t *testing.T, repo *fakeVoiceTimeRepository, inputPath string) *Migrator {
	t.Helper()
	m := NewMigrator(repo, snowflake.ID(367904135548239872), inputPath)
	m.SetReportDir(t.TempDir())
	return m
}

func TestAggregateVoiceTimes(t *testing.T) {
	tests := []struct {
		name    string
		doc     *PersistenceDocument
		want    map[string]VoiceTimes
		wantErr bool
	}{
		{
			name: "merge lifetime and weekly",
			doc: &PersistenceDocument{
				LifetimeSums:     map[string]string{"A_voice": "0:01:00:00"},
				ThisWeekTimeSums: map[string]string{"A_voice": "0:00:30:00"},
			},
			want: map[string]VoiceTimes{
				"A": {LifetimeSeconds: 3600, WeeklySeconds: 1800},
			},
		},
		{
			name: "weekly-only user falls back to weekly as lifetime",
			doc: &PersistenceDocument{
				LifetimeSums: map[string]string{"A_voice": "0:01:00:00"},
				ThisWeekTimeSums: map[string]string{
					"A_voice": "0:00:30:00",
					"B_voice": "0:00:10:00",
				},
			},
			want: map[string]VoiceTimes{
				"A": {LifetimeSeconds: 3600, WeeklySeconds: 1800},
				"B": {LifetimeSeconds: 600, WeeklySeconds: 600},
			},
		},
		{
			name: "lifetime-only user keeps zero weekly",
			doc: &PersistenceDocument{
				LifetimeSums:     map[string]string{"A_voice": "2:00:00:00"},
				ThisWeekTimeSums: map[string]string{},
			},
			want: map[string]VoiceTimes{
				"A": {LifetimeSeconds: 2 * 86400, WeeklySeconds: 0},
			},
		},
		{
			name: "non-voice keys are skipped",
			doc: &PersistenceDocument{
				LifetimeSums: map[string]string{
					"A_voice": "0:00:00:10",
					"A_other": "not even a duration",
				},
				ThisWeekTimeSums: map[string]string{"A_text": "99"},
			},
			want: map[string]VoiceTimes{
				"A": {LifetimeSeconds: 10, WeeklySeconds: 0},
			},
		},
		{
			name: "malformed lifetime duration aborts",
			doc: &PersistenceDocument{
				LifetimeSums:     map[string]string{"A_voice": "1:2:3"},
				ThisWeekTimeSums: map[string]string{},
			},
			wantErr: true,
		},
		{
			name: "malformed weekly duration aborts",
			doc: &PersistenceDocument{
				LifetimeSums:     map[string]string{},
				ThisWeekTimeSums: map[string]string{"A_voice": "a:2:3:4"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMigrator(t, &fakeVoiceTimeRepository{}, "unused")
			m.initTableStats(aggregatesTable)

			got, err := m.aggregateVoiceTimes(tt.doc)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateVoiceTimesStats(t *testing.T) {
	doc := &PersistenceDocument{
		LifetimeSums: map[string]string{
			"A_voice":   "0:01:00:00",
			"A_penalty": "0:00:00:01",
		},
		ThisWeekTimeSums: map[string]string{
			"B_voice": "0:00:10:00",
		},
	}

	m := newTestMigrator(t, &fakeVoiceTimeRepository{}, "unused")
	m.initTableStats(aggregatesTable)

	_, err := m.aggregateVoiceTimes(doc)
	require.NoError(t, err)

	stats := m.stats.Tables[aggregatesTable]
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, 0, stats.Errors)
}

func TestMigratorRunEndToEnd(t *testing.T) {
	path := writeTempFile(t, `{
		"lifetime_sums": {"123_voice": "1:00:00:00"},
		"this_week_time_sums": {"123_voice": "0:05:00:00"}
	}`)

	repo := &fakeVoiceTimeRepository{}
	m := newTestMigrator(t, repo, path)

	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, "367904135548239872", repo.guildID)
	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.Equal(t, "123", row.UserID)
	assert.Equal(t, "367904135548239872", row.GuildID)
	assert.Equal(t, int64(86400), row.TotalSeconds)
	assert.Equal(t, int64(18000), row.WeeklySeconds)
}

func TestMigratorRunPropagatesWriteError(t *testing.T) {
	path := writeTempFile(t, `{
		"lifetime_sums": {"123_voice": "1:00:00:00"},
		"this_week_time_sums": {}
	}`)

	repo := &fakeVoiceTimeRepository{migrateErr: fmt.Errorf("connection reset")}
	m := newTestMigrator(t, repo, path)

	err := m.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMigratorRunAbortsOnFormatError(t *testing.T) {
	path := writeTempFile(t, `{
		"lifetime_sums": {"123_voice": "1:2:3"},
		"this_week_time_sums": {}
	}`)

	repo := &fakeVoiceTimeRepository{}
	m := newTestMigrator(t, repo, path)

	require.Error(t, m.Run(context.Background()))
	assert.Nil(t, repo.rows, "nothing should reach the repository on a format error")
}

func TestMigratorDryRunSkipsWrite(t *testing.T) {
	path := writeTempFile(t, `{
		"lifetime_sums": {"123_voice": "1:00:00:00"},
		"this_week_time_sums": {"123_voice": "0:05:00:00"}
	}`)

	m := newTestMigrator(t, nil, path)
	m.SetDryRun(true)

	require.NoError(t, m.Run(context.Background()))
}

func TestBuildAggregateRows(t *testing.T) {
	rows := buildAggregateRows("G", map[string]VoiceTimes{
		"1": {LifetimeSeconds: 100, WeeklySeconds: 50},
		"2": {LifetimeSeconds: 200, WeeklySeconds: 0},
	})

	require.Len(t, rows, 2)
	byUser := map[string]*models.VoiceTimeAggregate{}
	for _, row := range rows {
		byUser[row.UserID] = row
		assert.Equal(t, "G", row.GuildID)
	}
	assert.Equal(t, int64(100), byUser["1"].TotalSeconds)
	assert.Equal(t, int64(50), byUser["1"].WeeklySeconds)
	assert.Equal(t, int64(200), byUser["2"].TotalSeconds)
	assert.Equal(t, int64(0), byUser["2"].WeeklySeconds)
}
