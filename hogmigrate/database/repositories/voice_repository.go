package repositories

import (
	"context"
	"time"

	"github.com/Demco21/hogbot-migrate/hogmigrate/database/models"
	"github.com/uptrace/bun"
)

// VoiceTimeRepository writes the migrated voice aggregates. Both the guild
// row and the user rows go through one transaction so a failed run leaves
// the database untouched.
type VoiceTimeRepository interface {
	MigrateAggregates(ctx context.Context, guildID string, rows []*models.VoiceTimeAggregate) error
	TopByTotalSeconds(ctx context.Context, guildID string, limit int) ([]*models.VoiceTimeAggregate, error)
}

type voiceTimeRepository struct {
	*BaseRepository
}

func NewVoiceTimeRepository(db *bun.DB) VoiceTimeRepository {
	return &voiceTimeRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// MigrateAggregates inserts the guild row if absent, then batch-upserts all
// user rows. Re-running with the same input overwrites the counters with
// identical values and only advances the timestamps.
func (r *voiceTimeRepository) MigrateAggregates(ctx context.Context, guildID string, rows []*models.VoiceTimeAggregate) error {
	now := time.Now()
	for _, row := range rows {
		row.GuildID = guildID
		row.WeeklyUpdatedAt = now
		row.UpdatedAt = now
	}

	err := r.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		guild := &models.GuildSettings{GuildID: guildID}
		if _, err := tx.NewInsert().
			Model(guild).
			On("CONFLICT (guild_id) DO NOTHING").
			Exec(ctx); err != nil {
			return err
		}

		if len(rows) == 0 {
			return nil
		}

		_, err := tx.NewInsert().
			Model(&rows).
			On("CONFLICT (user_id, guild_id) DO UPDATE").
			Set("total_seconds = EXCLUDED.total_seconds").
			Set("weekly_seconds = EXCLUDED.weekly_seconds").
			Set("weekly_updated_at = EXCLUDED.weekly_updated_at").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		return err
	})

	return r.HandleError("migrate", "voice_time_aggregates", err)
}

func (r *voiceTimeRepository) TopByTotalSeconds(ctx context.Context, guildID string, limit int) ([]*models.VoiceTimeAggregate, error) {
	timeoutCtx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var entries []*models.VoiceTimeAggregate
	err := r.db.NewSelect().
		Model(&entries).
		Where("guild_id = ?", guildID).
		Order("total_seconds DESC").
		Limit(limit).
		Scan(timeoutCtx)

	return entries, r.HandleError("select top", "voice_time_aggregates", err)
}
