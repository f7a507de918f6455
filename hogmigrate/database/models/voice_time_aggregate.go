package models

import (
	"time"

	"github.com/uptrace/bun"
)

// VoiceTimeAggregate holds the per-(user, guild) voice totals. The weekly
// counter is reset by the bot; the migration just seeds both columns.
type VoiceTimeAggregate struct {
	bun.BaseModel `bun:"table:voice_time_aggregates,alias:vta"`

	UserID          string    `bun:"user_id,pk"`
	GuildID         string    `bun:"guild_id,pk"`
	TotalSeconds    int64     `bun:"total_seconds,notnull,default:0"`
	WeeklySeconds   int64     `bun:"weekly_seconds,notnull,default:0"`
	WeeklyUpdatedAt time.Time `bun:"weekly_updated_at"`
	UpdatedAt       time.Time `bun:"updated_at"`
}
