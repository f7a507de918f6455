package models

import (
	"github.com/uptrace/bun"
)

// GuildSettings mirrors the bot's guild_settings table. The migration only
// ever inserts the row if it is absent, it never updates existing settings.
type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`

	GuildID string `bun:"guild_id,pk"`
}
