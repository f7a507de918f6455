package hogmigrate

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Demco21/hogbot-migrate/hogmigrate/database"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	// .env file is optional, environment variables win over the TOML file
	// so credentials never have to live in config.toml.
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)

	if cfg.Migration.GuildID == 0 {
		return nil, fmt.Errorf("config: migration.guild_id is required")
	}
	if cfg.Migration.InputPath == "" {
		return nil, fmt.Errorf("config: migration.input_path is required")
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOGBOT_DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("HOGBOT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.DB.Port = port
		}
	}
	if v := os.Getenv("HOGBOT_DB_USER"); v != "" {
		cfg.DB.User = v
	}
	if v := os.Getenv("HOGBOT_DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("HOGBOT_DB_NAME"); v != "" {
		cfg.DB.Database = v
	}
	if v := os.Getenv("HOGBOT_SPACES_KEY"); v != "" {
		cfg.Spaces.Key = v
	}
	if v := os.Getenv("HOGBOT_SPACES_SECRET"); v != "" {
		cfg.Spaces.Secret = v
	}
}

type Config struct {
	Log       LogConfig         `toml:"log"`
	Migration MigrationConfig   `toml:"migration"`
	DB        database.DBConfig `toml:"db"`
	Spaces    SpacesConfig      `toml:"spaces"`
}

type MigrationConfig struct {
	GuildID   snowflake.ID `toml:"guild_id"`
	InputPath string       `toml:"input_path"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

// SpacesConfig is only needed when input_path points at s3://bucket/key.
type SpacesConfig struct {
	Key    string `toml:"key"`
	Secret string `toml:"secret"`
	Region string `toml:"region"`
}
