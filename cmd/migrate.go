package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Demco21/hogbot-migrate/hogmigrate"
	"github.com/Demco21/hogbot-migrate/hogmigrate/database"
	"github.com/Demco21/hogbot-migrate/hogmigrate/database/repositories"
	"github.com/Demco21/hogbot-migrate/hogmigrate/migration"
	"github.com/Demco21/hogbot-migrate/hogmigrate/services"
	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cobra"
)

var (
	migrateInput  string
	migrateGuild  string
	migrateDryRun bool
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate legacy voice time data into the voice_time_aggregates table",
	Long: `Reads the old bot's persistence_data.json, converts the D:H:M:S voice
timers to seconds and upserts one row per user into voice_time_aggregates
for the configured guild, inside a single transaction.

Run with --dry-run first to see what would be written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := hogmigrate.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		slog.Info("Configuration loaded successfully")

		guildID := cfg.Migration.GuildID
		if migrateGuild != "" {
			guildID, err = snowflake.Parse(migrateGuild)
			if err != nil {
				return fmt.Errorf("invalid guild id %q: %w", migrateGuild, err)
			}
		}
		inputPath := cfg.Migration.InputPath
		if migrateInput != "" {
			inputPath = migrateInput
		}

		var repo repositories.VoiceTimeRepository
		if !migrateDryRun {
			db, err := database.New(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer db.Close()

			if err := db.Ping(ctx); err != nil {
				return err
			}
			if err := db.VerifyMigrationTables(ctx); err != nil {
				return err
			}
			slog.Info("Database connected successfully",
				slog.String("type", "db"),
				slog.String("database", cfg.DB.Database))

			repo = repositories.NewVoiceTimeRepository(db.BunDB())
		}

		migrator := migration.NewMigrator(repo, guildID, inputPath)
		migrator.SetDryRun(migrateDryRun)
		if cfg.Spaces.Key != "" {
			spaces, err := services.NewSpacesService(cfg.Spaces.Key, cfg.Spaces.Secret, cfg.Spaces.Region)
			if err != nil {
				return err
			}
			migrator.SetFetcher(spaces)
		}

		return migrator.Run(ctx)
	},
}

func init() {
	migrateCMD.Flags().StringVar(&migrateInput, "input", "", "override the persistence file path (local or s3://bucket/key)")
	migrateCMD.Flags().StringVar(&migrateGuild, "guild", "", "override the destination guild id")
	migrateCMD.Flags().BoolVar(&migrateDryRun, "dry-run", false, "parse and aggregate without writing to the database")
	rootCmd.AddCommand(migrateCMD)
}
