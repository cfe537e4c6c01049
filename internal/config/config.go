package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"ticket-dash/internal/dialect"
	"ticket-dash/internal/ticket"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	StaleDays int
	Source    dialect.Source
	Title     string
	Output    string
	Format    string

	DataPath string
	LogDir   string

	// ClassificationPath names the optional YAML file extending the status
	// and priority tables. Overrides holds its parsed content.
	ClassificationPath string
	Overrides          ticket.Overrides
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	// 4. Report settings
	staleDays, err := strconv.Atoi(getEnv("TICKET_DASH_STALE_DAYS", "14"))
	if err != nil || staleDays < 0 {
		return nil, fmt.Errorf("invalid TICKET_DASH_STALE_DAYS %q: want a non-negative integer", os.Getenv("TICKET_DASH_STALE_DAYS"))
	}
	source, err := dialect.ParseSource(getEnv("TICKET_DASH_SOURCE", string(dialect.SourceAuto)))
	if err != nil {
		return nil, fmt.Errorf("invalid TICKET_DASH_SOURCE: %w", err)
	}

	cfg := &AppConfig{
		StaleDays:          staleDays,
		Source:             source,
		Title:              getEnv("TICKET_DASH_TITLE", ""),
		Output:             getEnv("TICKET_DASH_OUTPUT", "dashboard.html"),
		Format:             getEnv("TICKET_DASH_FORMAT", "html"),
		DataPath:           dataPath,
		LogDir:             logDir,
		ClassificationPath: getEnv("TICKET_DASH_CLASSIFICATION", ""),
	}

	// 5. Optional classification tables
	if cfg.ClassificationPath != "" {
		o, err := LoadClassification(cfg.ClassificationPath)
		if err != nil {
			return nil, err
		}
		cfg.Overrides = o
		log.Debug().
			Str("path", cfg.ClassificationPath).
			Int("statuses", len(o.Statuses)).
			Int("blocked", len(o.Blocked)).
			Int("priorities", len(o.Priorities)).
			Msg("Loaded classification overrides")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
