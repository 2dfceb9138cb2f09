package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	Timezone           string
	NewItemsPerSession int
	QuizQuestionCount  int
	ImportWorkerCount  int
	ImportQueueSize    int
	// EnableReversed adds a back-to-front twin of every card to study sessions.
	EnableReversed    bool
	DailyGoal         int
	SpeedRoundSeconds int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// .env is optional outside development.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:flashdeck.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		Timezone:           envOr("TIMEZONE", "Local"),
		NewItemsPerSession: envIntOr("NEW_ITEMS_PER_SESSION", 20),
		QuizQuestionCount:  envIntOr("QUIZ_QUESTION_COUNT", 10),
		ImportWorkerCount:  envIntOr("IMPORT_WORKER_COUNT", 2),
		ImportQueueSize:    envIntOr("IMPORT_QUEUE_SIZE", 16),
		EnableReversed:     envBoolOr("ENABLE_REVERSED", false),
		DailyGoal:          envIntOr("DAILY_GOAL", 20),
		SpeedRoundSeconds:  envIntOr("SPEED_ROUND_SECONDS", 30),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("TIMEZONE %q: %v", c.Timezone, err))
	}
	if c.NewItemsPerSession < 0 {
		problems = append(problems, fmt.Sprintf("NEW_ITEMS_PER_SESSION must be >= 0 (got %d)", c.NewItemsPerSession))
	}
	if c.QuizQuestionCount < 1 {
		problems = append(problems, fmt.Sprintf("QUIZ_QUESTION_COUNT must be >= 1 (got %d)", c.QuizQuestionCount))
	}
	if c.ImportWorkerCount < 1 {
		problems = append(problems, fmt.Sprintf("IMPORT_WORKER_COUNT must be >= 1 (got %d)", c.ImportWorkerCount))
	}
	if c.ImportQueueSize < 1 {
		problems = append(problems, fmt.Sprintf("IMPORT_QUEUE_SIZE must be >= 1 (got %d)", c.ImportQueueSize))
	}
	if c.DailyGoal < 1 || c.DailyGoal > 200 {
		problems = append(problems, fmt.Sprintf("DAILY_GOAL must be between 1 and 200 (got %d)", c.DailyGoal))
	}
	if c.SpeedRoundSeconds < 5 || c.SpeedRoundSeconds > 120 {
		problems = append(problems, fmt.Sprintf("SPEED_ROUND_SECONDS must be between 5 and 120 (got %d)", c.SpeedRoundSeconds))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves Timezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
