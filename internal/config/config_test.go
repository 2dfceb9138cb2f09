package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		Timezone:           "UTC",
		NewItemsPerSession: 20,
		QuizQuestionCount:  10,
		ImportWorkerCount:  2,
		ImportQueueSize:    16,
		DailyGoal:          20,
		SpeedRoundSeconds:  30,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_SingleProblem(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{name: "empty addr", mutate: func(c *config.Config) { c.Addr = "" }, expectedError: "ADDR cannot be empty"},
		{name: "empty db path", mutate: func(c *config.Config) { c.DBPath = "" }, expectedError: "DB_PATH cannot be empty"},
		{name: "unknown log level", mutate: func(c *config.Config) { c.LogLevel = "LOUD" }, expectedError: "LOG_LEVEL"},
		{name: "empty log level", mutate: func(c *config.Config) { c.LogLevel = "" }, expectedError: "LOG_LEVEL"},
		{name: "unknown timezone", mutate: func(c *config.Config) { c.Timezone = "Mars/Olympus_Mons" }, expectedError: "TIMEZONE"},
		{name: "negative new items", mutate: func(c *config.Config) { c.NewItemsPerSession = -1 }, expectedError: "NEW_ITEMS_PER_SESSION"},
		{name: "zero quiz questions", mutate: func(c *config.Config) { c.QuizQuestionCount = 0 }, expectedError: "QUIZ_QUESTION_COUNT"},
		{name: "zero import workers", mutate: func(c *config.Config) { c.ImportWorkerCount = 0 }, expectedError: "IMPORT_WORKER_COUNT"},
		{name: "zero import queue", mutate: func(c *config.Config) { c.ImportQueueSize = 0 }, expectedError: "IMPORT_QUEUE_SIZE"},
		{name: "zero daily goal", mutate: func(c *config.Config) { c.DailyGoal = 0 }, expectedError: "DAILY_GOAL"},
		{name: "daily goal too high", mutate: func(c *config.Config) { c.DailyGoal = 201 }, expectedError: "DAILY_GOAL"},
		{name: "speed round too short", mutate: func(c *config.Config) { c.SpeedRoundSeconds = 4 }, expectedError: "SPEED_ROUND_SECONDS"},
		{name: "speed round too long", mutate: func(c *config.Config) { c.SpeedRoundSeconds = 121 }, expectedError: "SPEED_ROUND_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_ZeroNewItemsIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.NewItemsPerSession = 0

	assert.NoError(t, cfg.Validate())
}

func TestValidate_LowercaseLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "debug"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{Timezone: "UTC", LogLevel: "INVALID"}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	for _, want := range []string{"ADDR", "DB_PATH", "LOG_LEVEL", "QUIZ_QUESTION_COUNT", "IMPORT_WORKER_COUNT", "IMPORT_QUEUE_SIZE"} {
		assert.Contains(t, errStr, want)
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Europe/Prague"
	assert.Equal(t, "Europe/Prague", cfg.Location().String())

	cfg.Timezone = "nowhere"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("NEW_ITEMS_PER_SESSION", "5")
	t.Setenv("QUIZ_QUESTION_COUNT", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.NewItemsPerSession)
	assert.Equal(t, 10, cfg.QuizQuestionCount, "invalid integers fall back to the default")
}

func TestLoad_StudyDefaults(t *testing.T) {
	cfg := config.Load()

	assert.False(t, cfg.EnableReversed)
	assert.Equal(t, 20, cfg.DailyGoal)
	assert.Equal(t, 30, cfg.SpeedRoundSeconds)
}

func TestLoad_StudySettings(t *testing.T) {
	t.Setenv("ENABLE_REVERSED", "true")
	t.Setenv("DAILY_GOAL", "50")
	t.Setenv("SPEED_ROUND_SECONDS", "15")

	cfg := config.Load()

	assert.True(t, cfg.EnableReversed)
	assert.Equal(t, 50, cfg.DailyGoal)
	assert.Equal(t, 15, cfg.SpeedRoundSeconds)
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	t.Setenv("ENABLE_REVERSED", "sometimes")

	assert.False(t, config.Load().EnableReversed)
}
