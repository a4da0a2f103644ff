package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	OpenAIAPIKey      string

	// LLMMode is "real" or "mock". In mock mode the agent answers without
	// calling OpenAI, so the rest of the stack can be exercised offline.
	LLMMode  string
	LLMModel string

	// HTTPTimeout applies to all outbound provider calls.
	HTTPTimeout time.Duration

	// DataDir is where raw provider payloads are archived.
	DataDir string

	// HistoryMax bounds the in-memory history feed.
	HistoryMax int

	// ScheduleInterval controls how often due schedules are checked.
	ScheduleInterval time.Duration

	// AlertInterval controls how often alerts are evaluated.
	AlertInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEY is not set")
	}

	cfg.LLMMode = getenvDefault("LLM_MODE", "real")
	cfg.LLMModel = getenvDefault("LLM_MODEL", "gpt-4o-mini")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLMMode == "real" && cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set (required unless LLM_MODE=mock)")
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DataDir = getenvDefault("DATA_DIR", "data")
	cfg.HistoryMax = getenvInt("HISTORY_MAX", 200)

	schedStr := getenvDefault("SCHEDULE_INTERVAL", "1m")
	sched, err := time.ParseDuration(schedStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_INTERVAL: %w", err)
	}
	cfg.ScheduleInterval = sched

	alertStr := getenvDefault("ALERT_INTERVAL", "5m")
	alert, err := time.ParseDuration(alertStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_INTERVAL: %w", err)
	}
	cfg.AlertInterval = alert

	cfg.Port = getenvDefault("PORT", "8000")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
