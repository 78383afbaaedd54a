package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DemoMode controls when the synthetic data source is used. Demo data never
// replaces real bindings, so there is no mode that forces it on.
type DemoMode string

const (
	DemoAuto DemoMode = "auto" // only while no binding is held
	DemoOff  DemoMode = "off"
)

// PollIntervals holds the refresh interval per external feed
type PollIntervals struct {
	Conversations time.Duration
	Counts        time.Duration
	Metrics       time.Duration
	OnCall        time.Duration
	Breach        time.Duration
}

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	LogLevel       string
	LogFile        string
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64

	StaticDir  string
	RosterFile string

	APIBaseURL       string
	APIToken         string
	APIRatePerSecond float64
	Poll             PollIntervals
	BreachAfter      time.Duration

	DemoMode DemoMode

	// Public holds PUBLIC_* variables with the prefix stripped, exported to /config.js
	Public map[string]string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		StaticDir:      getEnv("STATIC_DIR", "./dist"),
		RosterFile:     getEnv("ROSTER_FILE", ""),
		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", ""), "/"),
		APIToken:       getEnv("API_TOKEN", ""),
		Public:         publicEnv(),
	}

	// Parse WebSocket timeouts
	wsReadTimeout, err := strconv.Atoi(getEnv("WS_READ_TIMEOUT", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %w", err)
	}
	config.WSReadTimeout = time.Duration(wsReadTimeout) * time.Second

	wsWriteTimeout, err := strconv.Atoi(getEnv("WS_WRITE_TIMEOUT", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %w", err)
	}
	config.WSWriteTimeout = time.Duration(wsWriteTimeout) * time.Second

	// Calculate WebSocket constants
	config.PongWait = config.WSReadTimeout
	config.PingPeriod = (config.PongWait * 9) / 10 // Must be less than pongWait
	config.WriteWait = config.WSWriteTimeout
	config.MaxMessageSize = 512

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	rate, err := strconv.ParseFloat(getEnv("API_RATE_PER_SECOND", "5"), 64)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("invalid API_RATE_PER_SECOND: %q", os.Getenv("API_RATE_PER_SECOND"))
	}
	config.APIRatePerSecond = rate

	intervals := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"POLL_CONVERSATIONS_SECONDS", "30", &config.Poll.Conversations},
		{"POLL_COUNTS_SECONDS", "60", &config.Poll.Counts},
		{"POLL_METRICS_SECONDS", "120", &config.Poll.Metrics},
		{"POLL_ONCALL_SECONDS", "120", &config.Poll.OnCall},
		{"POLL_BREACH_SECONDS", "30", &config.Poll.Breach},
		{"BREACH_MINUTES", "5", &config.BreachAfter},
	}
	for _, iv := range intervals {
		n, err := strconv.Atoi(getEnv(iv.key, iv.def))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", iv.key)
		}
		unit := time.Second
		if iv.key == "BREACH_MINUTES" {
			unit = time.Minute
		}
		*iv.dest = time.Duration(n) * unit
	}

	switch mode := DemoMode(strings.ToLower(getEnv("DEMO_MODE", "auto"))); mode {
	case DemoAuto, DemoOff:
		config.DemoMode = mode
	default:
		return nil, fmt.Errorf("invalid DEMO_MODE %q: want auto or off", mode)
	}

	return config, nil
}

// PollingEnabled reports whether an external API is configured
func (c *Config) PollingEnabled() bool {
	return c.APIBaseURL != ""
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func publicEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "PUBLIC_") || value == "" {
			continue
		}
		out[strings.TrimPrefix(key, "PUBLIC_")] = value
	}
	return out
}
