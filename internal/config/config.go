package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Completion service. An empty APIKey is valid and selects the fallback description.
	APIKey            string
	APIURL            string
	Model             string
	CompletionTimeout time.Duration

	ScenesDir       string
	ManimExecutable string
	RenderQuality   string
	RenderTimeout   time.Duration

	AllowedOrigins string
	JWTSecret      string

	DatabaseURL string

	LogLevel string
	LogJSON  bool
}

const (
	DefaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel  = "llama3-8b-8192"
)

// Load reads .env (if present) and then the process environment.
// The returned warnings are non-fatal problems worth logging once a logger exists.
func Load() (*Config, []string) {
	var warnings []string
	if err := godotenv.Load(); err != nil {
		warnings = append(warnings, ".env file not found or could not be loaded")
	}

	cfg := &Config{
		Port: getEnv("PORT", "5000"),

		APIKey:            strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		APIURL:            getEnv("GROQ_API_URL", DefaultAPIURL),
		Model:             getEnv("GROQ_MODEL", DefaultModel),
		CompletionTimeout: getDuration("COMPLETION_TIMEOUT", 30*time.Second, &warnings),

		ScenesDir:       getEnv("SCENES_DIR", "manim_scenes"),
		ManimExecutable: os.Getenv("MANIM_EXECUTABLE"),
		RenderQuality:   strings.ToLower(getEnv("RENDER_QUALITY", "l")),
		RenderTimeout:   getDuration("RENDER_TIMEOUT", 90*time.Second, &warnings),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		JWTSecret:      os.Getenv("JWT_SECRET_KEY"),

		DatabaseURL: databaseURL(),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogJSON:  getBool("LOG_JSON", false),
	}
	if cfg.APIKey == "" {
		warnings = append(warnings, "GROQ_API_KEY not set, animations will use the fallback description")
	}
	return cfg, warnings
}

// HasDatabase reports whether render history should be recorded.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getDuration accepts Go durations ("45s") or a bare number of seconds ("45").
func getDuration(k string, def time.Duration, warnings *[]string) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	*warnings = append(*warnings, fmt.Sprintf("invalid %s %q, using %s", k, v, def))
	return def
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host,
		getEnv("DB_PORT", "5432"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		getEnv("DB_NAME", "animations"),
	)
}
