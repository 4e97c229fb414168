package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TRAVELGUARD_"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Sentinel  SentinelConfig  `koanf:"sentinel"`
	Incidents IncidentsConfig `koanf:"incidents"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	CORSOrigins string `koanf:"cors_origins"`
}

// AllowedOrigins splits the comma separated CORS origin list.
func (s ServerConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type DatabaseConfig struct {
	URL            string `koanf:"url"`
	MigrationsPath string `koanf:"migrations_path"`
	MaxConns       int    `koanf:"max_conns"`
}

type RedisConfig struct {
	Addr         string `koanf:"addr"`
	Password     string `koanf:"password"`
	DB           int    `koanf:"db"`
	Stream       string `koanf:"stream"`
	StreamMaxLen int64  `koanf:"stream_max_len"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LLMConfig selects and configures the chat-completion provider used by
// the semantic classifier.
type LLMConfig struct {
	Provider    string  `koanf:"provider"`
	BaseURL     string  `koanf:"base_url"`
	APIKey      string  `koanf:"api_key"`
	Model       string  `koanf:"model"`
	Region      string  `koanf:"region"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"max_tokens"`
	TimeoutMS   int     `koanf:"timeout_ms"`
}

type SentinelConfig struct {
	MinNotesLength       int `koanf:"min_notes_length"`
	MaxNotesLength       int `koanf:"max_notes_length"`
	MaxDestinationLength int `koanf:"max_destination_length"`
	SoftWatchThreshold   int `koanf:"soft_watch_threshold"`
	ConfidenceFloor      int `koanf:"confidence_floor"`

	// InstructionsToken guards GET /api/v1/security-instructions. Empty
	// leaves the route unmounted.
	InstructionsToken string `koanf:"instructions_token"`
}

type IncidentsConfig struct {
	Sink            string `koanf:"sink"`
	BufferSize      int    `koanf:"buffer_size"`
	BatchSize       int    `koanf:"batch_size"`
	FlushIntervalMS int    `koanf:"flush_interval_ms"`
	AdminToken      string `koanf:"admin_token"`
}

type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`

	// TrustUserHeader keys buckets by X-User-ID. Only for deployments
	// behind a gateway that sets the header itself.
	TrustUserHeader bool `koanf:"trust_user_header"`
}

func Load(configPaths ...string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	_ = k.Load(confmap.Provider(map[string]any{
		"server.port":                     8080,
		"server.host":                     "0.0.0.0",
		"database.max_conns":              10,
		"database.migrations_path":        "migrations",
		"redis.stream":                    "sentinel:incidents",
		"redis.stream_max_len":            100000,
		"log.level":                       "info",
		"log.format":                      "json",
		"llm.provider":                    "openrouter",
		"llm.region":                      "us-east-1",
		"llm.temperature":                 0.1,
		"llm.max_tokens":                  300,
		"llm.timeout_ms":                  8000,
		"sentinel.min_notes_length":       3,
		"sentinel.max_notes_length":       500,
		"sentinel.max_destination_length": 120,
		"sentinel.soft_watch_threshold":   70,
		"sentinel.confidence_floor":       50,
		"incidents.sink":                  "log",
		"incidents.buffer_size":           1024,
		"incidents.batch_size":            50,
		"incidents.flush_interval_ms":     500,
		"ratelimit.enabled":               true,
		"ratelimit.rps":                   1.0,
		"ratelimit.burst":                 5,
		"ratelimit.trust_user_header":     false,
	}, "."), nil)

	// YAML file (optional)
	for _, path := range configPaths {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			continue
		}
	}

	// Environment variables override everything
	// TRAVELGUARD_LLM_API_KEY -> llm.api_key
	_ = k.Load(env.Provider(envPrefix, ".", envKey), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps an environment variable to a koanf path. Only the first
// underscore after the prefix separates section from key, so keys that
// contain underscores stay addressable.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}
