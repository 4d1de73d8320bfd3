// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	engine "github.com/JDasic01/AgentTournament/engine"
)

// ErrInvalid is wrapped by every configuration validation error.
var ErrInvalid = errors.New("invalid configuration")

// Store backends understood by the service.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds the process settings of the agent service.
type Config struct {
	Listen      string        // HTTP listen address for the tick endpoint.
	JWTSecret   string        // HS256 secret used to authenticate the simulation.
	Store       string        // One of StoreMemory, StoreRedis, StorePostgres.
	RedisAddr   string        // host:port of Redis when Store is redis.
	RedisPrefix string        // Key prefix for team state and action logs.
	RedisTTL    time.Duration // Expiry of a team's state; 0 keeps it forever.
	PostgresDSN string        // Connection string when Store is postgres.
	LogLevel    logrus.Level
	LogJSON     bool
	WorldFile   string // Optional YAML overriding world dimensions and symbols.
	Seed        uint64 // 0 seeds agents randomly.
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Listen:      ":8080",
		Store:       StoreMemory,
		RedisAddr:   "localhost:6379",
		RedisPrefix: "agentd",
		LogLevel:    logrus.InfoLevel,
	}
}

// Load reads an optional .env file into the environment and builds a Config
// from AGENTD_* variables on top of Default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	get("AGENTD_LISTEN", &cfg.Listen)
	get("AGENTD_JWT_SECRET", &cfg.JWTSecret)
	get("AGENTD_STORE", &cfg.Store)
	get("AGENTD_REDIS_ADDR", &cfg.RedisAddr)
	get("AGENTD_REDIS_PREFIX", &cfg.RedisPrefix)
	get("AGENTD_POSTGRES_DSN", &cfg.PostgresDSN)
	get("AGENTD_WORLD_FILE", &cfg.WorldFile)

	var ttl, level, logJSON, seed string
	get("AGENTD_REDIS_TTL", &ttl)
	get("AGENTD_LOG_LEVEL", &level)
	get("AGENTD_LOG_JSON", &logJSON)
	get("AGENTD_SEED", &seed)

	if ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("%w: AGENTD_REDIS_TTL: %v", ErrInvalid, err)
		}
		cfg.RedisTTL = d
	}
	if level != "" {
		l, err := logrus.ParseLevel(level)
		if err != nil {
			return Config{}, fmt.Errorf("%w: AGENTD_LOG_LEVEL: %v", ErrInvalid, err)
		}
		cfg.LogLevel = l
	}
	if logJSON != "" {
		b, err := strconv.ParseBool(logJSON)
		if err != nil {
			return Config{}, fmt.Errorf("%w: AGENTD_LOG_JSON: %v", ErrInvalid, err)
		}
		cfg.LogJSON = b
	}
	if seed != "" {
		s, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: AGENTD_SEED: %v", ErrInvalid, err)
		}
		cfg.Seed = s
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis store needs AGENTD_REDIS_ADDR", ErrInvalid)
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres store needs AGENTD_POSTGRES_DSN", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalid, c.Store)
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("%w: negative redis ttl", ErrInvalid)
	}
	return nil
}

// worldFile is the YAML layout of AGENTD_WORLD_FILE: the world's own keys
// plus an optional symbol table.
type worldFile struct {
	engine.World `yaml:",inline"`
	Symbols      map[string]string `yaml:"symbols"`
}

// LoadWorld returns the world dimensions and symbol table. An empty path
// yields the built-in defaults; a file overrides only the fields it sets.
func LoadWorld(path string) (engine.World, engine.Symbols, error) {
	world, syms := engine.DefaultWorld(), engine.DefaultSymbols()
	if path == "" {
		return world, syms, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.World{}, nil, fmt.Errorf("read world file: %w", err)
	}
	return ParseWorld(data)
}

// ParseWorld decodes a world YAML document on top of the defaults.
func ParseWorld(data []byte) (engine.World, engine.Symbols, error) {
	// Keys absent from the document keep their default.
	wf := worldFile{World: engine.DefaultWorld()}
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return engine.World{}, nil, fmt.Errorf("%w: world file: %v", ErrInvalid, err)
	}
	world := wf.World
	if err := world.Validate(); err != nil {
		return engine.World{}, nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	syms := engine.DefaultSymbols().Merge(engine.Symbols(wf.Symbols))

	// Both colours must resolve to a consistent palette.
	for _, color := range []string{engine.ColorRed, engine.ColorBlue} {
		if _, err := syms.Palette(color); err != nil {
			return engine.World{}, nil, fmt.Errorf("%w: symbols: %v", ErrInvalid, err)
		}
	}
	return world, syms, nil
}
