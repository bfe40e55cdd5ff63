package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Duplicate vote policies
const (
	DuplicateReturn = "return"
	DuplicateReject = "reject"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secrets
	SessionSalt string
	IPHashSalt  string

	DuplicateVotePolicy string
	SweepInterval       time.Duration

	LogLevel  string
	LogFormat string
}

// ParseFlags reads flags, then an optional .env file, then the environment.
// CLI flags win over environment variables.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, sweep string

	fs := flag.NewFlagSet("opencircle", flag.ContinueOnError)

	fs.StringVar(&envFile, "env-file", ".env", "Path to a .env file (ignored if missing)")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSalt, "session-salt", "", "Session token salt (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (defaults to the session salt)")

	// Poll behaviour
	fs.StringVar(&cfg.DuplicateVotePolicy, "duplicate-votes", "", "Duplicate vote policy (return or reject)")
	fs.StringVar(&sweep, "sweep-interval", "", "Expiry sweep interval, e.g. 1m (0 disables)")

	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - session salt MUST be provided
	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SALT")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SALT required")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = cfg.SessionSalt
	}

	if cfg.DuplicateVotePolicy == "" {
		cfg.DuplicateVotePolicy = os.Getenv("DUPLICATE_VOTE_POLICY")
	}
	switch cfg.DuplicateVotePolicy {
	case "":
		cfg.DuplicateVotePolicy = DuplicateReturn
	case DuplicateReturn, DuplicateReject:
	default:
		return Config{}, fmt.Errorf("invalid duplicate vote policy %q (want return or reject)", cfg.DuplicateVotePolicy)
	}

	if sweep == "" {
		sweep = os.Getenv("SWEEP_INTERVAL")
	}
	if sweep != "" {
		d, err := time.ParseDuration(sweep)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid sweep interval %q", sweep)
		}
		cfg.SweepInterval = d
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}

	return cfg, nil
}
