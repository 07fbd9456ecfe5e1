package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/qrgen/internal/logger"
	"github.com/nkiryanov/qrgen/internal/service/qrcode"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
	defaultDemoDelay    = 500 * time.Millisecond
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	// Optional: without it the service runs in demo mode
	DatabaseDSN string

	// Secret key
	// Client storage cookies are signed with it
	SecretKey string

	// Environment
	Environment string

	// Backend mode: 'live' or 'demo'
	// If empty it is 'live' when database is set, 'demo' otherwise
	Mode string

	// Simulated latency of demo mode
	DemoDelay time.Duration

	// Send cookies over https only
	CookieSecure bool
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		Environment: defaultEnvironment,
		DemoDelay:   defaultDemoDelay,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":   setString(&c.ListenAddr),
		"DATABASE_URI":  setString(&c.DatabaseDSN),
		"SECRET_KEY":    setString(&c.SecretKey),
		"LOG_LEVEL":     setString(&c.LogLevel),
		"ENVIRONMENT":   setString(&c.Environment),
		"BACKEND_MODE":  setString(&c.Mode),
		"DEMO_DELAY":    setDuration(&c.DemoDelay),
		"COOKIE_SECURE": setBool(&c.CookieSecure),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("qrgen", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.Mode, "mode", "m", c.Mode, "Backend mode (live, demo). Default depends on database presence")
	fs.DurationVar(&c.DemoDelay, "demo-delay", c.DemoDelay, "Simulated latency of demo mode")
	fs.BoolVar(&c.CookieSecure, "cookie-secure", c.CookieSecure, "Send cookies over https only")

	return fs.Parse(args)
}

// BackendMode resolves the mode the service has to run in
func (c *Config) BackendMode() (qrcode.Mode, error) {
	if c.Mode == "" {
		if c.DatabaseDSN != "" {
			return qrcode.ModeLive, nil
		}
		return qrcode.ModeDemo, nil
	}

	mode, err := qrcode.ParseMode(c.Mode)
	if err != nil {
		return "", err
	}
	if mode == qrcode.ModeLive && c.DatabaseDSN == "" {
		return "", errors.New("live mode requires database connection string")
	}

	return mode, nil
}
