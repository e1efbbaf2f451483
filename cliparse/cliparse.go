package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/inject-portal/db"
)

// Defaults
const (
	DefaultPort          = 3318
	DefaultDatabase      = "app.db"
	DefaultDatabaseType  = "sqlite"
	DefaultAPIKey        = "YOUR_API_KEY_HERE"
	DefaultAPIServer     = "https://llmailinject.azurewebsites.net"
	DefaultAdminPassword = "changeme123"
	DefaultScenariosFile = "jobs.html"
	DefaultSessionTTL    = 12 * time.Hour
	DefaultLogLevel      = "info"
)

type Config struct {
	Port                 int
	DatabaseURL          string
	DatabaseType         string
	SessionSecret        string
	SessionTTL           time.Duration
	APIKey               string
	APIServer            string
	DefaultAdminPassword string
	ScenariosFile        string
	PasswordCost         int
	LogLevel             string
	ConfigFile           string
}

// fileConfig is the YAML config file layout. Empty values leave the
// setting alone.
type fileConfig struct {
	Port          int    `yaml:"port"`
	Database      string `yaml:"database"`
	DatabaseType  string `yaml:"database_type"`
	SessionSecret string `yaml:"session_secret"`
	SessionTTL    string `yaml:"session_ttl"`
	APIKey        string `yaml:"api_key"`
	APIServer     string `yaml:"api_server"`
	AdminPassword string `yaml:"default_admin_password"`
	ScenariosFile string `yaml:"scenarios_file"`
	PasswordCost  int    `yaml:"password_cost"`
	LogLevel      string `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		Port:                 DefaultPort,
		DatabaseURL:          DefaultDatabase,
		DatabaseType:         DefaultDatabaseType,
		SessionTTL:           DefaultSessionTTL,
		APIKey:               DefaultAPIKey,
		APIServer:            DefaultAPIServer,
		DefaultAdminPassword: DefaultAdminPassword,
		ScenariosFile:        DefaultScenariosFile,
		LogLevel:             DefaultLogLevel,
	}
}

// ParseFlags builds the configuration.
// Precedence, lowest first: defaults, config file, environment, flags.
func ParseFlags(args []string) (Config, error) {
	cfg := defaults()

	fs := pflag.NewFlagSet("inject-portal", pflag.ContinueOnError)

	// Network and storage
	port := fs.IntP("port", "p", DefaultPort, "Server port")
	database := fs.StringP("database", "d", DefaultDatabase, "Database URL or SQLite file")
	databaseType := fs.StringP("database-type", "t", DefaultDatabaseType, "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	sessionSecret := fs.String("session-secret", "", "Session signing secret (prefer env)")
	apiKey := fs.String("api-key", DefaultAPIKey, "Competition API key (prefer env)")

	apiServer := fs.String("api-server", DefaultAPIServer, "Competition API base URL")
	scenariosFile := fs.String("scenarios", DefaultScenariosFile, "Saved scenario list HTML")
	passwordCost := fs.Int("password-cost", 0, "bcrypt cost (0 for the library default)")
	sessionTTL := fs.Duration("session-ttl", DefaultSessionTTL, "Login lifetime")
	logLevel := fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	configFile := fs.String("config", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Config file
	cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	if fs.Changed("config") {
		cfg.ConfigFile = *configFile
	}
	if cfg.ConfigFile != "" {
		if err := applyFile(&cfg, cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	// Environment
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	// Flags that were actually given
	if fs.Changed("port") {
		cfg.Port = *port
	}
	if fs.Changed("database") {
		cfg.DatabaseURL = *database
	}
	if fs.Changed("database-type") {
		cfg.DatabaseType = *databaseType
	}
	if fs.Changed("session-secret") {
		cfg.SessionSecret = *sessionSecret
	}
	if fs.Changed("api-key") {
		cfg.APIKey = *apiKey
	}
	if fs.Changed("api-server") {
		cfg.APIServer = *apiServer
	}
	if fs.Changed("scenarios") {
		cfg.ScenariosFile = *scenariosFile
	}
	if fs.Changed("password-cost") {
		cfg.PasswordCost = *passwordCost
	}
	if fs.Changed("session-ttl") {
		cfg.SessionTTL = *sessionTTL
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	setString(&cfg.DatabaseURL, fc.Database)
	setString(&cfg.DatabaseType, fc.DatabaseType)
	setString(&cfg.SessionSecret, fc.SessionSecret)
	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.APIServer, fc.APIServer)
	setString(&cfg.DefaultAdminPassword, fc.AdminPassword)
	setString(&cfg.ScenariosFile, fc.ScenariosFile)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.PasswordCost != 0 {
		cfg.PasswordCost = fc.PasswordCost
	}
	if fc.SessionTTL != "" {
		ttl, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl in config file: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}

	// DATABASE_FILE is the older name for a SQLite path
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_FILE"))
	setString(&cfg.DatabaseURL, os.Getenv("DATABASE_URL"))
	setString(&cfg.DatabaseType, os.Getenv("DATABASE_TYPE"))

	setString(&cfg.SessionSecret, os.Getenv("SESSION_SECRET"))
	setString(&cfg.APIKey, os.Getenv("COMPETITION_API_KEY"))
	setString(&cfg.APIServer, os.Getenv("API_SERVER"))
	setString(&cfg.DefaultAdminPassword, os.Getenv("DEFAULT_ADMIN_PASSWORD"))
	setString(&cfg.ScenariosFile, os.Getenv("SCENARIOS_FILE"))
	setString(&cfg.LogLevel, os.Getenv("LOG_LEVEL"))

	if costStr := os.Getenv("PASSWORD_COST"); costStr != "" {
		cost, err := strconv.Atoi(costStr)
		if err != nil {
			return errors.New("invalid PASSWORD_COST env variable")
		}
		cfg.PasswordCost = cost
	}
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return errors.New("invalid SESSION_TTL env variable")
		}
		cfg.SessionTTL = ttl
	}
	return nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if _, err := db.ParseDialect(c.DatabaseType); err != nil {
		return err
	}
	// Secrets - MUST be provided
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.DefaultAdminPassword == "" {
		return errors.New("default admin password must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// SlogLevel maps LogLevel onto slog levels
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
