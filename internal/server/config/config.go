// Package config handles configuration for the budgetkeeper server:
// defaults, .env and environment variables, a JSON overlay and
// command-line flags, validated once all layers are applied.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/filex"
	"github.com/go-playground/validator/v10"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds runtime settings for the budgetkeeper server.
type Config struct {
	Environment string `validate:"oneof=development production"`
	HTTPAddr    string `validate:"required"`
	GRPCAddr    string `validate:"required"`

	SecretKey                   string        `validate:"required"`
	AccessTokenValidityDuration time.Duration `validate:"gt=0"`

	DBDriver    string `validate:"oneof=sqlite postgres"`
	SQLitePath  string `validate:"required_if=DBDriver sqlite"`
	DBHost      string `validate:"required_if=DBDriver postgres"`
	DBPort      int    `validate:"required_if=DBDriver postgres,gte=0,lte=65535"`
	DBName      string `validate:"required_if=DBDriver postgres"`
	DBUser      string `validate:"required_if=DBDriver postgres"`
	DBPassword  string
	DatabaseDSN string

	LogLevel string `validate:"oneof=debug info warn error"`

	// CascadeSoftDelete makes user remove/recover carry the profile and
	// security rows along.
	CascadeSoftDelete bool
	// EnforceRoles requires an admin token on admin routes.
	EnforceRoles bool

	PINMaxAttempts     int           `validate:"gte=1"`
	PINLockoutDuration time.Duration `validate:"gt=0"`

	CORSAllowedOrigins []string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string `validate:"omitempty,url"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.Environment = EnvDevelopment
	c.HTTPAddr = ":3000"
	c.GRPCAddr = ":50051"
	c.SecretKey = "dev-secret-key"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.DBDriver = DriverSQLite
	c.SQLitePath = "config/db/db.sqlite3"
	c.DBPort = 5432
	c.LogLevel = "info"
	c.PINMaxAttempts = 5
	c.PINLockoutDuration = 15 * time.Minute
	c.CORSAllowedOrigins = []string{"*"}
	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, .env and the environment, the
// optional JSON file given with -c/-config and finally command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], os.Getenv)
}

func load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, getenv); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Environment == EnvProduction && c.SecretKey == "dev-secret-key" {
		return fmt.Errorf("invalid config: default secret key in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Postgres reports whether the configured driver is PostgreSQL.
func (c *Config) Postgres() bool {
	return c.DBDriver == DriverPostgres
}

// DSN returns DatabaseDSN when set, otherwise a connection string derived
// from the driver settings. For sqlite the parent directory of the database
// file is created.
func (c *Config) DSN() (string, error) {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN, nil
	}

	if c.Postgres() {
		sslmode := "disable"
		if c.IsProduction() {
			sslmode = "require"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=" + sslmode,
		}
		return u.String(), nil
	}

	path, err := filex.EnsureParentDir(c.SQLitePath)
	if err != nil {
		return "", fmt.Errorf("sqlite path: %w", err)
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
}
