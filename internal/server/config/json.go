package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/budgetkeeper/internal/flagx"
	"github.com/dmitrijs2005/budgetkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "15m" strings and integer nanoseconds.
type JsonConfig struct {
	Environment                 string         `json:"environment"`
	HTTPAddr                    string         `json:"http_addr"`
	GRPCAddr                    string         `json:"grpc_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	DBDriver                    string         `json:"db_driver"`
	SQLitePath                  string         `json:"db_sqlite_path"`
	DBHost                      string         `json:"db_host"`
	DBPort                      int            `json:"db_port"`
	DBName                      string         `json:"db_name"`
	DBUser                      string         `json:"db_user"`
	DBPassword                  string         `json:"db_password"`
	DatabaseDSN                 string         `json:"database_dsn"`
	LogLevel                    string         `json:"log_level"`
	CascadeSoftDelete           bool           `json:"cascade_soft_delete"`
	EnforceRoles                bool           `json:"enforce_roles"`
	PINMaxAttempts              int            `json:"pin_max_attempts"`
	PINLockoutDuration          timex.Duration `json:"pin_lockout_duration"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
}

// parseJSON overlays the file named by -c/-config onto config. Keys absent
// from the file keep their current values.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJSON(config)
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	fromJSON(config, c)

	return nil
}

func toJSON(config *Config) *JsonConfig {
	return &JsonConfig{
		Environment:                 config.Environment,
		HTTPAddr:                    config.HTTPAddr,
		GRPCAddr:                    config.GRPCAddr,
		SecretKey:                   config.SecretKey,
		AccessTokenValidityDuration: timex.Duration{Duration: config.AccessTokenValidityDuration},
		DBDriver:                    config.DBDriver,
		SQLitePath:                  config.SQLitePath,
		DBHost:                      config.DBHost,
		DBPort:                      config.DBPort,
		DBName:                      config.DBName,
		DBUser:                      config.DBUser,
		DBPassword:                  config.DBPassword,
		DatabaseDSN:                 config.DatabaseDSN,
		LogLevel:                    config.LogLevel,
		CascadeSoftDelete:           config.CascadeSoftDelete,
		EnforceRoles:                config.EnforceRoles,
		PINMaxAttempts:              config.PINMaxAttempts,
		PINLockoutDuration:          timex.Duration{Duration: config.PINLockoutDuration},
		CORSAllowedOrigins:          config.CORSAllowedOrigins,
		S3RootUser:                  config.S3RootUser,
		S3RootPassword:              config.S3RootPassword,
		S3Bucket:                    config.S3Bucket,
		S3Region:                    config.S3Region,
		S3BaseEndpoint:              config.S3BaseEndpoint,
	}
}

func fromJSON(config *Config, c *JsonConfig) {
	config.Environment = c.Environment
	config.HTTPAddr = c.HTTPAddr
	config.GRPCAddr = c.GRPCAddr
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.DBDriver = c.DBDriver
	config.SQLitePath = c.SQLitePath
	config.DBHost = c.DBHost
	config.DBPort = c.DBPort
	config.DBName = c.DBName
	config.DBUser = c.DBUser
	config.DBPassword = c.DBPassword
	config.DatabaseDSN = c.DatabaseDSN
	config.LogLevel = c.LogLevel
	config.CascadeSoftDelete = c.CascadeSoftDelete
	config.EnforceRoles = c.EnforceRoles
	config.PINMaxAttempts = c.PINMaxAttempts
	config.PINLockoutDuration = c.PINLockoutDuration.Duration
	config.CORSAllowedOrigins = c.CORSAllowedOrigins
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
