package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto config, after loading a .env
// file from the working directory when one exists.
func parseEnv(config *Config, getenv func(string) string) error {
	_ = godotenv.Load()

	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	str("APP_ENV", &config.Environment)
	str("API_ADDR", &config.HTTPAddr)
	if p := getenv("API_PORT"); p != "" && getenv("API_ADDR") == "" {
		config.HTTPAddr = ":" + p
	}
	str("GRPC_ADDR", &config.GRPCAddr)
	str("API_SECRET_KEY", &config.SecretKey)
	str("DB_DRIVER", &config.DBDriver)
	str("DB_SQLITE_PATH", &config.SQLitePath)
	str("DB_HOST", &config.DBHost)
	str("DB_NAME", &config.DBName)
	str("DB_USER", &config.DBUser)
	str("DB_PASSWORD", &config.DBPassword)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("LOG_LEVEL", &config.LogLevel)
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)

	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}

	ints := map[string]*int{
		"DB_PORT":          &config.DBPort,
		"PIN_MAX_ATTEMPTS": &config.PINMaxAttempts,
	}
	for key, dst := range ints {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL":     &config.AccessTokenValidityDuration,
		"PIN_LOCKOUT_DURATION": &config.PINLockoutDuration,
	}
	for key, dst := range durations {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = d
		}
	}

	bools := map[string]*bool{
		"CASCADE_SOFT_DELETE": &config.CascadeSoftDelete,
		"ENFORCE_ROLES":       &config.EnforceRoles,
	}
	for key, dst := range bools {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("env %s: %w", key, err)
			}
			*dst = b
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
