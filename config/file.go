package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors the USERHUB_* environment variables in a TOML file.
type FileConfig struct {
	Env         string         `toml:"env"`
	Debug       bool           `toml:"debug"`
	LogLevel    string         `toml:"log_level"`
	LogFolder   string         `toml:"log_folder"`
	DBFolder    string         `toml:"db_folder"`
	Listen      string         `toml:"listen"`
	Port        int            `toml:"port"`
	SecretKey   string         `toml:"secret_key"`
	TokenTTL    string         `toml:"token_ttl"`
	BcryptCost  int            `toml:"bcrypt_cost"`
	RedisAddr   string         `toml:"redis_addr"`
	CORSOrigins []string       `toml:"cors_origins"`
	AdminEmail  string         `toml:"admin_email"`
	Database    DatabaseConfig `toml:"database"`
}

// Load reads .env from the working directory and the TOML file named by
// USERHUB_CONFIG, exporting their values into the environment. Variables
// already present in the environment are never overwritten, so the
// precedence is env > .env > TOML file > built-in defaults.
func Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	path := os.Getenv("USERHUB_CONFIG")
	if path == "" {
		return nil
	}
	fc, err := ReadFile(path)
	if err != nil {
		return err
	}
	for key, value := range fc.envs() {
		if _, ok := os.LookupEnv(key); ok || value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile parses a TOML configuration file.
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	fc := &FileConfig{}
	if err := toml.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

func (f *FileConfig) envs() map[string]string {
	m := map[string]string{
		"USERHUB_ENV":         f.Env,
		"USERHUB_LOG_LEVEL":   f.LogLevel,
		"USERHUB_LOG_FOLDER":  f.LogFolder,
		"USERHUB_DB_FOLDER":   f.DBFolder,
		"USERHUB_LISTEN":      f.Listen,
		"USERHUB_SECRET_KEY":  f.SecretKey,
		"USERHUB_TOKEN_TTL":   f.TokenTTL,
		"USERHUB_REDIS_ADDR":  f.RedisAddr,
		"USERHUB_ADMIN_EMAIL": f.AdminEmail,
		"USERHUB_DB_TYPE":     string(f.Database.Type),
		"USERHUB_DB_HOST":     f.Database.Postgres.Host,
		"USERHUB_DB_NAME":     f.Database.Postgres.Database,
		"USERHUB_DB_USER":     f.Database.Postgres.Username,
		"USERHUB_DB_PASSWORD": f.Database.Postgres.Password,
		"USERHUB_DB_SSLMODE":  f.Database.Postgres.SSLMode,
		"USERHUB_DB_TIMEZONE": f.Database.Postgres.TimeZone,
	}
	if f.Debug {
		m["USERHUB_DEBUG"] = "true"
	}
	if f.Port > 0 {
		m["USERHUB_PORT"] = strconv.Itoa(f.Port)
	}
	if f.BcryptCost > 0 {
		m["USERHUB_BCRYPT_COST"] = strconv.Itoa(f.BcryptCost)
	}
	if f.Database.Postgres.Port > 0 {
		m["USERHUB_DB_PORT"] = strconv.Itoa(f.Database.Postgres.Port)
	}
	if len(f.CORSOrigins) > 0 {
		m["USERHUB_CORS_ORIGINS"] = strings.Join(f.CORSOrigins, ",")
	}
	return m
}
