package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// sqlitePragmas are appended to the SQLite file path.
const sqlitePragmas = "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"

// DatabaseConfig selects the user store backend.
type DatabaseConfig struct {
	Type     DatabaseType   `toml:"type"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
	TimeZone string `toml:"time_zone"`
}

// GetDSN returns the driver connection string. Postgres credentials are
// URL-escaped so passwords may hold any character.
func (c *DatabaseConfig) GetDSN() string {
	if c.IsPostgreSQL() {
		p := c.Postgres
		q := url.Values{}
		q.Set("sslmode", p.SSLMode)
		q.Set("TimeZone", p.TimeZone)
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
			Path:     "/" + p.Database,
			RawQuery: q.Encode(),
		}
		return u.String()
	}
	return c.SQLite.Path + "?" + sqlitePragmas
}

// GetDefaultDatabaseConfig returns a SQLite config at GetDBPath with local
// postgres defaults filled in.
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: GetDBPath()},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "userhub",
			Username: "userhub",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
	}
}

// GetDatabaseConfig returns the defaults overlaid with USERHUB_DB_* variables.
func GetDatabaseConfig() *DatabaseConfig {
	c := GetDefaultDatabaseConfig()
	if t := os.Getenv("USERHUB_DB_TYPE"); t != "" {
		c.Type = DatabaseType(t)
	}
	if v, err := strconv.Atoi(os.Getenv("USERHUB_DB_PORT")); err == nil {
		c.Postgres.Port = v
	}
	overlay := map[string]*string{
		"USERHUB_DB_HOST":     &c.Postgres.Host,
		"USERHUB_DB_NAME":     &c.Postgres.Database,
		"USERHUB_DB_USER":     &c.Postgres.Username,
		"USERHUB_DB_PASSWORD": &c.Postgres.Password,
		"USERHUB_DB_SSLMODE":  &c.Postgres.SSLMode,
		"USERHUB_DB_TIMEZONE": &c.Postgres.TimeZone,
	}
	for key, dst := range overlay {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	return c
}

// ValidateConfig reports every problem with the selected backend at once.
func (c *DatabaseConfig) ValidateConfig() error {
	var errs []error
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite path is empty"))
		}
	case DatabaseTypePostgreSQL:
		p := c.Postgres
		if p.Host == "" {
			errs = append(errs, errors.New("postgres host is empty"))
		}
		if p.Database == "" {
			errs = append(errs, errors.New("postgres database is empty"))
		}
		if p.Username == "" {
			errs = append(errs, errors.New("postgres username is empty"))
		}
		if p.Port < 1 || p.Port > 65535 {
			errs = append(errs, fmt.Errorf("postgres port %d out of range", p.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported database type %q", c.Type))
	}
	return errors.Join(errs...)
}

func (c *DatabaseConfig) IsPostgreSQL() bool { return c.Type == DatabaseTypePostgreSQL }

func (c *DatabaseConfig) IsSQLite() bool { return c.Type == DatabaseTypeSQLite }

// EnsureDirectoryExists creates the parent directory of the SQLite file.
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if !c.IsSQLite() {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.SQLite.Path), 0o755)
}
