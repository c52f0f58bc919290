// Package config exposes process configuration read from the environment,
// an optional .env file and an optional TOML file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

const (
	defaultPort       = 8000
	defaultTokenTTL   = 30 * time.Minute
	defaultAdminEmail = "admin@example.com"
	devSecretKey      = "dev-secret-change-me"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("USERHUB_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("USERHUB_DEBUG") == "true"
}

func GetEnvironment() Environment {
	switch Environment(strings.ToLower(os.Getenv("USERHUB_ENV"))) {
	case Production:
		return Production
	default:
		return Development
	}
}

func IsDevelopment() bool {
	return GetEnvironment() == Development
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("USERHUB_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/userhub"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("USERHUB_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("USERHUB_LISTEN")
}

func GetPort() int {
	port, err := strconv.Atoi(os.Getenv("USERHUB_PORT"))
	if err != nil || port <= 0 || port > 65535 {
		return defaultPort
	}
	return port
}

// GetSecretKey returns the token signing secret. Development mode falls back
// to a fixed key so the server starts without setup; production has no
// fallback and CheckSecurity rejects an empty value.
func GetSecretKey() string {
	secret := os.Getenv("USERHUB_SECRET_KEY")
	if secret == "" && IsDevelopment() {
		return devSecretKey
	}
	return secret
}

func GetTokenTTL() time.Duration {
	ttl, err := time.ParseDuration(os.Getenv("USERHUB_TOKEN_TTL"))
	if err != nil || ttl <= 0 {
		return defaultTokenTTL
	}
	return ttl
}

// GetBcryptCost returns 0 when unset; the hasher treats 0 as bcrypt.DefaultCost.
func GetBcryptCost() int {
	cost, err := strconv.Atoi(os.Getenv("USERHUB_BCRYPT_COST"))
	if err != nil {
		return 0
	}
	return cost
}

// GetRedisAddr returns the external redis address. Empty means the embedded
// redis is used for rate-limit counters.
func GetRedisAddr() string {
	return os.Getenv("USERHUB_REDIS_ADDR")
}

func GetCORSOrigins() []string {
	raw := os.Getenv("USERHUB_CORS_ORIGINS")
	if raw == "" {
		if IsDevelopment() {
			return []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
				"http://localhost:5173",
				"http://localhost:8080",
				"http://localhost:4200",
				"http://localhost:3001",
			}
		}
		return []string{"https://myapp.com", "https://www.myapp.com"}
	}
	return splitList(raw)
}

// GetTrustedProxies returns the proxy addresses or CIDRs whose
// X-Forwarded-For header is believed. Empty means client addresses come
// from the socket peer only.
func GetTrustedProxies() []string {
	return splitList(os.Getenv("USERHUB_TRUSTED_PROXIES"))
}

func splitList(raw string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func GetAdminEmail() string {
	email := os.Getenv("USERHUB_ADMIN_EMAIL")
	if email == "" {
		return defaultAdminEmail
	}
	return strings.ToLower(strings.TrimSpace(email))
}

// GetAdminPassword returns the seed admin password, empty when a random one
// should be generated.
func GetAdminPassword() string {
	return os.Getenv("USERHUB_ADMIN_PASSWORD")
}

// CheckSecurity reports settings that must not reach production.
func CheckSecurity() error {
	if GetEnvironment() != Production {
		return nil
	}
	secret := GetSecretKey()
	if secret == "" {
		return fmt.Errorf("USERHUB_SECRET_KEY must be set in production")
	}
	if secret == devSecretKey {
		return fmt.Errorf("USERHUB_SECRET_KEY uses the development key")
	}
	return nil
}
