// Package config exposes process-wide settings read from the environment
// (optionally seeded from a .env file) once at start-up.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
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

// LoadEnv reads key/value pairs from the given files (".env" when none are
// given) into the process environment. Variables already set win, and a
// missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

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
	logLevel := os.Getenv("FOLIO_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("FOLIO_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("FOLIO_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/folio"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("FOLIO_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetSecretKey returns the key used to sign and encrypt session cookies.
func GetSecretKey() string {
	return os.Getenv("SECRET_KEY")
}

func GetListen() string {
	return os.Getenv("FOLIO_LISTEN")
}

func GetPort() int {
	return getInt("FOLIO_PORT", 5000)
}

// GetAdminID returns the identifier of the only user allowed to change the
// project catalog. The first registered account holds it unless overridden.
func GetAdminID() int {
	return getInt("FOLIO_ADMIN_ID", 1)
}

// GetSessionMaxAge returns the session lifetime in minutes; 0 keeps the
// cookie for the browser session only.
func GetSessionMaxAge() int {
	return getInt("FOLIO_SESSION_MAX_AGE", 0)
}

func GetResumePath() string {
	p := os.Getenv("FOLIO_RESUME_PATH")
	if p == "" {
		p = "static/assets/files/resume.pdf"
	}
	return p
}

// GetLoginRateLimit returns how many login or sign-up submissions one client
// may make per minute. It only applies when Redis is configured; 0 disables it.
func GetLoginRateLimit() int {
	return getInt("FOLIO_LOGIN_RATE_LIMIT", 10)
}

func IsRegistrationEnabled() bool {
	return getBool("FOLIO_REGISTRATION", true)
}

func IsMetricsEnabled() bool {
	return getBool("FOLIO_METRICS", false)
}

func GetRedisAddr() string {
	return os.Getenv("FOLIO_REDIS_ADDR")
}

func GetRedisPassword() string {
	return os.Getenv("FOLIO_REDIS_PASSWORD")
}

func GetWebDomain() string {
	return os.Getenv("FOLIO_WEB_DOMAIN")
}

func GetCertFile() string {
	return os.Getenv("FOLIO_CERT_FILE")
}

func GetKeyFile() string {
	return os.Getenv("FOLIO_KEY_FILE")
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
