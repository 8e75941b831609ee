package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DBHost           string
	DBPort           int
	DBName           string
	DBUser           string
	DBPassword       string
	DBSSLMode        string
	DBTimeZone       string
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration

	// Logging
	LogLevel string

	// Metrics
	MetricsTextfile string
}

// LoadEnvFile はdotenv形式のファイルを環境変数に読み込む。
// ファイルが存在しない場合はエラーにしない。既に設定済みの環境変数は上書きしない。
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DBHost = os.Getenv("DB_HOST")
	if cfg.DBHost == "" {
		missing = append(missing, "DB_HOST")
	}

	cfg.DBName = os.Getenv("DB_NAME")
	if cfg.DBName == "" {
		missing = append(missing, "DB_NAME")
	}

	cfg.DBUser = os.Getenv("DB_USER")
	if cfg.DBUser == "" {
		missing = append(missing, "DB_USER")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DBPassword = os.Getenv("PASSWORD")
	cfg.DBPort = getEnvInt("DB_PORT", 5432)
	cfg.DBSSLMode = getEnvString("DB_SSLMODE", "disable")
	cfg.DBTimeZone = getEnvString("DB_TIMEZONE", "Europe/Berlin")
	cfg.ConnectTimeout = getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second)
	cfg.StatementTimeout = getEnvDuration("DB_STATEMENT_TIMEOUT", 30*time.Second)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.MetricsTextfile = getEnvString("METRICS_TEXTFILE", "")

	if _, err := time.LoadLocation(cfg.DBTimeZone); err != nil {
		return nil, fmt.Errorf("invalid DB_TIMEZONE %q: %w", cfg.DBTimeZone, err)
	}

	return cfg, nil
}

// Location はDB_TIMEZONEに対応するtime.Locationを返す。
// Loadで検証済みのため、失敗時はUTCにフォールバックする。
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DBTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL はlib/pqに渡すPostgreSQLの接続URLを組み立てる。
// ユーザー名とパスワードはURLエンコードされる。
func (c *Config) DatabaseURL() string {
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if c.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(c.ConnectTimeout.Seconds())))
	}
	// lib/pqは未知のパラメータをランタイムパラメータとしてサーバーに送る。
	if c.StatementTimeout > 0 {
		q.Set("statement_timeout", strconv.FormatInt(c.StatementTimeout.Milliseconds(), 10))
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// MaskDatabaseURL はデータベースURLの認証情報をマスクする。
func MaskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User != nil {
		u.User = url.User("***")
	}
	return u.String()
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
