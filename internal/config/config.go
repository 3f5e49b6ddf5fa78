package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Token storage backends supported by the client.
const (
	TokenBackendFile    = "file"
	TokenBackendKeyring = "keyring"
)

type Config struct {
	// Server-side settings
	DatabaseDSN   string `env:"DATABASE_URI"`
	AuthSecret    string `env:"AUTH_SECRET"`
	DocumentMaxMB int    `env:"DOCUMENT_MAX_MB"`

	// Хранилище документов (квитанции, договоры). Если S3Bucket пуст, документы лежат в БД.
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3BaseEndpoint string `env:"S3_ENDPOINT"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`

	// Генерация сводки недельного анализа. Без ключа используется шаблон.
	LLMAPIKey string `env:"LLM_API_KEY"`
	LLMModel  string `env:"LLM_MODEL"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL    string `env:"-"`
	ClientDBPath string `env:"CLIENT_DB_PATH"`
	TokenBackend string `env:"TOKEN_BACKEND"`
	PrefsFile    string `env:"PREFS_FILE"`
	Verbose      bool   `env:"VERBOSE"`
	Version      bool   `env:"-"` // show client version and exit (flag only)
}

var hostPortRe = regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres://… или путь к файлу sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.IntVar(&cfg.DocumentMaxMB, "document-max-mb", cfg.DocumentMaxMB, "максимальный размер документа, МБ")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the PsyDesk server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "base directory of the per-user entry cache")
	flag.StringVar(&cfg.TokenBackend, "token-backend", cfg.TokenBackend, "where to keep the auth token: file|keyring")
	flag.StringVar(&cfg.PrefsFile, "prefs", cfg.PrefsFile, "path to client preferences (YAML)")
	flag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log HTTP traffic to stderr")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// applyDefaults заполняет пустые поля и вычисляет ServerURL.
func (cfg *Config) applyDefaults() {
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "psydesk.db"
	}
	if cfg.DocumentMaxMB <= 0 {
		cfg.DocumentMaxMB = 20
	}
	if cfg.S3Region == "" {
		cfg.S3Region = "us-east-1"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	cfg.TokenBackend = strings.ToLower(strings.TrimSpace(cfg.TokenBackend))
	if cfg.TokenBackend != TokenBackendKeyring {
		cfg.TokenBackend = TokenBackendFile
	}

	// Fill client defaults if empty
	if cfg.ClientDBPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.ClientDBPath = filepath.Join(dir, "PsyDesk", "users")
		}
	}
	if cfg.PrefsFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.PrefsFile = filepath.Join(dir, "PsyDesk", "prefs.yaml")
		}
	}
}
