package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/danielhkuo/tokichan/models"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	EnvFile      string

	SessionSecret string
	CookieSecure  bool

	LogLevel  string
	LogPretty bool

	Storage        string
	UploadDir      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	UploadLimit    int64
	AllowedMIMEs   []string
	PostsPerMinute int
	TrustedProxies []netip.Prefix

	CaptchaPoolSize int
	CaptchaInterval time.Duration
	CaptchaLength   int
	CaptchaWidth    int
	CaptchaHeight   int

	Boards []models.Board
}

// Storage backends
const (
	StorageFS    = "fs"
	StorageMinio = "minio"
)

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	flags := flag.NewFlagSet("tokichan", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	flags.StringVar(&cfg.EnvFile, "env-file", "", "Path of an optional .env file")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	flags.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.Storage, "storage", "", "Upload storage (fs or minio)")
	flags.StringVar(&cfg.UploadDir, "upload-dir", "", "Upload directory for fs storage")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables that are already set
	if cfg.EnvFile == "" {
		cfg.EnvFile = envOr("ENV_FILE", ".env")
	}
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	var err error
	if cfg.CookieSecure, err = envBool("COOKIE_SECURE", true); err != nil {
		return Config{}, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogPretty, err = envBool("LOG_PRETTY", true); err != nil {
		return Config{}, err
	}

	if cfg.Storage == "" {
		cfg.Storage = envOr("STORAGE", StorageFS)
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = envOr("UPLOAD_DIR", "./.tmp")
	}
	switch cfg.Storage {
	case StorageFS:
	case StorageMinio:
		cfg.MinioEndpoint = envOr("MINIO_ENDPOINT", "localhost:9000")
		cfg.MinioAccessKey = envOr("MINIO_ACCESS_KEY", "minioadmin")
		cfg.MinioSecretKey = envOr("MINIO_SECRET_KEY", "minioadmin")
		cfg.MinioBucket = envOr("MINIO_BUCKET", "tokichan-media")
		if cfg.MinioUseSSL, err = envBool("MINIO_USE_SSL", false); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}

	limit, err := humanize.ParseBytes(envOr("UPLOAD_LIMIT", "10MiB"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid UPLOAD_LIMIT: %w", err)
	}
	cfg.UploadLimit = int64(limit)

	cfg.AllowedMIMEs = splitList(os.Getenv("ALLOWED_MIMES"))

	if cfg.PostsPerMinute, err = envInt("POST_RATE", 6); err != nil {
		return Config{}, err
	}
	if cfg.TrustedProxies, err = ParseProxies(os.Getenv("TRUSTED_PROXIES")); err != nil {
		return Config{}, err
	}

	if cfg.CaptchaPoolSize, err = envInt("CAPTCHA_POOL_SIZE", 5); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaInterval, err = envDuration("CAPTCHA_ROTATE", time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaLength, err = envInt("CAPTCHA_LENGTH", 4); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaWidth, err = envInt("CAPTCHA_WIDTH", 120); err != nil {
		return Config{}, err
	}
	if cfg.CaptchaHeight, err = envInt("CAPTCHA_HEIGHT", 40); err != nil {
		return Config{}, err
	}

	if cfg.Boards, err = ParseBoards(envOr("BOARDS", "b:Random")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// reservedBoards collide with fixed routes
var reservedBoards = map[string]bool{"recent": true, "media": true, "health": true}

// ParseBoards reads a "name:Title,name:Title" list
func ParseBoards(s string) ([]models.Board, error) {
	var boards []models.Board
	for _, item := range splitList(s) {
		name, title, ok := strings.Cut(item, ":")
		name, title = strings.TrimSpace(name), strings.TrimSpace(title)
		if !ok || name == "" || title == "" {
			return nil, fmt.Errorf("invalid board %q (want name:Title)", item)
		}
		if strings.ContainsAny(name, "/. ") || reservedBoards[name] {
			return nil, fmt.Errorf("invalid board name %q", name)
		}
		boards = append(boards, models.Board{Name: name, Title: title})
	}
	return boards, nil
}

// ParseProxies reads a comma list of addresses or CIDR ranges
func ParseProxies(s string) ([]netip.Prefix, error) {
	var proxies []netip.Prefix
	for _, item := range splitList(s) {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
			}
			proxies = append(proxies, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", item, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable", key)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
