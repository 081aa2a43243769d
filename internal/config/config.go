package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config — общая конфигурация приложения
// комментарии КРАТКИЕ и на русском; логи — на английском
// токен читается только из окружения

type Config struct {
	Platform        string
	Token           string
	DownloadDir     string
	YtDlpPath       string
	FFmpegPath      string
	HTTPProxy       string
	MaxFileSize     string
	Concurrency     int
	CleanupTTLHours int
	CmdTimeoutSec   int
}

// поддерживаемые платформы
const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

// fileConfig — необязательный YAML-файл (BOT_CONFIG), без токенов
type fileConfig struct {
	Platform        string `yaml:"platform"`
	DownloadDir     string `yaml:"download_dir"`
	YtDlpPath       string `yaml:"ytdlp_path"`
	FFmpegPath      string `yaml:"ffmpeg_path"`
	HTTPProxy       string `yaml:"http_proxy"`
	MaxFileSize     string `yaml:"max_filesize"`
	Concurrency     *int   `yaml:"concurrency"`
	CleanupTTLHours *int   `yaml:"cleanup_ttl_hours"`
	CmdTimeoutSec   *int   `yaml:"cmd_timeout_sec"`
}

// Default — значения по умолчанию
func Default() *Config {
	return &Config{
		Platform:        PlatformTelegram,
		DownloadDir:     "./downloads",
		MaxFileSize:     "25M",
		CleanupTTLHours: 12,
	}
}

// TokenEnv — имя переменной окружения с токеном для платформы
func TokenEnv(platform string) string {
	if platform == PlatformDiscord {
		return "DISCORD_BOT_TOKEN"
	}
	return "TELEGRAM_TOKEN"
}

// Load — загрузка конфигурации: .env, затем YAML (если задан), затем окружение
// отсутствие токена ошибкой не считается
func Load() (*Config, error) {
	_ = loadDotEnv(".env") // необязательно

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("BOT_CONFIG")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	cfg.Platform = strings.ToLower(strings.TrimSpace(cfg.Platform))
	switch cfg.Platform {
	case PlatformTelegram, PlatformDiscord:
	default:
		return nil, fmt.Errorf("unknown platform %q", cfg.Platform)
	}
	cfg.Token = strings.TrimSpace(os.Getenv(TokenEnv(cfg.Platform)))

	// создать директорию загрузок
	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	// нормализуем путь
	d, err := filepath.Abs(cfg.DownloadDir)
	if err == nil {
		cfg.DownloadDir = d
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	c.Platform = firstNonEmpty(fc.Platform, c.Platform)
	c.DownloadDir = firstNonEmpty(fc.DownloadDir, c.DownloadDir)
	c.YtDlpPath = firstNonEmpty(fc.YtDlpPath, c.YtDlpPath)
	c.FFmpegPath = firstNonEmpty(fc.FFmpegPath, c.FFmpegPath)
	c.HTTPProxy = firstNonEmpty(fc.HTTPProxy, c.HTTPProxy)
	c.MaxFileSize = firstNonEmpty(fc.MaxFileSize, c.MaxFileSize)
	if fc.Concurrency != nil { c.Concurrency = *fc.Concurrency }
	if fc.CleanupTTLHours != nil { c.CleanupTTLHours = *fc.CleanupTTLHours }
	if fc.CmdTimeoutSec != nil { c.CmdTimeoutSec = *fc.CmdTimeoutSec }
	return nil
}

func (c *Config) applyEnv() {
	c.Platform = firstNonEmpty(os.Getenv("PLATFORM"), c.Platform)
	c.DownloadDir = firstNonEmpty(os.Getenv("DOWNLOAD_DIR"), c.DownloadDir)
	c.YtDlpPath = firstNonEmpty(strings.TrimSpace(os.Getenv("YTDLP_PATH")), c.YtDlpPath)
	c.FFmpegPath = firstNonEmpty(strings.TrimSpace(os.Getenv("FFMPEG_PATH")), c.FFmpegPath)
	c.HTTPProxy = firstNonEmpty(strings.TrimSpace(os.Getenv("HTTP_PROXY")), c.HTTPProxy)
	c.MaxFileSize = firstNonEmpty(strings.TrimSpace(os.Getenv("MAX_FILESIZE")), c.MaxFileSize)
	c.Concurrency = atoiDefault(os.Getenv("CONCURRENCY"), c.Concurrency)
	c.CleanupTTLHours = atoiDefault(os.Getenv("CLEANUP_TTL_HOURS"), c.CleanupTTLHours)
	c.CmdTimeoutSec = atoiDefault(os.Getenv("CMD_TIMEOUT_SEC"), c.CmdTimeoutSec)
}

// loadDotEnv — простая загрузка .env без внешних зависимостей
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.Trim(strings.TrimSpace(v), `"'`)
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, v)
		}
	}
	return s.Err()
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func atoiDefault(s string, def int) int {
	if s == "" { return def }
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil { return v }
	return def
}
