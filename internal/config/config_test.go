package config

import (
	"os"
	"path/filepath"
	"testing"
)

var envKeys = []string{
	"BOT_CONFIG", "PLATFORM", "TELEGRAM_TOKEN", "DISCORD_BOT_TOKEN", "DOWNLOAD_DIR",
	"YTDLP_PATH", "FFMPEG_PATH", "HTTP_PROXY", "MAX_FILESIZE", "CONCURRENCY",
	"CLEANUP_TTL_HOURS", "CMD_TIMEOUT_SEC",
}

// clearEnv blanks every variable Load looks at; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutToken(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "dl")
	t.Setenv("DOWNLOAD_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Token != "" {
		t.Fatalf("Token = %q; want empty", cfg.Token)
	}
	if cfg.Platform != PlatformTelegram {
		t.Fatalf("Platform = %q; want %q", cfg.Platform, PlatformTelegram)
	}
	if cfg.MaxFileSize != "25M" || cfg.Concurrency != 0 || cfg.CmdTimeoutSec != 0 || cfg.CleanupTTLHours != 12 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("download dir not created: %v", err)
	}
	if !filepath.IsAbs(cfg.DownloadDir) {
		t.Fatalf("DownloadDir = %q; want absolute", cfg.DownloadDir)
	}
}

func TestLoad_TokenPerPlatform(t *testing.T) {
	cases := []struct {
		platform string
		want     string
	}{
		{"telegram", "tg-token"},
		{"discord", "T1"},
		{"DISCORD", "T1"},
	}
	for _, tc := range cases {
		t.Run(tc.platform, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DOWNLOAD_DIR", t.TempDir())
			t.Setenv("PLATFORM", tc.platform)
			t.Setenv("TELEGRAM_TOKEN", "tg-token")
			t.Setenv("DISCORD_BOT_TOKEN", " T1 ")

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Token != tc.want {
				t.Fatalf("Token = %q; want %q", cfg.Token, tc.want)
			}
		})
	}
}

func TestLoad_UnknownPlatform(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOWNLOAD_DIR", t.TempDir())
	t.Setenv("PLATFORM", "irc")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	tmp := t.TempDir()
	path := filepath.Join(tmp, "bot.yaml")
	data := []byte("platform: discord\n" +
		"download_dir: " + filepath.Join(tmp, "from-file") + "\n" +
		"ytdlp_path: /opt/yt-dlp\n" +
		"max_filesize: 10M\n" +
		"concurrency: 3\n" +
		"cmd_timeout_sec: 60\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_CONFIG", path)
	t.Setenv("CONCURRENCY", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Platform != PlatformDiscord {
		t.Fatalf("Platform = %q; want discord", cfg.Platform)
	}
	if cfg.YtDlpPath != "/opt/yt-dlp" || cfg.MaxFileSize != "10M" || cfg.CmdTimeoutSec != 60 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Concurrency != 5 {
		t.Fatalf("Concurrency = %d; env should win over file", cfg.Concurrency)
	}
	if cfg.DownloadDir != filepath.Join(tmp, "from-file") {
		t.Fatalf("DownloadDir = %q", cfg.DownloadDir)
	}
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOWNLOAD_DIR", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("concurrency: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}

	t.Setenv("BOT_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestLoadDotEnv_KeepsExisting(t *testing.T) {
	t.Setenv("DOTENV_KEEP", "process")
	path := filepath.Join(t.TempDir(), ".env")
	data := []byte("# comment\nDOTENV_KEEP=file\nDOTENV_NEW=\"quoted\"\nbroken line\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("DOTENV_NEW") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("DOTENV_KEEP"); got != "process" {
		t.Fatalf("DOTENV_KEEP = %q; want process", got)
	}
	if got := os.Getenv("DOTENV_NEW"); got != "quoted" {
		t.Fatalf("DOTENV_NEW = %q; want quoted", got)
	}
}

func TestTokenEnv(t *testing.T) {
	t.Parallel()
	if got := TokenEnv(PlatformDiscord); got != "DISCORD_BOT_TOKEN" {
		t.Fatalf("TokenEnv(discord) = %q", got)
	}
	if got := TokenEnv(PlatformTelegram); got != "TELEGRAM_TOKEN" {
		t.Fatalf("TokenEnv(telegram) = %q", got)
	}
}
