package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"video-download-bot/internal/config"
	"video-download-bot/internal/files"
)

// ErrNoOutput — yt-dlp завершился, но файла нет (например, превышен --max-filesize)
var ErrNoOutput = errors.New("yt-dlp produced no output file")

// Runner — минимальная обёртка над yt-dlp

type Runner struct {
	cfg *config.Config
}

func NewRunner(cfg *config.Config) *Runner { return &Runner{cfg: cfg} }

// Args — фиксированный набор аргументов; "--" перед ссылкой, чтобы её не приняли за флаг
func (r *Runner) Args(url, output string) []string {
	maxSize := r.cfg.MaxFileSize
	if maxSize == "" { maxSize = "25M" }

	args := []string{"-f", "mp4", "-o", output, "--no-playlist", "--max-filesize", maxSize}

	// ffmpeg и прокси при необходимости
	if r.cfg.FFmpegPath != "" { args = append(args, "--ffmpeg-location", r.cfg.FFmpegPath) }
	if r.cfg.HTTPProxy != "" { args = append(args, "--proxy", r.cfg.HTTPProxy) }

	return append(args, "--", url)
}

func (r *Runner) bin() string {
	if r.cfg.YtDlpPath != "" { return r.cfg.YtDlpPath }
	return "yt-dlp"
}

// Download — запуск yt-dlp и ожидание завершения; файл должен появиться по пути output
func (r *Runner) Download(ctx context.Context, url, output string) error {
	// таймаут процесса только если задан
	if r.cfg.CmdTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.CmdTimeoutSec)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.bin(), r.Args(url, output)...)
	cmd.Dir = r.cfg.DownloadDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// добавим stderr в ошибку для диагностики
		return fmt.Errorf("yt-dlp failed: %w; stderr=%s", err, truncate(strings.TrimSpace(stderr.String()), 400))
	}
	if !files.Exists(output) {
		return fmt.Errorf("%w; stdout=%s", ErrNoOutput, truncate(lastLine(stdout.String()), 200))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func truncate(s string, n int) string {
	if len(s) <= n { return s }
	return s[:n]
}
