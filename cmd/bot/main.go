package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"video-download-bot/internal/bot"
	"video-download-bot/internal/config"
	"video-download-bot/internal/discord"
	"video-download-bot/internal/downloader"
	"video-download-bot/internal/files"
	"video-download-bot/internal/queue"
	"video-download-bot/internal/telegram"
)

func main() {
	// run сам освобождает ресурсы; Fatal только после этого
	if err := run(); err != nil {
		log.Fatalf("[bot] fatal: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := files.EnsureDir(cfg.DownloadDir); err != nil {
		return fmt.Errorf("failed to ensure download dir: %w", err)
	}

	// остатки от брошенных при прошлой остановке загрузок
	if n, err := files.CleanupOnce(cfg.DownloadDir, 0); err != nil {
		log.Printf("[cleanup] startup sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("[cleanup] removed %d stale temp file(s)", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files.StartCleanup(ctx, cfg.DownloadDir, cfg.CleanupTTLHours)

	// graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Printf("[bot] shutdown requested...")
			cancel()
		case <-ctx.Done():
		}
	}()

	b := bot.NewBot(newGateway(cfg.Platform), cfg, queue.NewQueue(cfg.Concurrency), downloader.NewRunner(cfg))
	return b.Run(ctx)
}

func newGateway(platform string) bot.Gateway {
	if platform == config.PlatformDiscord {
		return discord.NewGateway()
	}
	return telegram.NewGateway()
}
