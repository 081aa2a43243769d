package bot

import (
	"context"
	"fmt"
	"log"

	"video-download-bot/internal/config"
	"video-download-bot/internal/files"
	"video-download-bot/internal/queue"
)

// тексты ответов пользователю; детали ошибок сюда не попадают
const (
	captionFormat = "Sent by: %s"
	failureFormat = "❌ Unable to download video. File could be too large. URL: %s. Sent by: %s"
	usageFormat   = "Usage: /%s <url>. Sent by: %s"
)

// Bot — ядро: жизненный цикл, регистрация команды, обработка загрузок

type Bot struct {
	gw  Gateway
	cfg *config.Config
	q   *queue.Queue
	DL  Downloader
	d   *Dispatcher

	// контекст задач: отвязан от сигнала остановки
	jobCtx context.Context
}

func NewBot(gw Gateway, cfg *config.Config, q *queue.Queue, dl Downloader) *Bot {
	b := &Bot{gw: gw, cfg: cfg, q: q, DL: dl, d: NewDispatcher(), jobCtx: context.Background()}
	b.d.On(EventReady, b.onReady)
	b.d.On(EventCommand, b.onCommand)
	return b
}

// Run — подключиться и ждать остановки; без токена сразу выходим
func (b *Bot) Run(ctx context.Context) error {
	if b.cfg.Token == "" {
		log.Printf("[bot] %s is not set; not connecting", config.TokenEnv(b.cfg.Platform))
		return nil
	}

	// незавершённые загрузки при остановке не отменяются
	b.jobCtx = context.WithoutCancel(ctx)

	defer b.disconnect()
	if err := b.gw.Open(b.cfg.Token, b.d); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	log.Printf("[bot] connected to %s; downloads at: %s", b.cfg.Platform, b.cfg.DownloadDir)

	select {
	case <-ctx.Done():
		log.Printf("[bot] shutting down...")
	case <-b.gw.Done():
		log.Printf("[bot] gateway connection closed")
	}
	if n := b.q.InFlight(); n > 0 {
		log.Printf("[bot] abandoning %d in-flight download(s)", n)
	}
	return nil
}

func (b *Bot) disconnect() {
	if err := b.gw.Close(); err != nil {
		log.Printf("[bot] disconnect failed: %v", err)
	}
}

// onReady — объявить команду при каждом подключении; ошибку только логируем
func (b *Bot) onReady(Event) {
	if err := b.gw.RegisterCommand(DownloadCommand); err != nil {
		log.Printf("[bot] command sync error: %v", err)
		return
	}
	log.Printf("[bot] slash command %q synced", DownloadCommand.Name)
}

// onCommand — каждый вызов в отдельной задаче
func (b *Bot) onCommand(ev Event) {
	c := ev.Command
	if c == nil || c.Name != DownloadCommand.Name {
		return
	}
	b.q.Submit(b.jobCtx, func(ctx context.Context) { b.handleDownload(ctx, c) })
}

// handleDownload — подтверждение, yt-dlp, отправка файла, уборка
func (b *Bot) handleDownload(ctx context.Context, c *CommandEvent) {
	url := c.FirstOption()
	mention := c.User.Mention

	if err := c.Reply.Ack(ctx); err != nil {
		log.Printf("[bot] ack failed for %s: %v", c.User.ID, err)
		b.fail(ctx, c, url)
		return
	}
	if url == "" {
		b.followup(ctx, c, fmt.Sprintf(usageFormat, DownloadCommand.Name, mention))
		return
	}

	path := files.TempName(b.cfg.DownloadDir)
	defer func() {
		if err := files.Cleanup(path); err != nil {
			log.Printf("[bot] cleanup failed: %v", err)
		}
	}()

	if err := b.fetchAndSend(ctx, c, url, path); err != nil {
		log.Printf("[bot] download %s for %s failed: %v", url, c.User.ID, err)
		b.fail(ctx, c, url)
	}
}

func (b *Bot) fetchAndSend(ctx context.Context, c *CommandEvent, url, path string) error {
	if err := b.DL.Download(ctx, url, path); err != nil {
		return err
	}
	size, err := files.FileSize(path)
	if err != nil {
		return fmt.Errorf("output file missing: %w", err)
	}
	log.Printf("[bot] downloaded %s (%s), uploading", url, files.HumanSize(size))

	if err := c.Reply.FollowupFile(ctx, path, fmt.Sprintf(captionFormat, c.User.Mention)); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	return nil
}

func (b *Bot) fail(ctx context.Context, c *CommandEvent, url string) {
	b.followup(ctx, c, fmt.Sprintf(failureFormat, url, c.User.Mention))
}

func (b *Bot) followup(ctx context.Context, c *CommandEvent, text string) {
	if err := c.Reply.Followup(ctx, text); err != nil {
		log.Printf("[bot] send followup failed: %v", err)
	}
}
