package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"video-download-bot/internal/bot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	usageText       = "Send /download <url> and I will reply with the video as mp4."
	placeholderText = "⏳ Downloading…"
)

var errNotConnected = errors.New("telegram: not connected")

// Gateway — long polling Telegram Bot API

type Gateway struct {
	dial Dial

	mu   sync.Mutex
	api  Sender
	done chan struct{}
	stop sync.Once
}

func NewGateway() *Gateway { return NewGatewayWithDial(dialBotAPI) }

func NewGatewayWithDial(dial Dial) *Gateway {
	return &Gateway{dial: dial, done: make(chan struct{})}
}

// Open — логин и запуск цикла обновлений; ready уходит из цикла
func (g *Gateway) Open(token string, d *bot.Dispatcher) error {
	api, err := g.dial(token)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.api = api
	g.mu.Unlock()

	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 30
	go g.loop(api, api.GetUpdatesChan(updCfg), d)
	return nil
}

func (g *Gateway) loop(api Sender, updates tgbotapi.UpdatesChannel, d *bot.Dispatcher) {
	defer close(g.done)
	d.Emit(bot.Event{Kind: bot.EventReady})

	for u := range updates {
		m := u.Message
		if m == nil || !m.IsCommand() {
			continue
		}
		switch m.Command() {
		case "start", "help":
			reply(api, m.Chat.ID, usageText, m.MessageID)
		default:
			d.Emit(bot.Event{Kind: bot.EventCommand, Command: commandEvent(api, m)})
		}
	}
}

// RegisterCommand — setMyCommands заменяет список целиком, повтор безопасен
func (g *Gateway) RegisterCommand(cmd bot.Command) error {
	api := g.sender()
	if api == nil {
		return errNotConnected
	}
	_, err := api.Request(tgbotapi.NewSetMyCommands(tgbotapi.BotCommand{
		Command:     cmd.Name,
		Description: cmd.Description,
	}))
	return err
}

func (g *Gateway) Done() <-chan struct{} { return g.done }

func (g *Gateway) Close() error {
	if api := g.sender(); api != nil {
		g.stop.Do(api.StopReceivingUpdates)
	}
	return nil
}

func (g *Gateway) sender() Sender {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.api
}

func commandEvent(api Sender, m *tgbotapi.Message) *bot.CommandEvent {
	return &bot.CommandEvent{
		Name:    m.Command(),
		Options: strings.Fields(m.CommandArguments()),
		User:    userOf(m.From),
		Reply:   &responder{api: api, chatID: m.Chat.ID, replyTo: m.MessageID},
	}
}

// userOf — упоминание: @username, иначе имя
func userOf(u *tgbotapi.User) bot.User {
	if u == nil {
		return bot.User{Mention: "unknown user"}
	}
	mention := "@" + u.UserName
	if u.UserName == "" {
		mention = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return bot.User{ID: strconv.FormatInt(u.ID, 10), Mention: mention}
}

func reply(api Sender, chatID int64, text string, replyTo int) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyTo > 0 { msg.ReplyToMessageID = replyTo }
	if _, err := api.Send(msg); err != nil {
		log.Printf("[telegram] send message failed: %v", err)
	}
}

// responder — ответы на одну команду; заглушка удаляется после итогового ответа

type responder struct {
	api     Sender
	chatID  int64
	replyTo int

	mu          sync.Mutex
	placeholder int
}

func (r *responder) Ack(ctx context.Context) error {
	if _, err := r.api.Request(tgbotapi.NewChatAction(r.chatID, tgbotapi.ChatUploadVideo)); err != nil {
		log.Printf("[telegram] chat action failed: %v", err)
	}
	msg := tgbotapi.NewMessage(r.chatID, placeholderText)
	msg.ReplyToMessageID = r.replyTo
	sent, err := r.api.Send(msg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.placeholder = sent.MessageID
	r.mu.Unlock()
	return nil
}

func (r *responder) Followup(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(r.chatID, text)
	msg.ReplyToMessageID = r.replyTo
	_, err := r.api.Send(msg)
	r.dropPlaceholder()
	return err
}

func (r *responder) FollowupFile(ctx context.Context, path, caption string) error {
	v := tgbotapi.NewVideo(r.chatID, tgbotapi.FilePath(path))
	v.Caption = caption
	v.ReplyToMessageID = r.replyTo
	v.SupportsStreaming = true
	if _, err := r.api.Send(v); err != nil {
		return err
	}
	r.dropPlaceholder()
	return nil
}

func (r *responder) dropPlaceholder() {
	r.mu.Lock()
	id := r.placeholder
	r.placeholder = 0
	r.mu.Unlock()
	if id == 0 {
		return
	}
	if _, err := r.api.Request(tgbotapi.NewDeleteMessage(r.chatID, id)); err != nil {
		log.Printf("[telegram] delete placeholder failed: %v", err)
	}
}
