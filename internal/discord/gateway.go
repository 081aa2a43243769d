package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"video-download-bot/internal/bot"

	"github.com/bwmarrin/discordgo"
)

var errNotReady = errors.New("discord: session not ready")

// interactionAPI — часть *discordgo.Session для ответов на команду
type interactionAPI interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// commandAPI — часть *discordgo.Session для объявления команд
type commandAPI interface {
	ApplicationCommandCreate(appID string, guildID string, cmd *discordgo.ApplicationCommand, options ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error)
}

// Gateway — websocket-сессия Discord со slash-командами

type Gateway struct {
	mu    sync.Mutex
	s     *discordgo.Session
	appID string
	d     *bot.Dispatcher

	done     chan struct{}
	doneOnce sync.Once
}

func NewGateway() *Gateway { return &Gateway{done: make(chan struct{})} }

// Open — логин; ready придёт событием после установки сессии
func (g *Gateway) Open(token string, d *bot.Dispatcher) error {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	s.LogLevel = discordgo.LogError
	s.Identify.Intents = discordgo.IntentsGuilds

	g.mu.Lock()
	g.s = s
	g.d = d
	g.mu.Unlock()

	s.AddHandler(g.onReady)
	s.AddHandler(g.onInteraction)
	s.AddHandler(g.onDisconnect)

	if err := s.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	return nil
}

// onReady — на каждую новую сессию (в том числе после переподключения)
func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.mu.Lock()
	if r.User != nil { g.appID = r.User.ID }
	d := g.d
	g.mu.Unlock()
	if r.User != nil {
		log.Printf("[discord] ready as %s", r.User.Username)
	}
	d.Emit(bot.Event{Kind: bot.EventReady})
}

func (g *Gateway) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ev, ok := commandEvent(s, i)
	if !ok {
		return
	}
	g.mu.Lock()
	d := g.d
	g.mu.Unlock()
	d.Emit(bot.Event{Kind: bot.EventCommand, Command: ev})
}

// onDisconnect — сессия сама переподключается, пока ShouldReconnectOnError
func (g *Gateway) onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	if !s.ShouldReconnectOnError {
		g.finish()
	}
}

// RegisterCommand — глобальная команда; повторное создание с тем же именем перезаписывает её
func (g *Gateway) RegisterCommand(cmd bot.Command) error {
	g.mu.Lock()
	s, appID := g.s, g.appID
	g.mu.Unlock()
	if s == nil || appID == "" {
		return errNotReady
	}
	return registerCommand(s, appID, cmd)
}

func (g *Gateway) Done() <-chan struct{} { return g.done }

func (g *Gateway) Close() error {
	g.mu.Lock()
	s := g.s
	g.mu.Unlock()
	defer g.finish()
	if s == nil {
		return nil
	}
	return s.Close()
}

func (g *Gateway) finish() { g.doneOnce.Do(func() { close(g.done) }) }

func registerCommand(api commandAPI, appID string, cmd bot.Command) error {
	_, err := api.ApplicationCommandCreate(appID, "", applicationCommand(cmd))
	return err
}

func applicationCommand(cmd bot.Command) *discordgo.ApplicationCommand {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(cmd.Options))
	for _, o := range cmd.Options {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        o.Name,
			Description: o.Description,
			Required:    o.Required,
		})
	}
	return &discordgo.ApplicationCommand{
		Name:        cmd.Name,
		Description: cmd.Description,
		Options:     opts,
	}
}

// commandEvent — только вызовы slash-команд; кнопки и автодополнение пропускаем
func commandEvent(api interactionAPI, i *discordgo.InteractionCreate) (*bot.CommandEvent, bool) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}
	data := i.ApplicationCommandData()
	opts := make([]string, 0, len(data.Options))
	for _, o := range data.Options {
		opts = append(opts, fmt.Sprint(o.Value))
	}
	return &bot.CommandEvent{
		Name:    data.Name,
		Options: opts,
		User:    userOf(i.Interaction),
		Reply:   &responder{api: api, i: i.Interaction},
	}, true
}

// userOf — в гильдии пользователь в Member, в личке в User
func userOf(i *discordgo.Interaction) bot.User {
	u := i.User
	if i.Member != nil && i.Member.User != nil {
		u = i.Member.User
	}
	if u == nil {
		return bot.User{Mention: "unknown user"}
	}
	return bot.User{ID: u.ID, Mention: u.Mention()}
}

type responder struct {
	api interactionAPI
	i   *discordgo.Interaction
}

// Ack — отложенный ответ ("is thinking…"), дальше только followup
func (r *responder) Ack(ctx context.Context) error {
	return r.api.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

func (r *responder) Followup(ctx context.Context, text string) error {
	_, err := r.api.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{Content: text}, discordgo.WithContext(ctx))
	return err
}

func (r *responder) FollowupFile(ctx context.Context, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = r.api.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Content: caption,
		Files: []*discordgo.File{{
			Name:        filepath.Base(path),
			ContentType: "video/mp4",
			Reader:      f,
		}},
	}, discordgo.WithContext(ctx))
	return err
}
