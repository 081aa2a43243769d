package bot

import (
	"context"
	"strings"
)

// Command — объявление удалённой команды

type Command struct {
	Name        string
	Description string
	Options     []Option
}

// Option — строковый параметр команды
type Option struct {
	Name        string
	Description string
	Required    bool
}

// DownloadCommand — единственная команда бота
var DownloadCommand = Command{
	Name:        "download",
	Description: "Download a video",
	Options: []Option{
		{Name: "url", Description: "The video URL to download", Required: true},
	},
}

// User — кто вызвал команду; Mention уже в формате платформы
type User struct {
	ID      string
	Mention string
}

// CommandEvent — вызов команды пользователем
type CommandEvent struct {
	Name    string
	Options []string
	User    User
	Reply   Responder
}

// FirstOption — первое значение параметра или ""
func (e *CommandEvent) FirstOption() string {
	if len(e.Options) == 0 { return "" }
	return strings.TrimSpace(e.Options[0])
}

// Responder — ответы в контексте одного вызова
type Responder interface {
	// Ack — немедленное подтверждение до долгой работы
	Ack(ctx context.Context) error
	Followup(ctx context.Context, text string) error
	FollowupFile(ctx context.Context, path, caption string) error
}

// Gateway — постоянное подключение к чат-платформе
type Gateway interface {
	// Open — логин и запуск доставки событий в d
	Open(token string, d *Dispatcher) error
	RegisterCommand(cmd Command) error
	// Done — закрывается, когда соединение завершилось само
	Done() <-chan struct{}
	Close() error
}

// Downloader — интерфейс загрузчика медиа
type Downloader interface {
	Download(ctx context.Context, url, output string) error
}
