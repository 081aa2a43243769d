package telegram

import (
    "log"

    tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender — минимальный интерфейс Telegram API для тестирования
type Sender interface {
    Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
    Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
    GetUpdatesChan(u tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
    StopReceivingUpdates()
}

// Dial — логин по токену; ошибка означает отклонённый токен или недоступный API
type Dial func(token string) (Sender, error)

func dialBotAPI(token string) (Sender, error) {
    api, err := tgbotapi.NewBotAPI(token)
    if err != nil {
        return nil, err
    }
    api.Debug = false
    log.Printf("[telegram] authorized on account %s", api.Self.UserName)
    return api, nil
}
