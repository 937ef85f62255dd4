package services

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAlerter pushes operator alerts for security-relevant configuration
// degradation (missing signing secret, missing SMS credential). A nil
// alerter is a no-op so call sites don't branch on whether it is configured.
type TelegramAlerter struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramAlerter(botToken string, chatID int64) *TelegramAlerter {
	if botToken == "" || chatID == 0 {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[alerts][init] telegram bot unavailable: %v", err)
		return nil
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}
}

func (a *TelegramAlerter) Alert(text string) {
	if a == nil {
		return
	}
	msg := tgbotapi.NewMessage(a.chatID, "[cwportal] "+text)
	if _, err := a.bot.Send(msg); err != nil {
		log.Printf("[alerts][send] %v", err)
	}
}
