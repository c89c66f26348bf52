package services

import (
	"fmt"
	"html"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Jdholguin19/tareas/internal/models"
)

// TelegramService pushes task notifications to users who linked a chat.
// It is optional wiring: a nil service is a no-op everywhere.
type TelegramService struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramService(botToken string) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	log.Printf("[tg] authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot}, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] chatID=%d: %v", chatID, err)
		return err
	}
	return nil
}

func (t *TelegramService) NotifyOverdue(chatID int64, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏰ %d overdue tasks\n", len(tasks)))
	for _, task := range tasks {
		due := "—"
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		b.WriteString("• <b>" + html.EscapeString(task.Title) + "</b> — <code>" + due + "</code>\n")
	}
	return t.SendMessage(chatID, b.String())
}
