package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"spam_bot/internal/model"
)

const (
	cmdCheck    = "check"
	cmdFilters  = "filters"
	cmdRmFilter = "rmfilter"
	cmdTP       = "tp"
	cmdFP       = "fp"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	data := cb.Data
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return
	}

	action := parts[0]
	idStr := parts[1]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdTP:
		if b.handleVerdict(ctx, chatID, idStr, model.VerdictTruePositive) {
			b.clearKeyboard(chatID, cb.Message.MessageID)
		}
	case cmdFP:
		if b.handleVerdict(ctx, chatID, idStr, model.VerdictFalsePositive) {
			b.clearKeyboard(chatID, cb.Message.MessageID)
		}
	case cmdCheck:
		b.handleCheck(ctx, chatID, idStr)
	case "delete_confirm":
		feed, err := b.store.GetFeed(ctx, id)
		if err != nil || feed.ChatID != chatID {
			b.reply(chatID, fmt.Sprintf("Feed #%d not found.", id))
			return
		}
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete #%d \"%s\" and its reports? This cannot be undone.", id, feed.Name))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Yes, delete", fmt.Sprintf("delete:%d", id)),
				tgbotapi.NewInlineKeyboardButtonData("Cancel", "noop:0"),
			),
		)
		if _, err := b.api.Send(msg); err != nil {
			b.log.Error("send delete confirmation", "error", err)
		}
	case "delete":
		b.handleRemove(ctx, chatID, idStr)
	case cmdRmFilter:
		b.handleRmFilter(ctx, chatID, idStr)
	}
}

// clearKeyboard removes the verdict buttons from a report once it is judged.
func (b *Bot) clearKeyboard(chatID int64, messageID int) {
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("clear report keyboard", "chat_id", chatID, "error", err)
	}
}
