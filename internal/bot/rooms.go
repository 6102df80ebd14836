package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"darbot/internal/models"
)

// Room catalog: floors -> rooms on a floor -> room details with a direct
// booking button. Navigation edits the message in place, booking starts a
// fresh dialog.

func (b *Bot) sendRoomCatalog(ctx context.Context, chatID int64, messageID int) {
	floors, err := b.db.ListFloors(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list floors")
		b.reply(ctx, chatID, "⚠️ Не удалось загрузить список этажей.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(floors))
	for _, f := range floors {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("Этаж %d", f), fmt.Sprintf("rooms:floor:%d", f)),
		})
	}
	b.sendOrEdit(ctx, chatID, messageID, "🏢 Выберите этаж для просмотра аудиторий:",
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (b *Bot) handleRoomsCallback(ctx context.Context, chatID, userID int64, messageID int, data string) {
	switch {
	case data == "rooms:floors":
		b.sendRoomCatalog(ctx, chatID, messageID)
	case strings.HasPrefix(data, "rooms:floor:"):
		floor, err := strconv.Atoi(strings.TrimPrefix(data, "rooms:floor:"))
		if err != nil {
			return
		}
		b.sendFloorRooms(ctx, chatID, messageID, floor)
	case strings.HasPrefix(data, "rooms:room:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "rooms:room:"), 10, 64)
		if err != nil {
			return
		}
		b.sendRoomDetails(ctx, chatID, messageID, id)
	case strings.HasPrefix(data, "rooms:book:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "rooms:book:"), 10, 64)
		if err != nil {
			return
		}
		room, err := b.db.GetRoom(ctx, id)
		if err != nil || !room.IsActive {
			b.reply(ctx, chatID, "❌ Аудитория не найдена.")
			return
		}
		b.StartDialogForRoom(ctx, chatID, userID, room)
	}
}

func (b *Bot) sendFloorRooms(ctx context.Context, chatID int64, messageID, floor int) {
	rooms, err := b.db.ListRoomsByFloor(ctx, floor)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int("floor", floor).Msg("list floor rooms")
		b.reply(ctx, chatID, "⚠️ Не удалось загрузить аудитории.")
		return
	}

	text := fmt.Sprintf("🏢 Аудитории на %d этаже:", floor)
	if len(rooms) == 0 {
		text = fmt.Sprintf("❌ На %d этаже нет доступных аудиторий.", floor)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rooms)+1)
	for _, r := range rooms {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(r.DisplayName(),
				fmt.Sprintf("rooms:room:%d", r.ID)),
		})
	}
	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К этажам", "rooms:floors"),
	})
	b.sendOrEdit(ctx, chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows})
}

func (b *Bot) sendRoomDetails(ctx context.Context, chatID int64, messageID int, roomID int64) {
	room, err := b.db.GetRoom(ctx, roomID)
	if err != nil || !room.IsActive {
		b.reply(ctx, chatID, "❌ Аудитория не найдена.")
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Забронировать",
				fmt.Sprintf("rooms:book:%d", room.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К аудиториям",
				fmt.Sprintf("rooms:floor:%d", room.Floor)),
		),
	)
	b.sendOrEdit(ctx, chatID, messageID, formatRoomDetails(room), markup)
}

func formatRoomDetails(r *models.Room) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏢 *%s* (этаж %d)\n", r.DisplayName(), r.Floor)
	if r.Capacity > 0 {
		fmt.Fprintf(&sb, "\n👥 Вместимость: до %d чел.\n", r.Capacity)
	}
	if r.Equipment != "" {
		fmt.Fprintf(&sb, "🛠 Оборудование: %s\n", r.Equipment)
	}
	if r.Description != "" {
		fmt.Fprintf(&sb, "\n📝 %s\n", r.Description)
	}
	return sb.String()
}

// sendOrEdit edits the message in place when messageID is set, otherwise
// sends a new one.
func (b *Bot) sendOrEdit(ctx context.Context, chatID int64, messageID int, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, markup)
		edit.ParseMode = "Markdown"
		b.send(ctx, edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = markup
	b.send(ctx, msg)
}
