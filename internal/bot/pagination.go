package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"darbot/internal/models"
)

const reservationsPerPage = 5

// renderReservationsPage sends or edits a page of the user's upcoming
// reservations. messageID 0 sends a new message, otherwise the existing
// one is edited in place.
func (b *Bot) renderReservationsPage(ctx context.Context, chatID, userID int64, messageID, page int) {
	list, err := b.db.ListUserReservations(ctx, userID, b.now())
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list user reservations")
		b.reply(ctx, chatID, "⚠️ Не удалось загрузить бронирования.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, chatID, "У вас нет предстоящих бронирований.")
		return
	}

	pages := (len(list) + reservationsPerPage - 1) / reservationsPerPage
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	startIdx := page * reservationsPerPage
	endIdx := startIdx + reservationsPerPage
	if endIdx > len(list) {
		endIdx = len(list)
	}

	var sb strings.Builder
	sb.WriteString("📋 *Ваши бронирования:*\n")
	if pages > 1 {
		fmt.Fprintf(&sb, "Страница %d из %d\n", page+1, pages)
	}
	sb.WriteString("\n")

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, endIdx-startIdx+2)
	seenGroups := make(map[string]bool)
	for i, r := range list[startIdx:endIdx] {
		n := startIdx + i + 1
		fmt.Fprintf(&sb, "%d. %s, %s %s–%s\n", n, reservationRoomLabel(r),
			r.StartTime.Format("02.01.2006"),
			r.StartTime.Format("15:04"), r.EndTime.Format("15:04"))
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("❌ Отменить №%d (%s)", n, r.StartTime.Format("02.01")),
				fmt.Sprintf("resv_cancel:%d", r.ID)),
		})
		if r.RecurrenceGroup != "" && !seenGroups[r.RecurrenceGroup] {
			seenGroups[r.RecurrenceGroup] = true
			rows = append(rows, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("🔁 Отменить серию №%d", n),
					"series_cancel:"+r.RecurrenceGroup),
			})
		}
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад",
			fmt.Sprintf("my_page:%d", page-1)))
	}
	if endIdx < len(list) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Вперед ➡️",
			fmt.Sprintf("my_page:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	markup := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, sb.String(), markup)
		edit.ParseMode = "Markdown"
		b.send(ctx, edit)
		return
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = markup
	b.send(ctx, msg)
}

func reservationRoomLabel(r models.Reservation) string {
	if r.RoomName != "" {
		return r.RoomName
	}
	return "Аудитория " + r.RoomNumber
}
