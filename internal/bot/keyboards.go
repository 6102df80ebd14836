package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"darbot/internal/booking"
)

const (
	btnRooms    = "🗂 Аудитории"
	btnBook     = "📅 Забронировать"
	btnMy       = "📋 Мои бронирования"
	btnSchedule = "🗓 Расписание"
	btnHelp     = "ℹ️ Помощь"
)

var mainMenu = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnRooms),
		tgbotapi.NewKeyboardButton(btnBook),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnMy),
		tgbotapi.NewKeyboardButton(btnSchedule),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnHelp),
	),
)

// optionsKeyboard renders dialog options as an inline keyboard, one button
// per row.
func optionsKeyboard(opts []booking.Option) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Value),
		})
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

var adminMenu = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📊 Выгрузка за месяц", "admin:export"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🗓 Расписание на сегодня", "admin:today"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏢 Список аудиторий", "admin:rooms"),
	),
)
