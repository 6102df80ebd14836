package bot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"darbot/internal/export"
	"darbot/internal/metrics"
	"darbot/internal/models"
)

// isAdmin accepts both the static list from the config and the flag granted
// through the admin password.
func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	if b.cfg.IsAdmin(userID) {
		return true
	}
	admin, err := b.db.IsAdmin(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", userID).Msg("admin check failed")
		return false
	}
	return admin
}

func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if strings.HasPrefix(text, "/admin") {
		args := strings.Fields(text)
		if b.isAdmin(ctx, userID) {
			b.sendAdminPanel(ctx, chatID)
			return
		}
		if len(args) == 2 && b.cfg.AdminPassword != "" && args[1] == b.cfg.AdminPassword {
			if err := b.db.SetAdmin(ctx, userID, true); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("grant admin")
				b.reply(ctx, chatID, "⚠️ Не удалось выдать права.")
				return
			}
			zerolog.Ctx(ctx).Info().Int64("user_id", userID).Msg("Admin access granted")
			b.sendAdminPanel(ctx, chatID)
			return
		}
		b.reply(ctx, chatID, "Доступ только для администраторов.")
		return
	}

	if !b.isAdmin(ctx, userID) {
		b.reply(ctx, chatID, "Доступ только для администраторов.")
		return
	}

	switch {
	case strings.HasPrefix(text, "/add_room"):
		b.adminAddRoom(ctx, chatID, text)
	case strings.HasPrefix(text, "/del_room"):
		b.adminDelRoom(ctx, chatID, text)
	case strings.HasPrefix(text, "/del_booking"):
		b.adminDelBooking(ctx, chatID, text)
	case strings.HasPrefix(text, "/export"):
		b.adminExportMonth(ctx, chatID)
	}
}

func (b *Bot) sendAdminPanel(ctx context.Context, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, `⚙️ *Панель администратора*

Команды:
/add_room <номер> <этаж> <вместимость> [название]
/del_room <id>
/del_booking <id>
/export`)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = adminMenu
	b.send(ctx, msg)
}

func (b *Bot) handleAdminCallback(ctx context.Context, chatID, userID int64, data string) {
	if !b.isAdmin(ctx, userID) {
		b.reply(ctx, chatID, "Доступ только для администраторов.")
		return
	}
	switch data {
	case "admin:export":
		b.adminExportMonth(ctx, chatID)
	case "admin:today":
		b.sendTodaySchedule(ctx, chatID)
	case "admin:rooms":
		b.adminListRooms(ctx, chatID)
	}
}

// adminAddRoom handles "/add_room 214 2 60 Конференц-зал".
func (b *Bot) adminAddRoom(ctx context.Context, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) < 4 {
		b.reply(ctx, chatID, "Формат: /add_room <номер> <этаж> <вместимость> [название]")
		return
	}
	floor, err := strconv.Atoi(args[2])
	if err != nil {
		b.reply(ctx, chatID, "Этаж должен быть числом.")
		return
	}
	capacity, err := strconv.Atoi(args[3])
	if err != nil {
		b.reply(ctx, chatID, "Вместимость должна быть числом.")
		return
	}

	room := &models.Room{
		Number:   args[1],
		Floor:    floor,
		Capacity: capacity,
		Name:     strings.Join(args[4:], " "),
	}
	id, err := b.db.CreateRoom(ctx, room)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("number", room.Number).Msg("create room")
		b.reply(ctx, chatID, "⚠️ Не удалось добавить аудиторию. Возможно, номер уже занят.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("✅ Аудитория %s добавлена (id %d).", room.Number, id))
}

func (b *Bot) adminDelRoom(ctx context.Context, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) != 2 {
		b.reply(ctx, chatID, "Формат: /del_room <id>")
		return
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, chatID, "Id должен быть числом.")
		return
	}
	if err := b.db.DeactivateRoom(ctx, id); err != nil {
		b.reply(ctx, chatID, "Аудитория не найдена.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("✅ Аудитория %d скрыта из бронирования.", id))
}

func (b *Bot) adminDelBooking(ctx context.Context, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) != 2 {
		b.reply(ctx, chatID, "Формат: /del_booking <id>")
		return
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, chatID, "Id должен быть числом.")
		return
	}
	if err := b.db.CancelReservation(ctx, id); err != nil {
		b.reply(ctx, chatID, "Бронирование не найдено.")
		return
	}
	metrics.IncReservationCancelled()
	b.reply(ctx, chatID, fmt.Sprintf("✅ Бронирование %d отменено.", id))
}

func (b *Bot) adminListRooms(ctx context.Context, chatID int64) {
	rooms, err := b.db.ListRooms(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list rooms")
		b.reply(ctx, chatID, "⚠️ Не удалось загрузить аудитории.")
		return
	}
	if len(rooms) == 0 {
		b.reply(ctx, chatID, "Аудиторий пока нет. Добавьте первую: /add_room")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏢 *Аудитории:*\n\n")
	for _, r := range rooms {
		fmt.Fprintf(&sb, "%d. %s — этаж %d, до %d чел.\n", r.ID, r.DisplayName(), r.Floor, r.Capacity)
	}
	b.reply(ctx, chatID, sb.String())
}

// adminExportMonth sends the current month's reservations as an xlsx file.
func (b *Bot) adminExportMonth(ctx context.Context, chatID int64) {
	now := b.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	list, err := b.db.ListReservationsBetween(ctx, from, to)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("export reservations")
		b.reply(ctx, chatID, "⚠️ Не удалось выгрузить бронирования.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, chatID, "В этом месяце бронирований нет.")
		return
	}

	w, err := export.ReservationsReport(now.Format("01.2006"), list)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("build export")
		b.reply(ctx, chatID, "⚠️ Не удалось сформировать файл.")
		return
	}
	defer w.Close()

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("save export")
		b.reply(ctx, chatID, "⚠️ Не удалось сформировать файл.")
		return
	}

	name := export.FileName(from, to.AddDate(0, 0, -1))
	b.archiveExport(ctx, name, buf.Bytes())

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  name,
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Бронирования за %s (%d шт.)", now.Format("01.2006"), len(list))
	b.send(ctx, doc)
}

// archiveExport keeps a copy of the generated report on disk.
func (b *Bot) archiveExport(ctx context.Context, name string, data []byte) {
	dir := b.cfg.Export.Dir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("dir", dir).Msg("create export dir")
		return
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("archive export")
		return
	}
	zerolog.Ctx(ctx).Info().Str("path", path).Msg("export archived")
}
