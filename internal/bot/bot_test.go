package bot

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darbot/internal/config"
	"darbot/internal/database"
	"darbot/internal/events"
	"darbot/internal/models"
	"darbot/internal/session"
)

type fakeTelegram struct {
	sent []tgbotapi.Chattable
}

func (f *fakeTelegram) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (f *fakeTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "darbot_test"}
}

// lastText returns the text of the most recent MessageConfig sent.
func (f *fakeTelegram) lastText(t *testing.T) string {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m.Text
		}
	}
	t.Fatal("no messages sent")
	return ""
}

func (f *fakeTelegram) allTexts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func newTestBot(t *testing.T) (*Bot, *fakeTelegram, *database.DB) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.CreateRoom(context.Background(), &models.Room{Number: "214", Name: "Конференц-зал", Floor: 2, Capacity: 60})
	require.NoError(t, err)

	cfg := &config.Config{AdminPassword: "secret"}
	logger := zerolog.New(io.Discard)
	tg := &fakeTelegram{}
	b := NewWithTelegramClient(tg, cfg, db, session.NewMemoryStore(time.Hour), events.NewEventBus(), &logger)
	return b, tg, db
}

func msgUpdate(userID, chatID int64, text string) *tgbotapi.Update {
	return &tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: userID, UserName: "tester"},
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func cbUpdate(userID, chatID int64, data string) *tgbotapi.Update {
	return &tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: userID, UserName: "tester"},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
			Data:    data,
		},
	}
}

func TestBookingFlowEndToEnd(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	target := time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	b.HandleUpdate(ctx, msgUpdate(42, 42, "/start"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, btnBook))
	assert.Contains(t, tg.lastText(t), "этаж")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "floor:2"))
	b.HandleUpdate(ctx, cbUpdate(42, 42, "room:1"))
	assert.Contains(t, tg.lastText(t), "ФИО")

	b.HandleUpdate(ctx, msgUpdate(42, 42, "Иванова Мария Петровна"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, "Репетиция хора"))
	assert.Contains(t, tg.lastText(t), "дату")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "cal:select:"+target))
	b.HandleUpdate(ctx, msgUpdate(42, 42, "10:00"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, "12:00"))
	b.HandleUpdate(ctx, cbUpdate(42, 42, "rec:none"))
	assert.Contains(t, tg.lastText(t), "Подтвердить")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "confirm"))

	found := false
	for _, text := range tg.allTexts() {
		if strings.Contains(text, "создано") && strings.Contains(text, "Конференц-зал") {
			found = true
		}
	}
	assert.True(t, found, "confirmation message sent: %v", tg.allTexts())

	list, err := db.ListConfirmedReservations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(42), list[0].UserID)
}

func TestMyReservationsAndCancel(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()

	start := time.Now().AddDate(0, 0, 3)
	start = time.Date(start.Year(), start.Month(), start.Day(), 10, 0, 0, 0, time.Local)
	id, err := db.CreateReservation(ctx, &models.Reservation{
		RoomID: 1, UserID: 42, FullName: "Иванова Мария",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	require.NoError(t, err)

	b.HandleUpdate(ctx, msgUpdate(42, 42, btnMy))
	assert.Contains(t, tg.lastText(t), "Конференц-зал")

	// Someone else cannot cancel it.
	b.HandleUpdate(ctx, cbUpdate(99, 99, "resv_cancel:1"))
	assert.Contains(t, tg.lastText(t), "другому пользователю")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "resv_cancel:1"))
	assert.Contains(t, tg.lastText(t), "отменено")

	assert.ErrorIs(t, db.CancelReservation(ctx, id), models.ErrReservationNotFound)
}

func TestAdminAccess(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, msgUpdate(7, 7, "/admin"))
	assert.Contains(t, tg.lastText(t), "только для администраторов")

	b.HandleUpdate(ctx, msgUpdate(7, 7, "/admin wrong"))
	assert.Contains(t, tg.lastText(t), "только для администраторов")

	b.HandleUpdate(ctx, msgUpdate(7, 7, "/admin secret"))
	assert.Contains(t, tg.lastText(t), "администратора")

	b.HandleUpdate(ctx, msgUpdate(7, 7, "/add_room 305 3 12 Репетиционная"))
	assert.Contains(t, tg.lastText(t), "добавлена")

	b.HandleUpdate(ctx, msgUpdate(7, 7, "/del_room 2"))
	assert.Contains(t, tg.lastText(t), "скрыта")
}

func TestRoomCatalogBrowseAndBook(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()

	_, err := db.CreateRoom(ctx, &models.Room{
		Number: "215", Floor: 2, Capacity: 12,
		Equipment: "проектор, флипчарт", Description: "Малый зал",
	})
	require.NoError(t, err)

	b.HandleUpdate(ctx, msgUpdate(42, 42, btnRooms))
	assert.Contains(t, tg.lastText(t), "этаж")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "rooms:floor:2"))
	assert.Contains(t, tg.lastText(t), "Аудитории на 2 этаже")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "rooms:room:2"))
	text := tg.lastText(t)
	assert.Contains(t, text, "Аудитория 215")
	assert.Contains(t, text, "до 12 чел")
	assert.Contains(t, text, "проектор")
	assert.Contains(t, text, "Малый зал")

	// Booking straight from the details view.
	b.HandleUpdate(ctx, cbUpdate(42, 42, "rooms:book:2"))
	assert.Contains(t, tg.lastText(t), "ФИО")
	b.HandleUpdate(ctx, msgUpdate(42, 42, "Иванова Мария"))
	assert.Contains(t, tg.lastText(t), "цель")
}

func TestRoomCatalogUnknownRoom(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, cbUpdate(42, 42, "rooms:room:999"))
	assert.Contains(t, tg.lastText(t), "не найдена")

	b.HandleUpdate(ctx, cbUpdate(42, 42, "rooms:book:999"))
	assert.Contains(t, tg.lastText(t), "не найдена")
}

func TestRoomCatalogDropsDraft(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, msgUpdate(42, 42, btnBook))
	b.HandleUpdate(ctx, cbUpdate(42, 42, "floor:2"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, btnRooms))

	b.HandleUpdate(ctx, msgUpdate(42, 42, "room:1"))
	assert.Contains(t, tg.lastText(t), "Нет активного бронирования")
}

func TestDialogInputWithoutSession(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, cbUpdate(42, 42, "confirm"))
	assert.Contains(t, tg.lastText(t), "Нет активного бронирования")
}

func TestStartDeepLinkPreselectsRoom(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, msgUpdate(42, 42, "/start room_1"))
	assert.Contains(t, tg.lastText(t), "ФИО")

	// Unknown room falls back to the menu.
	b.HandleUpdate(ctx, msgUpdate(42, 42, "/start room_999"))
	assert.Contains(t, tg.lastText(t), "Чем могу помочь")
}

func TestAdminExportKeepsCopyOnDisk(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()
	b.cfg.Export.Dir = t.TempDir()

	require.NoError(t, db.UpsertUser(ctx, &models.User{ID: 7, Username: "admin"}))
	require.NoError(t, db.SetAdmin(ctx, 7, true))

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 10, 0, 0, 0, time.Local)
	_, err := db.CreateReservation(ctx, &models.Reservation{
		RoomID: 1, UserID: 42, FullName: "Иванова Мария",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	require.NoError(t, err)

	b.HandleUpdate(ctx, cbUpdate(7, 7, "admin:export"))

	entries, err := os.ReadDir(b.cfg.Export.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".xlsx"), entries[0].Name())

	// The document still goes to the chat.
	var gotDoc bool
	for _, c := range tg.sent {
		if _, ok := c.(tgbotapi.DocumentConfig); ok {
			gotDoc = true
		}
	}
	assert.True(t, gotDoc)
}

func TestTimeUntilNextHour(t *testing.T) {
	now := time.Date(2026, time.September, 1, 7, 30, 0, 0, time.Local)
	assert.Equal(t, 90*time.Minute, timeUntilNextHour(now, 9))

	// Already past today's slot, wait for tomorrow.
	now = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.Local)
	assert.Equal(t, 23*time.Hour, timeUntilNextHour(now, 9))
}

func TestTomorrowReminders(t *testing.T) {
	b, tg, db := newTestBot(t)
	ctx := context.Background()

	tomorrow := time.Now().AddDate(0, 0, 1)
	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 14, 0, 0, 0, time.Local)
	_, err := db.CreateReservation(ctx, &models.Reservation{
		RoomID: 1, UserID: 42, FullName: "Иванова Мария",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	require.NoError(t, err)

	b.sendTomorrowReminders(ctx)

	text := tg.lastText(t)
	assert.Contains(t, text, "Напоминание")
	assert.Contains(t, text, "Конференц-зал")
	assert.Contains(t, text, "14:00")
}

func TestMenuEscapeDropsDraft(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, msgUpdate(42, 42, btnBook))
	b.HandleUpdate(ctx, cbUpdate(42, 42, "floor:2"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, btnSchedule))

	// The half-filled dialog is gone.
	b.HandleUpdate(ctx, msgUpdate(42, 42, "room:1"))
	assert.Contains(t, tg.lastText(t), "Нет активного бронирования")
}

func TestCancelMidDialog(t *testing.T) {
	b, tg, _ := newTestBot(t)
	ctx := context.Background()

	b.HandleUpdate(ctx, msgUpdate(42, 42, btnBook))
	b.HandleUpdate(ctx, cbUpdate(42, 42, "floor:2"))
	b.HandleUpdate(ctx, msgUpdate(42, 42, "/cancel"))
	texts := tg.allTexts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[len(texts)-2], "отменено")

	// The session is gone afterwards.
	b.HandleUpdate(ctx, msgUpdate(42, 42, "какой-то текст"))
	assert.Contains(t, tg.lastText(t), "Нет активного бронирования")
}
