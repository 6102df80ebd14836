// Package bot is the telegram transport of the room booking service. It
// turns updates into dialog inputs and renders dialog results back into
// messages and keyboards.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"darbot/internal/booking"
	"darbot/internal/config"
	"darbot/internal/database"
	"darbot/internal/events"
	"darbot/internal/metrics"
	"darbot/internal/models"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// SessionStore persists dialog sessions between updates.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*booking.Session, error)
	Set(ctx context.Context, session *booking.Session) error
	Delete(ctx context.Context, userID int64) error
}

// Bot wires telegram updates to the booking dialog and the store.
type Bot struct {
	tg       telegramClient
	db       *database.DB
	dialogs  *booking.DialogHandler
	sessions SessionStore
	cfg      *config.Config
	bus      *events.EventBus
	limiter  *rate.Limiter
	logger   *zerolog.Logger
	now      func() time.Time
}

// New authorizes against the telegram API and builds the bot.
func New(cfg *config.Config, db *database.DB, sessions SessionStore, bus *events.EventBus, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("authorize bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug
	return NewWithTelegramClient(&realTelegramClient{api: api}, cfg, db, sessions, bus, logger), nil
}

// NewWithTelegramClient allows injecting a mocked telegram client for tests.
func NewWithTelegramClient(tg telegramClient, cfg *config.Config, db *database.DB, sessions SessionStore, bus *events.EventBus, logger *zerolog.Logger) *Bot {
	return &Bot{
		tg:       tg,
		db:       db,
		dialogs:  booking.NewDialogHandler(db, db, cfg.MaxAdvance()),
		sessions: sessions,
		cfg:      cfg,
		bus:      bus,
		limiter:  rate.NewLimiter(rate.Limit(cfg.SendRate()), 30),
		logger:   logger,
		now:      time.Now,
	}
}

// Start polls updates until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("Bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.HandleUpdate(updateCtx, &update)
		}
	}
}

// HandleUpdate dispatches one update.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	metrics.IncUpdateProcessed()
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("Handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("Handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

const helpText = `Я помогаю бронировать аудитории КЦ «Дар».

🗂 Аудитории — посмотреть аудитории и их оснащение
📅 Забронировать — выбрать аудиторию и время
📋 Мои бронирования — посмотреть и отменить свои брони
🗓 Расписание — занятость аудиторий на сегодня

Команды: /rooms, /book, /my, /schedule, /cancel`

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	b.rememberUser(ctx, msg.From)

	switch {
	case strings.HasPrefix(text, "/start"):
		b.dropSession(ctx, userID)
		// Deep links: t.me/bot?start=room_7 preselects the room.
		if payload := strings.TrimSpace(strings.TrimPrefix(text, "/start")); strings.HasPrefix(payload, "room_") {
			if roomID, err := strconv.ParseInt(strings.TrimPrefix(payload, "room_"), 10, 64); err == nil {
				if room, err := b.db.GetRoom(ctx, roomID); err == nil {
					b.StartDialogForRoom(ctx, chatID, userID, room)
					return
				}
			}
		}
		b.sendMainMenu(ctx, chatID, "Здравствуйте! Чем могу помочь?")
		return
	// Menu items and commands interrupt any active dialog: the draft is
	// dropped, not resumed behind the user's back.
	case text == btnHelp || strings.HasPrefix(text, "/help"):
		b.dropSession(ctx, userID)
		b.reply(ctx, chatID, helpText)
		return
	case text == btnRooms || strings.HasPrefix(text, "/rooms"):
		b.dropSession(ctx, userID)
		b.sendRoomCatalog(ctx, chatID, 0)
		return
	case text == btnBook || strings.HasPrefix(text, "/book"):
		b.startDialog(ctx, chatID, userID)
		return
	case text == btnMy || strings.HasPrefix(text, "/my"):
		b.dropSession(ctx, userID)
		b.sendMyReservations(ctx, chatID, userID)
		return
	case text == btnSchedule || strings.HasPrefix(text, "/schedule"):
		b.dropSession(ctx, userID)
		b.sendTodaySchedule(ctx, chatID)
		return
	case strings.HasPrefix(text, "/admin") || strings.HasPrefix(text, "/add_room") ||
		strings.HasPrefix(text, "/del_room") || strings.HasPrefix(text, "/del_booking") ||
		strings.HasPrefix(text, "/export"):
		b.dropSession(ctx, userID)
		b.handleAdminCommand(ctx, msg)
		return
	case strings.HasPrefix(text, "/cancel"):
		b.dialogInput(ctx, chatID, userID, "cancel")
		return
	}

	b.dialogInput(ctx, chatID, userID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	data := cq.Data
	_ = b.answerCallback(cq.ID)

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, "admin:"):
		b.handleAdminCallback(ctx, chatID, userID, data)
	case strings.HasPrefix(data, "rooms:"):
		b.handleRoomsCallback(ctx, chatID, userID, cq.Message.MessageID, data)
	case strings.HasPrefix(data, "resv_cancel:"):
		b.cancelReservation(ctx, chatID, userID, strings.TrimPrefix(data, "resv_cancel:"))
	case strings.HasPrefix(data, "series_cancel:"):
		b.cancelSeries(ctx, chatID, userID, strings.TrimPrefix(data, "series_cancel:"))
	case strings.HasPrefix(data, "my_page:"):
		page, err := strconv.Atoi(strings.TrimPrefix(data, "my_page:"))
		if err != nil {
			return
		}
		b.renderReservationsPage(ctx, chatID, userID, cq.Message.MessageID, page)
	case strings.HasPrefix(data, "cal:select:"):
		if _, ok := ParseSelection(data); !ok {
			return
		}
		b.dialogInput(ctx, chatID, userID, data)
	default:
		// Everything else is dialog input: floor:, room:, cal:, rec:,
		// confirm, rewrite, cancel, back:floors.
		b.dialogInput(ctx, chatID, userID, data)
	}
}

func (b *Bot) dropSession(ctx context.Context, userID int64) {
	if err := b.sessions.Delete(ctx, userID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("drop session")
	}
}

func (b *Bot) rememberUser(ctx context.Context, from *tgbotapi.User) {
	u := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}
	if err := b.db.UpsertUser(ctx, u); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("user_id", from.ID).Msg("upsert user failed")
	}
}

func (b *Bot) startDialog(ctx context.Context, chatID, userID int64) {
	session := booking.NewSession(userID, chatID)
	res := b.dialogs.Start(ctx, session)
	if err := b.sessions.Set(ctx, session); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("save session")
	}
	b.render(ctx, chatID, session, res)
}

// StartDialogForRoom begins a booking with the room preselected, used for
// deep links like t.me/bot?start=room_7.
func (b *Bot) StartDialogForRoom(ctx context.Context, chatID, userID int64, room *models.Room) {
	session := booking.NewSessionForRoom(userID, chatID, room)
	res := b.dialogs.Start(ctx, session)
	if err := b.sessions.Set(ctx, session); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("save session")
	}
	b.render(ctx, chatID, session, res)
}

func (b *Bot) dialogInput(ctx context.Context, chatID, userID int64, input string) {
	session, err := b.sessions.Get(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("load session")
	}
	if session == nil {
		b.sendMainMenu(ctx, chatID, "Нет активного бронирования. Нажмите «"+btnBook+"», чтобы начать.")
		return
	}
	session.ChatID = chatID

	prior := session.GetState()
	res := b.dialogs.HandleInput(ctx, session, input)

	if res.NewState == booking.StateStartTime &&
		(prior == booking.StateEndTime || prior == booking.StateConfirm) {
		metrics.IncReservationConflict()
	}

	switch res.NewState {
	case booking.StateCompleted:
		metrics.IncDialogCompleted("completed")
		b.publishCreated(session, res)
		if err := b.sessions.Delete(ctx, userID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("drop session")
		}
		b.render(ctx, chatID, session, res)
		b.sendMainMenu(ctx, chatID, "Что дальше?")
	case booking.StateCancelled:
		metrics.IncDialogCompleted("cancelled")
		if err := b.sessions.Delete(ctx, userID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("drop session")
		}
		b.render(ctx, chatID, session, res)
		b.sendMainMenu(ctx, chatID, "Что дальше?")
	default:
		if err := b.sessions.Set(ctx, session); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("save session")
		}
		b.render(ctx, chatID, session, res)
	}
}

func (b *Bot) publishCreated(session *booking.Session, res booking.Result) {
	kind := session.Draft.Recurrence
	recurrence := string(models.RecurrenceNone)
	eventType := events.TypeReservationCreated
	if kind != "" && kind != models.RecurrenceNone {
		recurrence = string(kind)
		eventType = events.TypeSeriesCreated
	}
	for i := 0; i < res.Created; i++ {
		metrics.IncReservationCreated(recurrence)
	}
	b.bus.Publish(events.NewReservationEvent(eventType, events.ReservationPayload{
		RoomID:    session.Draft.RoomID,
		UserID:    session.UserID,
		Created:   res.Created,
		Requested: res.Requested,
	}))
}

// render sends the dialog result: its message plus either the calendar, the
// option buttons, or nothing.
func (b *Bot) render(ctx context.Context, chatID int64, session *booking.Session, res booking.Result) {
	if res.Message == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, res.Message)
	msg.ParseMode = "Markdown"

	switch {
	case res.ShowCalendar:
		minDate := b.now()
		if res.MinDate != "" {
			if t, err := time.ParseInLocation("2006-01-02", res.MinDate, time.Local); err == nil {
				minDate = t
			}
		}
		var maxDate time.Time
		if res.MaxDate != "" {
			if t, err := time.ParseInLocation("2006-01-02", res.MaxDate, time.Local); err == nil {
				maxDate = t
			}
		}
		selected := session.Draft.Date
		if session.GetState() == booking.StateRecurrenceUntil {
			selected = session.Draft.RecurrenceUntil
		}
		grid := BuildMonthGrid(session.Draft.CalendarYear, time.Month(session.Draft.CalendarMonth),
			b.now(), minDate, maxDate, selected)
		msg.ReplyMarkup = CalendarKeyboard(grid)
	case len(res.Options) > 0:
		msg.ReplyMarkup = optionsKeyboard(res.Options)
	}

	b.send(ctx, msg)
}

func (b *Bot) sendMyReservations(ctx context.Context, chatID, userID int64) {
	b.renderReservationsPage(ctx, chatID, userID, 0, 0)
}

func (b *Bot) cancelReservation(ctx context.Context, chatID, userID int64, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return
	}

	r, err := b.db.GetReservation(ctx, id)
	if err != nil {
		b.reply(ctx, chatID, "Бронирование не найдено.")
		return
	}
	admin := b.isAdmin(ctx, userID)
	if r.UserID != userID && !admin {
		b.reply(ctx, chatID, "Это бронирование принадлежит другому пользователю.")
		return
	}

	if err := b.db.CancelReservation(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("reservation_id", id).Msg("cancel reservation")
		b.reply(ctx, chatID, "⚠️ Не удалось отменить бронирование.")
		return
	}
	metrics.IncReservationCancelled()
	b.bus.Publish(events.NewReservationEvent(events.TypeReservationCancelled, events.ReservationPayload{
		ReservationID: id, RoomID: r.RoomID, UserID: r.UserID,
		StartTime: r.StartTime, EndTime: r.EndTime,
	}))
	b.reply(ctx, chatID, fmt.Sprintf("✅ Бронирование на %s отменено.", r.StartTime.Format("02.01.2006 15:04")))
}

func (b *Bot) cancelSeries(ctx context.Context, chatID, userID int64, group string) {
	// Ownership is checked through any reservation of the group.
	list, err := b.db.ListUserReservations(ctx, userID, b.now())
	if err == nil && !b.isAdmin(ctx, userID) {
		owned := false
		for _, r := range list {
			if r.RecurrenceGroup == group {
				owned = true
				break
			}
		}
		if !owned {
			b.reply(ctx, chatID, "Эта серия принадлежит другому пользователю.")
			return
		}
	}

	n, err := b.db.CancelSeries(ctx, group, b.now())
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("recurrence_group", group).Msg("cancel series")
		b.reply(ctx, chatID, "⚠️ Не удалось отменить серию.")
		return
	}
	for i := 0; i < n; i++ {
		metrics.IncReservationCancelled()
	}
	b.reply(ctx, chatID, fmt.Sprintf("✅ Отменено бронирований в серии: %d.", n))
}

func (b *Bot) sendTodaySchedule(ctx context.Context, chatID int64) {
	now := b.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	list, err := b.db.ListReservationsBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("today schedule")
		b.reply(ctx, chatID, "⚠️ Не удалось загрузить расписание.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, chatID, "Сегодня все аудитории свободны.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 *Расписание на %s:*\n", now.Format("02.01.2006"))
	lastRoom := ""
	for _, r := range list {
		room := r.RoomName
		if room == "" {
			room = "Аудитория " + r.RoomNumber
		}
		if room != lastRoom {
			fmt.Fprintf(&sb, "\n*%s*\n", room)
			lastRoom = room
		}
		fmt.Fprintf(&sb, "  %s–%s %s\n",
			r.StartTime.Format("15:04"), r.EndTime.Format("15:04"), r.FullName)
	}
	b.reply(ctx, chatID, sb.String())
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenu
	b.send(ctx, msg)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.send(ctx, msg)
}

// send applies the outgoing rate limit before talking to the API.
func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("send message failed")
	}
}

func (b *Bot) answerCallback(id string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, ""))
	return err
}
