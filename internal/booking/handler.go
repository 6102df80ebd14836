package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"darbot/internal/models"
)

// RoomSource provides room lookups for the dialog.
type RoomSource interface {
	ListFloors(ctx context.Context) ([]int, error)
	ListRoomsByFloor(ctx context.Context, floor int) ([]models.Room, error)
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
}

// ReservationStore persists reservations and lists them for conflict checks.
// CreateReservation re-checks the interval inside its own transaction and
// returns models.ErrTimeConflict if it lost the race.
type ReservationStore interface {
	ReservationSource
	CreateReservation(ctx context.Context, r *models.Reservation) (int64, error)
}

// Callback tokens fed back by the transport as dialog input.
const (
	inputBackToFloors  = "back:floors"
	inputCalPrev       = "cal:prev"
	inputCalNext       = "cal:next"
	inputCalManual     = "cal:manual"
	inputCalIgnore     = "cal:ignore"
	inputCalSelect     = "cal:select:" // followed by YYYY-MM-DD
	inputRecurrence    = "rec:"        // followed by the kind
	inputConfirm       = "confirm"
	inputRewrite       = "rewrite"
	inputCancel        = "cancel"
	inputCancelCommand = "/cancel"
)

const maxTextInput = 200

// DialogHandler drives the booking dialog: it validates each answer, decides
// the next state and produces the reply for the transport to render.
type DialogHandler struct {
	fsm        *FSM
	rooms      RoomSource
	store      ReservationStore
	checker    *Checker
	maxAdvance time.Duration
	now        func() time.Time
}

// NewDialogHandler creates a dialog handler over the given stores. maxAdvance
// bounds how far ahead a booking may start; non-positive means one year.
func NewDialogHandler(rooms RoomSource, store ReservationStore, maxAdvance time.Duration) *DialogHandler {
	if maxAdvance <= 0 {
		maxAdvance = 365 * 24 * time.Hour
	}
	return &DialogHandler{
		fsm:        NewFSM(),
		rooms:      rooms,
		store:      store,
		checker:    NewChecker(store),
		maxAdvance: maxAdvance,
		now:        time.Now,
	}
}

// maxDate is the last day a booking may start on.
func (h *DialogHandler) maxDate() time.Time {
	return dateOnly(h.now().Add(h.maxAdvance))
}

// Start produces the opening prompt for a freshly created session.
func (h *DialogHandler) Start(ctx context.Context, session *Session) Result {
	switch session.GetState() {
	case StateFullName:
		return Result{NewState: StateFullName, Message: StatePrompts[StateFullName]}
	default:
		return h.promptFloors(ctx, session)
	}
}

// HandleInput processes one user input for the session's current state.
func (h *DialogHandler) HandleInput(ctx context.Context, session *Session, input string) Result {
	input = strings.TrimSpace(input)
	if isCancel(input) {
		session.SetState(StateCancelled)
		return Result{NewState: StateCancelled, Message: StatePrompts[StateCancelled]}
	}

	switch session.GetState() {
	case StateChoosingFloor:
		return h.handleFloor(ctx, session, input)
	case StateChoosingRoom:
		return h.handleRoom(ctx, session, input)
	case StateFullName:
		return h.handleFullName(session, input)
	case StatePurpose:
		return h.handlePurpose(session, input)
	case StateDate:
		return h.handleDate(session, input)
	case StateStartTime:
		return h.handleStartTime(session, input)
	case StateEndTime:
		return h.handleEndTime(ctx, session, input)
	case StateRecurrence:
		return h.handleRecurrence(session, input)
	case StateRecurrenceUntil:
		return h.handleRecurrenceUntil(session, input)
	case StateConfirm:
		return h.handleConfirm(ctx, session, input)
	default:
		return Result{
			NewState: session.GetState(),
			Message:  "Нет активного бронирования. Нажмите «Забронировать», чтобы начать.",
		}
	}
}

func isCancel(input string) bool {
	switch strings.ToLower(input) {
	case inputCancel, inputCancelCommand, "отмена", "❌ отмена":
		return true
	}
	return false
}

func (h *DialogHandler) promptFloors(ctx context.Context, session *Session) Result {
	floors, err := h.rooms.ListFloors(ctx)
	if err != nil {
		return Result{
			NewState: session.GetState(),
			Message:  "⚠️ Не удалось загрузить список этажей. Попробуйте ещё раз.",
			Error:    err,
		}
	}
	opts := make([]Option, 0, len(floors))
	for _, f := range floors {
		opts = append(opts, Option{Label: fmt.Sprintf("Этаж %d", f), Value: fmt.Sprintf("floor:%d", f)})
	}
	return Result{NewState: session.GetState(), Message: StatePrompts[StateChoosingFloor], Options: opts}
}

func (h *DialogHandler) handleFloor(ctx context.Context, session *Session, input string) Result {
	raw := strings.TrimPrefix(input, "floor:")
	floor, err := strconv.Atoi(raw)
	if err != nil {
		return h.promptFloors(ctx, session)
	}

	rooms, err := h.rooms.ListRoomsByFloor(ctx, floor)
	if err != nil {
		return Result{
			NewState: StateChoosingFloor,
			Message:  "⚠️ Не удалось загрузить аудитории. Попробуйте ещё раз.",
			Error:    err,
		}
	}
	if len(rooms) == 0 {
		r := h.promptFloors(ctx, session)
		r.Message = fmt.Sprintf("На этаже %d нет доступных аудиторий. %s", floor, StatePrompts[StateChoosingFloor])
		return r
	}

	session.Draft.Floor = floor
	h.fsm.Transition(session, StateChoosingRoom)
	return Result{
		NewState: StateChoosingRoom,
		Message:  StatePrompts[StateChoosingRoom],
		Options:  roomOptions(rooms),
	}
}

func roomOptions(rooms []models.Room) []Option {
	opts := make([]Option, 0, len(rooms)+1)
	for _, r := range rooms {
		label := r.DisplayName()
		if r.Capacity > 0 {
			label = fmt.Sprintf("%s (до %d чел.)", label, r.Capacity)
		}
		opts = append(opts, Option{Label: label, Value: fmt.Sprintf("room:%d", r.ID)})
	}
	opts = append(opts, Option{Label: "⬅️ К этажам", Value: inputBackToFloors})
	return opts
}

func (h *DialogHandler) handleRoom(ctx context.Context, session *Session, input string) Result {
	if input == inputBackToFloors {
		h.fsm.Transition(session, StateChoosingFloor)
		return h.promptFloors(ctx, session)
	}

	raw := strings.TrimPrefix(input, "room:")
	roomID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Result{NewState: StateChoosingRoom, Message: StatePrompts[StateChoosingRoom]}
	}

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			return h.roomGone(ctx, session)
		}
		return Result{
			NewState: StateChoosingRoom,
			Message:  "⚠️ Не удалось загрузить аудиторию. Попробуйте ещё раз.",
			Error:    err,
		}
	}
	if !room.IsActive {
		return h.roomGone(ctx, session)
	}

	session.Draft.RoomID = room.ID
	session.Draft.RoomNumber = room.Number
	session.Draft.RoomName = room.Name
	session.Draft.Floor = room.Floor
	h.fsm.Transition(session, StateFullName)
	return Result{NewState: StateFullName, Message: StatePrompts[StateFullName]}
}

// roomGone handles a room that disappeared mid-dialog: the room choice is
// dropped and the user returns to floor selection.
func (h *DialogHandler) roomGone(ctx context.Context, session *Session) Result {
	session.Draft.RoomID = 0
	session.Draft.RoomNumber = ""
	session.Draft.RoomName = ""
	h.fsm.Transition(session, StateChoosingFloor)
	r := h.promptFloors(ctx, session)
	r.Message = "Эта аудитория больше недоступна. " + StatePrompts[StateChoosingFloor]
	return r
}

func (h *DialogHandler) handleFullName(session *Session, input string) Result {
	if input == "" || utf8.RuneCountInString(input) > maxTextInput {
		return Result{NewState: StateFullName, Message: "Пожалуйста, введите ФИО текстом."}
	}
	session.Draft.FullName = input
	h.fsm.Transition(session, StatePurpose)
	return Result{NewState: StatePurpose, Message: StatePrompts[StatePurpose]}
}

func (h *DialogHandler) handlePurpose(session *Session, input string) Result {
	if input == "" || utf8.RuneCountInString(input) > maxTextInput {
		return Result{NewState: StatePurpose, Message: "Пожалуйста, укажите цель бронирования текстом."}
	}
	session.Draft.Purpose = input
	h.fsm.Transition(session, StateDate)

	now := h.now()
	session.Draft.CalendarYear = now.Year()
	session.Draft.CalendarMonth = int(now.Month())
	session.Draft.ManualDate = false
	return Result{
		NewState:     StateDate,
		Message:      StatePrompts[StateDate],
		ShowCalendar: true,
		MinDate:      now.Format("2006-01-02"),
		MaxDate:      h.maxDate().Format("2006-01-02"),
	}
}

func (h *DialogHandler) handleDate(session *Session, input string) Result {
	today := dateOnly(h.now())
	minDate := today.Format("2006-01-02")
	maxDate := h.maxDate()

	switch {
	case input == inputCalIgnore:
		return Result{NewState: StateDate}
	case input == inputCalPrev, input == inputCalNext:
		h.turnCalendarPage(session, input)
		return Result{NewState: StateDate, Message: StatePrompts[StateDate], ShowCalendar: true, MinDate: minDate, MaxDate: maxDate.Format("2006-01-02")}
	case input == inputCalManual:
		session.Draft.ManualDate = true
		return Result{NewState: StateDate, Message: "Введите дату в формате ДД.ММ.ГГГГ:"}
	}

	var picked time.Time
	var err error
	if strings.HasPrefix(input, inputCalSelect) {
		picked, err = time.Parse("2006-01-02", strings.TrimPrefix(input, inputCalSelect))
	} else {
		picked, err = parseDate(input)
	}
	if err != nil {
		return Result{
			NewState:     StateDate,
			Message:      "Не удалось распознать дату. Введите её в формате ДД.ММ.ГГГГ или выберите в календаре.",
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      minDate,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}
	// The displayed month stays where it was so the user does not lose
	// their place after picking a past day.
	if dateOnly(picked).Before(today) {
		return Result{
			NewState:     StateDate,
			Message:      "❌ Нельзя выбрать прошедшую дату. " + StatePrompts[StateDate],
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      minDate,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}
	if dateOnly(picked).After(maxDate) {
		return Result{
			NewState:     StateDate,
			Message:      fmt.Sprintf("❌ Бронировать можно не дальше чем на %s. ", maxDate.Format("02.01.2006")) + StatePrompts[StateDate],
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      minDate,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}

	session.Draft.Date = picked.Format("2006-01-02")
	h.fsm.Transition(session, StateStartTime)
	return Result{NewState: StateStartTime, Message: StatePrompts[StateStartTime]}
}

func (h *DialogHandler) turnCalendarPage(session *Session, input string) {
	delta := 1
	if input == inputCalPrev {
		delta = -1
	}
	page := time.Date(session.Draft.CalendarYear, time.Month(session.Draft.CalendarMonth), 1, 0, 0, 0, 0, time.Local)
	page = page.AddDate(0, delta, 0)
	// Never page back past the current month, nor forward past the month of
	// the last bookable day.
	now := h.now()
	if page.Year() < now.Year() || (page.Year() == now.Year() && page.Month() < now.Month()) {
		page = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}
	last := h.maxDate()
	lastMonth := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.Local)
	if page.After(lastMonth) {
		page = lastMonth
	}
	session.Draft.CalendarYear = page.Year()
	session.Draft.CalendarMonth = int(page.Month())
}

func (h *DialogHandler) handleStartTime(session *Session, input string) Result {
	clock, err := parseClock(input)
	if err != nil {
		return Result{NewState: StateStartTime, Message: "Не удалось распознать время. Введите его в формате ЧЧ:ММ, например 14:30."}
	}
	session.Draft.StartTime = clock
	h.fsm.Transition(session, StateEndTime)
	return Result{NewState: StateEndTime, Message: StatePrompts[StateEndTime]}
}

func (h *DialogHandler) handleEndTime(ctx context.Context, session *Session, input string) Result {
	clock, err := parseClock(input)
	if err != nil {
		return Result{NewState: StateEndTime, Message: "Не удалось распознать время. Введите его в формате ЧЧ:ММ, например 16:00."}
	}
	session.Draft.EndTime = clock

	start, end, err := session.Draft.slot()
	if err != nil {
		return Result{NewState: StateEndTime, Message: "Не удалось распознать время. " + StatePrompts[StateEndTime], Error: err}
	}
	if !end.After(start) {
		return Result{NewState: StateEndTime, Message: "Время окончания должно быть позже времени начала. " + StatePrompts[StateEndTime]}
	}

	ok, err := h.checker.IsAvailable(ctx, session.Draft.RoomID, start, end)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("room_id", session.Draft.RoomID).Msg("availability check failed")
		return Result{
			NewState: StateEndTime,
			Message:  "⚠️ Не удалось проверить доступность. Попробуйте ещё раз.",
			Error:    err,
		}
	}
	if !ok {
		return h.timeConflict(session)
	}

	h.fsm.Transition(session, StateRecurrence)
	return Result{NewState: StateRecurrence, Message: StatePrompts[StateRecurrence], Options: recurrenceOptions()}
}

// timeConflict sends the user back to the start time question with the
// entered times cleared. Used both for the pre-check and for a conflict
// detected inside the store at creation time.
func (h *DialogHandler) timeConflict(session *Session) Result {
	session.Draft.StartTime = ""
	session.Draft.EndTime = ""
	h.fsm.Transition(session, StateStartTime)
	return Result{
		NewState: StateStartTime,
		Message:  "❌ Это время уже занято. " + StatePrompts[StateStartTime],
	}
}

func recurrenceOptions() []Option {
	kinds := []models.RecurrenceKind{
		models.RecurrenceNone,
		models.RecurrenceWeekly,
		models.RecurrenceBiweekly,
		models.RecurrenceMonthly,
	}
	opts := make([]Option, 0, len(kinds))
	for _, k := range kinds {
		opts = append(opts, Option{Label: RecurrenceLabels[k], Value: inputRecurrence + string(k)})
	}
	return opts
}

func (h *DialogHandler) handleRecurrence(session *Session, input string) Result {
	if !strings.HasPrefix(input, inputRecurrence) {
		return Result{NewState: StateRecurrence, Message: StatePrompts[StateRecurrence], Options: recurrenceOptions()}
	}
	kind := models.RecurrenceKind(strings.TrimPrefix(input, inputRecurrence))
	if !kind.Valid() {
		return Result{NewState: StateRecurrence, Message: StatePrompts[StateRecurrence], Options: recurrenceOptions()}
	}

	session.Draft.Recurrence = kind
	if kind == models.RecurrenceNone {
		session.Draft.RecurrenceUntil = ""
		h.fsm.Transition(session, StateConfirm)
		return h.confirmation(session)
	}

	base, err := time.Parse("2006-01-02", session.Draft.Date)
	if err != nil {
		return Result{NewState: StateRecurrence, Message: StatePrompts[StateRecurrence], Options: recurrenceOptions(), Error: err}
	}
	session.Draft.CalendarYear = base.Year()
	session.Draft.CalendarMonth = int(base.Month())
	session.Draft.ManualDate = false
	h.fsm.Transition(session, StateRecurrenceUntil)
	return Result{
		NewState:     StateRecurrenceUntil,
		Message:      StatePrompts[StateRecurrenceUntil],
		ShowCalendar: true,
		MinDate:      session.Draft.Date,
		MaxDate:      h.maxDate().Format("2006-01-02"),
	}
}

func (h *DialogHandler) handleRecurrenceUntil(session *Session, input string) Result {
	maxDate := h.maxDate()

	switch {
	case input == inputCalIgnore:
		return Result{NewState: StateRecurrenceUntil}
	case input == inputCalPrev, input == inputCalNext:
		h.turnCalendarPage(session, input)
		return Result{NewState: StateRecurrenceUntil, Message: StatePrompts[StateRecurrenceUntil], ShowCalendar: true, MinDate: session.Draft.Date, MaxDate: maxDate.Format("2006-01-02")}
	case input == inputCalManual:
		session.Draft.ManualDate = true
		return Result{NewState: StateRecurrenceUntil, Message: "Введите дату окончания в формате ДД.ММ.ГГГГ:"}
	}

	var picked time.Time
	var err error
	if strings.HasPrefix(input, inputCalSelect) {
		picked, err = time.Parse("2006-01-02", strings.TrimPrefix(input, inputCalSelect))
	} else {
		picked, err = parseDate(input)
	}
	if err != nil {
		return Result{
			NewState:     StateRecurrenceUntil,
			Message:      "Не удалось распознать дату. " + StatePrompts[StateRecurrenceUntil],
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      session.Draft.Date,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}

	base, err := time.Parse("2006-01-02", session.Draft.Date)
	if err == nil && dateOnly(picked).Before(dateOnly(base)) {
		return Result{
			NewState:     StateRecurrenceUntil,
			Message:      "❌ Дата окончания не может быть раньше даты бронирования. " + StatePrompts[StateRecurrenceUntil],
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      session.Draft.Date,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}
	if dateOnly(picked).After(maxDate) {
		return Result{
			NewState:     StateRecurrenceUntil,
			Message:      fmt.Sprintf("❌ Повторять можно не дальше чем до %s. ", maxDate.Format("02.01.2006")) + StatePrompts[StateRecurrenceUntil],
			ShowCalendar: !session.Draft.ManualDate,
			MinDate:      session.Draft.Date,
			MaxDate:      maxDate.Format("2006-01-02"),
		}
	}

	session.Draft.RecurrenceUntil = picked.Format("2006-01-02")
	h.fsm.Transition(session, StateConfirm)
	return h.confirmation(session)
}

func (h *DialogHandler) confirmation(session *Session) Result {
	return Result{
		NewState: StateConfirm,
		Message:  FormatConfirmation(&session.Draft),
		Options: []Option{
			{Label: "✅ Подтвердить", Value: inputConfirm},
			{Label: "✏️ Заполнить заново", Value: inputRewrite},
			{Label: "❌ Отмена", Value: inputCancel},
		},
	}
}

func (h *DialogHandler) handleConfirm(ctx context.Context, session *Session, input string) Result {
	switch input {
	case inputRewrite:
		// The room stays, everything typed in gets re-entered.
		session.Draft.FullName = ""
		session.Draft.Purpose = ""
		session.Draft.Date = ""
		session.Draft.StartTime = ""
		session.Draft.EndTime = ""
		session.Draft.Recurrence = ""
		session.Draft.RecurrenceUntil = ""
		h.fsm.Transition(session, StateFullName)
		return Result{NewState: StateFullName, Message: StatePrompts[StateFullName]}
	case inputConfirm:
		return h.createReservations(ctx, session)
	default:
		return h.confirmation(session)
	}
}

func (h *DialogHandler) createReservations(ctx context.Context, session *Session) Result {
	log := zerolog.Ctx(ctx)
	d := &session.Draft

	start, end, err := d.slot()
	if err != nil {
		return Result{NewState: StateConfirm, Message: "⚠️ Данные бронирования повреждены. Начните заново.", Error: err}
	}

	if d.Recurrence == "" || d.Recurrence == models.RecurrenceNone {
		r := &models.Reservation{
			RoomID:         d.RoomID,
			UserID:         session.UserID,
			FullName:       d.FullName,
			Purpose:        d.Purpose,
			StartTime:      start,
			EndTime:        end,
			Status:         models.StatusConfirmed,
			RecurrenceKind: models.RecurrenceNone,
		}
		id, err := h.store.CreateReservation(ctx, r)
		switch {
		case errors.Is(err, models.ErrTimeConflict):
			return h.timeConflict(session)
		case errors.Is(err, models.ErrRoomNotFound):
			return h.roomGone(ctx, session)
		case err != nil:
			log.Error().Err(err).Int64("room_id", d.RoomID).Msg("create reservation failed")
			res := h.confirmation(session)
			res.Message = "⚠️ Не удалось сохранить бронирование. Попробуйте ещё раз.\n\n" + res.Message
			res.Error = err
			return res
		}
		h.fsm.Transition(session, StateCompleted)
		return Result{
			NewState:  StateCompleted,
			Message:   formatCreated(d, id, start, end),
			Created:   1,
			Requested: 1,
		}
	}

	until, err := time.Parse("2006-01-02", d.RecurrenceUntil)
	if err != nil {
		return Result{NewState: StateConfirm, Message: "⚠️ Данные бронирования повреждены. Начните заново.", Error: err}
	}
	occurrences, err := Expand(start, end, d.Recurrence, until)
	if err != nil {
		return Result{NewState: StateConfirm, Message: "⚠️ Не удалось построить расписание повторений.", Error: err}
	}

	group := uuid.New().String()
	untilDate := dateOnly(until)
	created := 0
	for _, occ := range occurrences {
		ok, err := h.checker.IsAvailable(ctx, d.RoomID, occ.Start, occ.End)
		if err != nil {
			log.Warn().Err(err).
				Int64("room_id", d.RoomID).
				Time("start", occ.Start).
				Msg("recurring occurrence availability check failed")
			continue
		}
		if !ok {
			continue
		}
		r := &models.Reservation{
			RoomID:          d.RoomID,
			UserID:          session.UserID,
			FullName:        d.FullName,
			Purpose:         d.Purpose,
			StartTime:       occ.Start,
			EndTime:         occ.End,
			Status:          models.StatusConfirmed,
			RecurrenceKind:  d.Recurrence,
			RecurrenceUntil: &untilDate,
			RecurrenceGroup: group,
		}
		if _, err := h.store.CreateReservation(ctx, r); err != nil {
			log.Warn().Err(err).
				Int64("room_id", d.RoomID).
				Time("start", occ.Start).
				Msg("recurring occurrence skipped")
			continue
		}
		created++
	}

	log.Info().
		Str("recurrence_group", group).
		Int("created", created).
		Int("requested", len(occurrences)).
		Msg("recurring reservation series created")

	h.fsm.Transition(session, StateCompleted)
	return Result{
		NewState:  StateCompleted,
		Message:   formatSeriesCreated(d, created, len(occurrences)),
		Created:   created,
		Requested: len(occurrences),
	}
}

// slot combines the draft's date and clocks into concrete instants.
func (d *Draft) slot() (start, end time.Time, err error) {
	day, err := time.ParseInLocation("2006-01-02", d.Date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", d.Date, err)
	}
	start, err = clockOn(day, d.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = clockOn(day, d.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func clockOn(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func formatCreated(d *Draft, id int64, start, end time.Time) string {
	return fmt.Sprintf(`✅ *Бронирование #%d создано!*

🏢 %s (этаж %d)
📅 %s, %s – %s
👤 %s
🎯 %s`,
		id,
		d.RoomLabel(), d.Floor,
		start.Format("02.01.2006"), start.Format("15:04"), end.Format("15:04"),
		d.FullName,
		d.Purpose,
	)
}

func formatSeriesCreated(d *Draft, created, requested int) string {
	msg := fmt.Sprintf(`✅ *Создано %d из %d бронирований.*

🏢 %s (этаж %d)
🔁 %s до %s
⏰ %s – %s`,
		created, requested,
		d.RoomLabel(), d.Floor,
		RecurrenceLabels[d.Recurrence], displayDate(d.RecurrenceUntil),
		d.StartTime, d.EndTime,
	)
	if created < requested {
		msg += "\n\nЧасть дат была пропущена, так как время в эти дни уже занято."
	}
	return msg
}

var dateLayouts = []string{"2006-01-02", "02.01.2006", "02.01.06", "02/01/2006"}

func parseDate(input string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, input, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", input)
}

// parseClock normalizes user input into HH:MM.
func parseClock(input string) (string, error) {
	input = strings.TrimSpace(strings.ReplaceAll(input, ".", ":"))
	t, err := time.Parse("15:04", input)
	if err != nil {
		// Allow a single-digit hour like 9:30.
		t, err = time.Parse("3:04", input)
		if err != nil {
			return "", fmt.Errorf("unrecognized time %q", input)
		}
	}
	return t.Format("15:04"), nil
}
