// Package booking implements the room booking dialog: the state machine,
// the availability checker and the recurrence expander.
package booking

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"darbot/internal/models"
)

// State represents the current state of the booking dialog.
type State string

const (
	StateIdle            State = "idle"
	StateChoosingFloor   State = "choosing_floor"
	StateChoosingRoom    State = "choosing_room"
	StateFullName        State = "entering_full_name"
	StatePurpose         State = "entering_purpose"
	StateDate            State = "selecting_date"
	StateStartTime       State = "entering_start_time"
	StateEndTime         State = "entering_end_time"
	StateRecurrence      State = "selecting_recurrence"
	StateRecurrenceUntil State = "selecting_recurrence_until"
	StateConfirm         State = "confirming"
	StateCompleted       State = "completed"
	StateCancelled       State = "cancelled"
)

// Draft holds the data collected during the booking dialog. Dates and clocks
// are kept as strings in the user's formats and combined into time.Time only
// at confirmation.
type Draft struct {
	RoomID     int64  `json:"room_id"`
	RoomNumber string `json:"room_number"`
	RoomName   string `json:"room_name"`
	Floor      int    `json:"floor"`
	FullName   string `json:"full_name"`
	Purpose    string `json:"purpose"`
	Date       string `json:"date"`       // YYYY-MM-DD
	StartTime  string `json:"start_time"` // HH:MM
	EndTime    string `json:"end_time"`   // HH:MM

	Recurrence      models.RecurrenceKind `json:"recurrence"`
	RecurrenceUntil string                `json:"recurrence_until"` // YYYY-MM-DD

	// Calendar page currently shown to the user.
	CalendarYear  int  `json:"calendar_year"`
	CalendarMonth int  `json:"calendar_month"`
	ManualDate    bool `json:"manual_date"`
}

// RoomLabel returns the human name of the chosen room.
func (d *Draft) RoomLabel() string {
	if d.RoomName != "" {
		return d.RoomName
	}
	return "Аудитория " + d.RoomNumber
}

// Session represents one user's booking dialog session.
type Session struct {
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	State     State     `json:"state"`
	Draft     Draft     `json:"draft"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
	mu        sync.Mutex
}

// NewSession creates a session starting at floor selection.
func NewSession(userID, chatID int64) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		ChatID:    chatID,
		State:     StateChoosingFloor,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// NewSessionForRoom creates a session with the room already chosen, skipping
// straight to the full name question.
func NewSessionForRoom(userID, chatID int64, room *models.Room) *Session {
	s := NewSession(userID, chatID)
	s.State = StateFullName
	s.Draft.RoomID = room.ID
	s.Draft.RoomNumber = room.Number
	s.Draft.RoomName = room.Name
	s.Draft.Floor = room.Floor
	return s
}

// SetState updates the session state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = state
	s.UpdatedAt = time.Now()
}

// GetState returns the current state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// Touch bumps the activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// FSM manages the allowed state transitions of the booking dialog.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the dialog FSM. Backward edges exist where a later step can
// send the user back: an availability conflict returns to the start time
// question, a vanished room returns to floor selection, and "заполнить
// заново" at confirmation returns to the full name question.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateIdle:            {StateChoosingFloor, StateFullName},
			StateChoosingFloor:   {StateChoosingRoom, StateCancelled},
			StateChoosingRoom:    {StateFullName, StateChoosingFloor, StateCancelled},
			StateFullName:        {StatePurpose, StateCancelled},
			StatePurpose:         {StateDate, StateCancelled},
			StateDate:            {StateStartTime, StateCancelled},
			StateStartTime:       {StateEndTime, StateCancelled},
			StateEndTime:         {StateRecurrence, StateStartTime, StateChoosingFloor, StateCancelled},
			StateRecurrence:      {StateConfirm, StateRecurrenceUntil, StateCancelled},
			StateRecurrenceUntil: {StateConfirm, StateCancelled},
			StateConfirm:         {StateCompleted, StateFullName, StateStartTime, StateChoosingFloor, StateCancelled},
			StateCompleted:       {StateIdle},
			StateCancelled:       {StateIdle},
		},
	}
}

// CanTransition checks if the transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if the transition is allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	if f.CanTransition(session.GetState(), to) {
		session.SetState(to)
		return true
	}
	return false
}

// Option is one selectable answer offered to the user in the current state.
// The transport renders options as inline keyboard buttons and feeds Value
// back as input.
type Option struct {
	Label string
	Value string
}

// Result contains the outcome of processing one user input.
type Result struct {
	NewState State
	Message  string
	Options  []Option
	// ShowCalendar tells the transport to render the month grid from the
	// draft's calendar page. MinDate disables days before it, MaxDate days
	// after it.
	ShowCalendar bool
	MinDate      string
	MaxDate      string
	// Created and Requested report how many occurrences were stored at
	// confirmation.
	Created   int
	Requested int
	Error     error
}

// Prompts for different states.
var StatePrompts = map[State]string{
	StateChoosingFloor:   "Выберите этаж:",
	StateChoosingRoom:    "Выберите аудиторию:",
	StateFullName:        "Введите ваше ФИО:",
	StatePurpose:         "Укажите цель бронирования:",
	StateDate:            "Выберите дату:",
	StateStartTime:       "Введите время начала (ЧЧ:ММ):",
	StateEndTime:         "Введите время окончания (ЧЧ:ММ):",
	StateRecurrence:      "Нужно ли повторять бронирование?",
	StateRecurrenceUntil: "Выберите дату окончания повторений:",
	StateConfirm:         "Проверьте данные бронирования.",
	StateCompleted:       "✅ Бронирование создано!",
	StateCancelled:       "❌ Бронирование отменено.",
}

// RecurrenceLabels maps recurrence kinds to their Russian names.
var RecurrenceLabels = map[models.RecurrenceKind]string{
	models.RecurrenceNone:     "Без повтора",
	models.RecurrenceWeekly:   "Каждую неделю",
	models.RecurrenceBiweekly: "Раз в две недели",
	models.RecurrenceMonthly:  "Каждый месяц",
}

// FormatConfirmation formats the collected draft for the confirmation step.
func FormatConfirmation(d *Draft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 *Данные бронирования:*\n\n")
	fmt.Fprintf(&b, "🏢 *Аудитория:* %s (этаж %d)\n", d.RoomLabel(), d.Floor)
	fmt.Fprintf(&b, "👤 *ФИО:* %s\n", d.FullName)
	fmt.Fprintf(&b, "🎯 *Цель:* %s\n", d.Purpose)
	fmt.Fprintf(&b, "📅 *Дата:* %s\n", displayDate(d.Date))
	fmt.Fprintf(&b, "⏰ *Время:* %s – %s\n", d.StartTime, d.EndTime)
	if d.Recurrence != "" && d.Recurrence != models.RecurrenceNone {
		fmt.Fprintf(&b, "🔁 *Повтор:* %s до %s\n", RecurrenceLabels[d.Recurrence], displayDate(d.RecurrenceUntil))
	}
	b.WriteString("\nПодтвердить?")
	return b.String()
}

func displayDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02.01.2006")
}
