package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"darbot/internal/metrics"
	"darbot/internal/models"
)

// StartReminders schedules a daily pass that reminds users about tomorrow's
// reservations. The hour comes from booking.reminder_hour; zero disables it.
func (b *Bot) StartReminders(ctx context.Context) {
	hour := b.cfg.Booking.ReminderHour
	if hour <= 0 || hour > 23 {
		return
	}

	go func() {
		timer := time.NewTimer(timeUntilNextHour(b.now(), hour))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				b.sendTomorrowReminders(ctx)
				timer.Reset(24 * time.Hour)
			}
		}
	}()
}

func (b *Bot) sendTomorrowReminders(ctx context.Context) {
	now := b.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	reservations, err := b.db.ListReservationsBetween(ctx, from, to)
	if err != nil {
		b.logger.Error().Err(err).Msg("reminder: list reservations")
		return
	}

	sent := 0
	for _, r := range reservations {
		if r.Status != models.StatusConfirmed {
			continue
		}
		if err := b.limiter.Wait(ctx); err != nil {
			return
		}
		msg := tgbotapi.NewMessage(r.UserID, formatReminder(r))
		if _, err := b.tg.Send(msg); err != nil {
			b.logger.Warn().Err(err).Int64("user_id", r.UserID).Msg("reminder: send")
			continue
		}
		metrics.IncReminderSent()
		sent++
	}

	b.logger.Info().
		Int("reservations", len(reservations)).
		Int("sent", sent).
		Msg("tomorrow reminders processed")
}

func formatReminder(r models.Reservation) string {
	room := r.RoomName
	if room == "" {
		room = "Аудитория " + r.RoomNumber
	}
	return fmt.Sprintf("🔔 Напоминание: завтра у вас бронирование.\n\n🏢 %s\n📅 %s, %s – %s",
		room,
		r.StartTime.Format("02.01.2006"),
		r.StartTime.Format("15:04"),
		r.EndTime.Format("15:04"))
}

func timeUntilNextHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
