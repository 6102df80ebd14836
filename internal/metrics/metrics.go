// Package metrics exposes prometheus counters for the booking bot.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created by recurrence kind.",
		},
		[]string{"recurrence"},
	)

	reservationConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "reservation_conflict_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	reservationCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "reservation_cancelled_total",
			Help:      "Count of reservations cancelled by users or admins.",
		},
	)

	dialogCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "dialog_completed_total",
			Help:      "Count of booking dialogs by outcome.",
		},
		[]string{"outcome"},
	)

	updatesProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "updates_processed_total",
			Help:      "Count of telegram updates processed.",
		},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "darbot",
			Name:      "reminders_sent_total",
			Help:      "Count of next-day reservation reminders delivered.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationConflict,
			reservationCancelled, dialogCompleted, updatesProcessed, remindersSent)
	})
}

func IncReservationCreated(recurrence string) {
	reservationCreated.WithLabelValues(recurrence).Inc()
}

func IncReservationConflict() {
	reservationConflict.Inc()
}

func IncReservationCancelled() {
	reservationCancelled.Inc()
}

func IncDialogCompleted(outcome string) {
	dialogCompleted.WithLabelValues(outcome).Inc()
}

func IncUpdateProcessed() {
	updatesProcessed.Inc()
}

func IncReminderSent() {
	remindersSent.Inc()
}
