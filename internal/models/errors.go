package models

import "errors"

// Domain errors shared between the store and the booking dialog. The dialog
// matches them with errors.Is to decide which step to re-prompt.
var (
	// ErrTimeConflict means the requested interval overlaps a confirmed
	// reservation. Returned both by the pre-check and by the store-level
	// backstop, so callers present the two identically.
	ErrTimeConflict = errors.New("reservation time conflict")

	// ErrRoomNotFound means the referenced room does not exist or was
	// deactivated mid-dialog.
	ErrRoomNotFound = errors.New("room not found")

	// ErrReservationNotFound means the referenced reservation is gone.
	ErrReservationNotFound = errors.New("reservation not found")
)
