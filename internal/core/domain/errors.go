package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotParticipant       = errors.New("user is not a participant of the appointment")

	// Call registry preconditions. These surface to the acting connection as
	// named, non-fatal conditions and never mutate state.
	ErrUserOffline  = errors.New("user is not online")
	ErrUserBusy     = errors.New("user is busy in another call")
	ErrSelfCall     = errors.New("cannot call yourself")
	ErrCallNotFound = errors.New("no matching call")
)
