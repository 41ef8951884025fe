package game

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated, you are not validated for this room")
	ErrNotHost          = errors.New("only the host can perform this action")
	ErrWrongPhase       = errors.New("action not allowed in the current phase")
	ErrInputTooLarge    = errors.New("input is too large")
	ErrEmptyInput       = errors.New("input is empty")
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomClosed       = errors.New("room is closed")
	ErrRoomNotOpen      = errors.New("room is not open")
	ErrRegistryFull     = errors.New("no room codes available")
	ErrHostAlreadySet   = errors.New("room already has a host")
	ErrShuttingDown     = errors.New("server is shutting down")
	ErrNoHints          = errors.New("content provider returned no hints")
)

// Silent reports whether err should be dropped without replying to the caller.
// Authorization and phase errors fail closed.
func Silent(err error) bool {
	return errors.Is(err, ErrNotHost) || errors.Is(err, ErrWrongPhase) || errors.Is(err, ErrRoomClosed)
}
