package duel

import "errors"

var (
	// ErrDesync means the message stream and the decoder disagree: a read
	// past the end of a message, bytes left over after one, an option that
	// was never offered, or an empty record where a card was expected. The
	// duel cannot continue.
	ErrDesync = errors.New("duel: message stream desynchronized")

	// ErrUnsupported marks a rule variant with no option builder.
	ErrUnsupported = errors.New("duel: unsupported decision")

	// ErrRetry is reported in verbose mode when the engine rejects a response.
	ErrRetry = errors.New("duel: engine asked for a retry")

	// ErrQuit is returned by a human player who typed "quit".
	ErrQuit = errors.New("duel: player quit")

	// ErrNotRunning is returned by Step when no decision is pending.
	ErrNotRunning = errors.New("duel: no decision pending")
)
