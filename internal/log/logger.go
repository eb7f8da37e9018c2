package log

import (
	"fmt"
	"io"
)

// EventLogger receives narrated duel events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// Drain returns the recorded events and forgets them. Sequence numbers keep
// counting across drains.
func (l *MemoryLogger) Drain() []GameEvent {
	events := l.events
	l.events = nil
	return events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w      io.Writer
	viewer int // -1 writes both perspectives
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w, viewer: -1}
}

// NewViewerLogger writes only the events narrated for one player. All events
// are still recorded.
func NewViewerLogger(w io.Writer, viewer int) *TextLogger {
	return &TextLogger{w: w, viewer: viewer}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	if l.viewer >= 0 && event.Player != l.viewer {
		return
	}
	fmt.Fprintln(l.w, FormatEvent(event))
}

// EventsFor returns the events narrated for one player.
func (l *MemoryLogger) EventsFor(viewer int) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Player == viewer {
			result = append(result, e)
		}
	}
	return result
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	if phase == "" {
		phase = "          "
	}
	// Pad phase to 16 chars for alignment
	for len(phase) < 16 {
		phase += " "
	}

	return fmt.Sprintf("T%-2d %s| %s | %s", e.Turn, phase, playerName(e.Player), e.Details)
}
