package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestMemoryLoggerSequence checks that events are numbered in arrival order
// and can be filtered by type and viewer.
func TestMemoryLoggerSequence(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewTurnEvent(1, 0, 0))
	l.Log(NewDrawEvent(1, "draw phase", 0, 0, []string{"Pot of Greed"}))
	l.Log(NewDrawEvent(1, "draw phase", 1, 0, []string{"Pot of Greed"}))

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d has seq %d", i, e.Seq)
		}
	}
	if got := len(l.EventsOfType(EventDraw)); got != 2 {
		t.Errorf("EventsOfType(Draw) = %d, want 2", got)
	}
	if got := len(l.EventsFor(1)); got != 1 {
		t.Errorf("EventsFor(1) = %d, want 1", got)
	}
	if l.LastEvent().Player != 1 {
		t.Errorf("last event viewer = %d, want 1", l.LastEvent().Player)
	}
}

// TestDrawHidesCardsFromOpponent checks that only the drawing player sees
// the card names.
func TestDrawHidesCardsFromOpponent(t *testing.T) {
	own := NewDrawEvent(2, "draw phase", 0, 0, []string{"Raigeki"})
	if own.Details != "You drew 1 cards: Raigeki" {
		t.Errorf("own draw = %q", own.Details)
	}
	other := NewDrawEvent(2, "draw phase", 1, 0, []string{"Raigeki"})
	if strings.Contains(other.Details, "Raigeki") {
		t.Errorf("opponent sees drawn card: %q", other.Details)
	}
	if !strings.HasPrefix(other.Details, "P1 drew") {
		t.Errorf("opponent draw = %q", other.Details)
	}
}

// TestSetHidesName checks the set narration for both perspectives.
func TestSetHidesName(t *testing.T) {
	own := NewSetEvent(1, "main1 phase", 0, 0, "Mirror Force", "s2", "face-down")
	if own.Card != "Mirror Force" || !strings.Contains(own.Details, "Mirror Force") {
		t.Errorf("own set = %+v", own)
	}
	other := NewSetEvent(1, "main1 phase", 1, 0, "Mirror Force", "os2", "face-down")
	if other.Card != "" || strings.Contains(other.Details, "Mirror Force") {
		t.Errorf("opponent set leaks name: %+v", other)
	}
}

// TestMoveWording checks a few move variants.
func TestMoveWording(t *testing.T) {
	cases := []struct {
		typ  EventType
		want string
	}{
		{EventDestroy, "m1 (Kuriboh) destroyed"},
		{EventBanish, "g1 (Kuriboh) was banished"},
		{EventDiscard, "You discarded h1 (Kuriboh)"},
	}
	from := map[EventType]string{EventDestroy: "m1", EventBanish: "g1", EventDiscard: "h1"}
	for _, tc := range cases {
		e := NewMoveEvent(3, "main1 phase", 0, 0, tc.typ, "Kuriboh", from[tc.typ], "")
		if e.Details != tc.want {
			t.Errorf("%s: got %q, want %q", tc.typ, e.Details, tc.want)
		}
		if e.Type != tc.typ {
			t.Errorf("%s: type %s", tc.typ, e.Type)
		}
	}
}

// TestDecisionEvent checks the chosen-option line.
func TestDecisionEvent(t *testing.T) {
	e := NewDecisionEvent(1, "main1 phase", 1, "s h1", []string{"s h1", "e"})
	want := "P2 chose 's h1' in ['s h1', 'e']"
	if e.Details != want {
		t.Errorf("got %q, want %q", e.Details, want)
	}
}

// TestViewerLoggerFilters checks that a viewer logger writes only its
// player's lines but records everything.
func TestViewerLoggerFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewViewerLogger(&buf, 0)
	l.Log(NewPhaseChangeEvent(1, "standby phase", 0))
	l.Log(NewPhaseChangeEvent(1, "standby phase", 1))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("wrote %d lines, want 1:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "T1  standby phase   | P1 | Entering standby phase") {
		t.Errorf("line = %q", lines[0])
	}
	if len(l.Events()) != 2 {
		t.Errorf("recorded %d events, want 2", len(l.Events()))
	}
}

// TestDrainForgetsEvents checks that drained events are handed out once
// and numbering continues.
func TestDrainForgetsEvents(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewWinEvent(9, "battle phase", 0, 0, "LP reached 0"))
	l.Log(NewWinEvent(9, "battle phase", 1, 0, "LP reached 0"))

	got := l.Drain()
	if len(got) != 2 || !strings.Contains(got[1].Details, "You lost (LP reached 0)") {
		t.Fatalf("Drain = %+v", got)
	}
	if len(l.Events()) != 0 {
		t.Errorf("events left after drain: %d", len(l.Events()))
	}
	l.Log(NewTurnEvent(10, 0, 1))
	if l.LastEvent().Seq != 3 {
		t.Errorf("seq after drain = %d, want 3", l.LastEvent().Seq)
	}
}

// TestSetupLevels checks level parsing and JSON output.
func TestSetupLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger, err := SetupWriter(&buf, "warn", false)
	if err != nil {
		t.Fatalf("SetupWriter: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Str("deck", "starter").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, `"deck":"starter"`) {
		t.Errorf("missing field: %s", out)
	}

	if _, err := SetupWriter(&buf, "loud", false); err == nil {
		t.Error("expected error for unknown level")
	}
}
