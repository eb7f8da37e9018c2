package net

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

// Session is one remote agent's environment.
type Session struct {
	ID uuid.UUID

	mu     sync.Mutex
	env    *duel.Env
	enc    *obs.Encoder
	events *EventCollector
	last   duel.StepResult
}

// NewSession wraps env. events may be nil when the environment does not
// narrate.
func NewSession(env *duel.Env, enc *obs.Encoder, events *EventCollector) *Session {
	return &Session{ID: uuid.New(), env: env, enc: enc, events: events}
}

func (s *Session) Env() *duel.Env { return s.env }

// Handle runs one client request and builds the reply. Environment errors
// become "error" messages; the session stays usable for a new reset.
func (s *Session) Handle(ctx context.Context, msg ClientMessage) ServerMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	switch msg.Type {
	case TypeReset:
		s.last, err = s.env.Reset(ctx)
	case TypeStep:
		// An out-of-range index would desync the duel; refuse it here.
		if d := s.env.Pending(); d != nil && (msg.Index < 0 || msg.Index >= len(d.Options)) {
			err = fmt.Errorf("index %d out of range, %d options", msg.Index, len(d.Options))
			break
		}
		s.last, err = s.env.Step(ctx, msg.Index)
	case TypeObserve:
		if s.env.Episode() == uuid.Nil {
			err = duel.ErrNotRunning
		}
	default:
		err = fmt.Errorf("unknown message type %q", msg.Type)
	}
	if err != nil {
		return ServerMessage{Type: TypeError, Session: s.ID.String(), Error: err.Error()}
	}
	reply, err := s.reply(msg.Tensors)
	if err != nil {
		return ServerMessage{Type: TypeError, Session: s.ID.String(), Error: err.Error()}
	}
	return reply
}

// Close ends the session's duel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Close()
}

// Status summarizes the session for listings.
func (s *Session) Status() (episode string, steps int, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Episode().String(), s.env.Steps(), s.env.Done()
}

// reply describes the latest result from the perspective of the player to
// move.
func (s *Session) reply(tensors bool) (ServerMessage, error) {
	info := s.last.Info
	viewer := info.ToPlay
	msg := ServerMessage{
		Type:       TypeResult,
		Session:    s.ID.String(),
		Reward:     s.last.Reward,
		Done:       s.last.Done,
		ToPlay:     int(viewer),
		IsSelfplay: info.IsSelfplay,
		WinReason:  int(info.WinReason),
	}
	for i, opt := range info.Options {
		msg.Actions = append(msg.Actions, ActionView{Index: i, Option: opt})
	}
	if s.events != nil {
		v := int(viewer)
		if info.IsSelfplay {
			v = -1
		}
		msg.Events = s.events.Drain(v)
	}
	if s.last.Done {
		msg.Result = ResultText(s.env, s.env.Seat())
		return msg, nil
	}
	state, err := BuildStateView(s.env, viewer)
	if err != nil {
		return ServerMessage{}, err
	}
	msg.State = state
	if tensors {
		o, err := s.enc.Encode(s.env)
		if err != nil {
			return ServerMessage{}, err
		}
		msg.Observation = o
	}
	return msg, nil
}

// ResultText words the end of an episode for player.
func ResultText(env *duel.Env, player uint8) string {
	winner, reason := env.Result()
	switch {
	case winner > 1:
		return "Episode ended without a winner."
	case winner == player:
		return "You won: " + codec.WinReason(reason)
	default:
		return "You lost: " + codec.WinReason(reason)
	}
}
