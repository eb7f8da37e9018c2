package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

// EnvFactory builds a fresh environment for a new session. narrator is nil
// unless the server narrates.
type EnvFactory func(narrator log.EventLogger) (*duel.Env, error)

// Server hosts one environment per websocket connection.
type Server struct {
	Addr    string
	NewEnv  EnvFactory
	Encoder *obs.Encoder
	Verbose bool
	Logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// Handler returns the HTTP routes: the websocket endpoint and a session
// listing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /sessions", s.handleSessions)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Logger.Info().Str("addr", ln.Addr().String()).Msg("env server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	type row struct {
		ID      string `json:"id"`
		Episode string `json:"episode"`
		Steps   int    `json:"steps"`
		Done    bool   `json:"done"`
	}
	rows := make([]row, 0, len(s.sessions))
	for id, sess := range s.sessions {
		episode, steps, done := sess.Status()
		rows = append(rows, row{ID: id, Episode: episode, Steps: steps, Done: done})
	}
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}

func (s *Server) register(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
	s.sessions[sess.ID.String()] = sess
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ID.String())
}

func (s *Server) newSession() (*Session, error) {
	var events *EventCollector
	var narrator log.EventLogger
	if s.Verbose {
		events = NewEventCollector()
		narrator = events
	}
	env, err := s.NewEnv(narrator)
	if err != nil {
		return nil, err
	}
	return NewSession(env, s.Encoder, events), nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.Logger.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(1 << 20)

	ctx := r.Context()
	sess, err := s.newSession()
	if err != nil {
		s.Logger.Error().Err(err).Msg("create env")
		conn.Close(websocket.StatusInternalError, "could not create environment")
		return
	}
	s.register(sess)
	defer s.unregister(sess)
	defer sess.Close()

	logger := s.Logger.With().Str("session", sess.ID.String()).Logger()
	logger.Info().Str("remote", r.RemoteAddr).Msg("session opened")

	if err := wsjson.Write(ctx, conn, ServerMessage{Type: TypeReady, Session: sess.ID.String()}); err != nil {
		logger.Warn().Err(err).Msg("send ready")
		return
	}
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logger.Debug().Err(err).Msg("read")
			}
			break
		}
		reply := sess.Handle(ctx, msg)
		if reply.Type == TypeError {
			logger.Warn().Str("request", msg.Type).Str("error", reply.Error).Msg("request failed")
		} else if reply.Done {
			logger.Info().Float32("reward", reply.Reward).Str("result", reply.Result).Msg("episode finished")
		}
		if err := wsjson.Write(ctx, conn, reply); err != nil {
			logger.Warn().Err(err).Msg("write")
			break
		}
	}
	logger.Info().Msg("session closed")
	conn.Close(websocket.StatusNormalClosure, "")
}
