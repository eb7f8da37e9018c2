package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	ygonet "github.com/peterkuimelis/ygoenv/internal/net"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events      []ygonet.EventView `json:"events"`
	State       *ygonet.StateView  `json:"state,omitempty"`
	Pending     *PendingView       `json:"pending,omitempty"`
	Observation *obs.Observation   `json:"observation,omitempty"`
	Done        bool               `json:"done"`
	Reward      float32            `json:"reward"`
	Result      string             `json:"result,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	ForPlayer int                 `json:"for_player"`
	Options   []ygonet.ActionView `json:"options"`
}

// Episode holds the environment driven by one MCP client.
type Episode struct {
	newEnv  ygonet.EnvFactory
	encoder *obs.Encoder

	mu   sync.Mutex
	sess *ygonet.Session
	last ygonet.ServerMessage
}

var errNoEpisode = errors.New("no episode is running, use start_episode first")

// NewEpisode returns an idle Episode; environments are built by newEnv on
// every start.
func NewEpisode(newEnv ygonet.EnvFactory, encoder *obs.Encoder) *Episode {
	return &Episode{newEnv: newEnv, encoder: encoder}
}

// Start builds a fresh environment and resets it.
func (e *Episode) Start(ctx context.Context) (*ToolResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess != nil {
		e.sess.Close()
		e.sess = nil
	}
	events := ygonet.NewEventCollector()
	env, err := e.newEnv(events)
	if err != nil {
		return nil, fmt.Errorf("create env: %w", err)
	}
	e.sess = ygonet.NewSession(env, e.encoder, events)
	return e.do(ctx, ygonet.ClientMessage{Type: ygonet.TypeReset})
}

// Act answers the pending decision with option index.
func (e *Episode) Act(ctx context.Context, index int) (*ToolResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil, errNoEpisode
	}
	if e.last.Done {
		return nil, errors.New("the episode is over, use start_episode for a new one")
	}
	if index < 0 || index >= len(e.last.Actions) {
		return nil, fmt.Errorf("invalid index %d, must be 0-%d", index, len(e.last.Actions)-1)
	}
	return e.do(ctx, ygonet.ClientMessage{Type: ygonet.TypeStep, Index: index})
}

// Observe describes the current state without acting.
func (e *Episode) Observe(ctx context.Context, tensors bool) (*ToolResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sess == nil {
		return nil, errNoEpisode
	}
	if e.last.Done {
		// Nothing left to observe; repeat the outcome.
		return e.response(e.last), nil
	}
	reply := e.sess.Handle(ctx, ygonet.ClientMessage{Type: ygonet.TypeObserve, Tensors: tensors})
	if reply.Type == ygonet.TypeError {
		return nil, errors.New(reply.Error)
	}
	return e.response(reply), nil
}

func (e *Episode) do(ctx context.Context, msg ygonet.ClientMessage) (*ToolResponse, error) {
	reply := e.sess.Handle(ctx, msg)
	if reply.Type == ygonet.TypeError {
		return nil, errors.New(reply.Error)
	}
	e.last = reply
	return e.response(reply), nil
}

func (e *Episode) response(reply ygonet.ServerMessage) *ToolResponse {
	resp := &ToolResponse{
		Events:      reply.Events,
		State:       reply.State,
		Observation: reply.Observation,
		Done:        reply.Done,
		Reward:      reply.Reward,
		Result:      reply.Result,
	}
	if !reply.Done && len(reply.Actions) > 0 {
		resp.Pending = &PendingView{ForPlayer: reply.ToPlay, Options: reply.Actions}
	}
	// Ensure events is never null in JSON
	if resp.Events == nil {
		resp.Events = []ygonet.EventView{}
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
