package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/peterkuimelis/ygoenv/internal/carddb"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/core/coretest"
	"github.com/peterkuimelis/ygoenv/internal/deck"
	"github.com/peterkuimelis/ygoenv/internal/duel"
	"github.com/peterkuimelis/ygoenv/internal/log"
	"github.com/peterkuimelis/ygoenv/internal/obs"
)

const alpha uint32 = 1001

func newEpisode(t *testing.T) *Episode {
	t.Helper()
	store := carddb.NewStore([]uint32{alpha})
	if err := store.Add(carddb.Card{Code: alpha, Name: "Alpha", Type: core.TypeMonster | core.TypeNormal}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddDeck(deck.Deck{Name: "d", Main: []uint32{alpha, alpha}}); err != nil {
		t.Fatal(err)
	}
	enc, err := obs.NewEncoder(obs.DefaultShape())
	if err != nil {
		t.Fatal(err)
	}
	return NewEpisode(func(narrator log.EventLogger) (*duel.Env, error) {
		e := coretest.New()
		e.Queue(
			coretest.Batch(coretest.NewTurn(0), coretest.Option(0, 16, 32)),
			coretest.Batch(coretest.Win(1, 0)),
		)
		return duel.NewEnv(e, store, duel.Config{Deck1: "d", Deck2: "d", Player: 0, Seed: 5, Narrator: narrator})
	}, enc)
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want text", res.Content[0])
	}
	return text.Text, res.IsError
}

func decode(t *testing.T, text string) ToolResponse {
	t.Helper()
	var resp ToolResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return resp
}

// TestToolsRequireEpisode checks that acting before start_episode is a tool
// error rather than a protocol failure.
func TestToolsRequireEpisode(t *testing.T) {
	ep := newEpisode(t)
	if text, isErr := call(t, ep.handleTakeAction, map[string]any{"index": 0}); !isErr || !strings.Contains(text, "start_episode") {
		t.Errorf("take_action before start = %q (error %v)", text, isErr)
	}
	if _, isErr := call(t, ep.handleGetObservation, nil); !isErr {
		t.Error("get_observation before start should fail")
	}
}

// TestEpisodeFlow plays a scripted episode through the tool handlers.
func TestEpisodeFlow(t *testing.T) {
	ep := newEpisode(t)

	text, isErr := call(t, ep.handleStartEpisode, nil)
	if isErr {
		t.Fatalf("start_episode: %s", text)
	}
	resp := decode(t, text)
	if resp.Done || resp.Pending == nil {
		t.Fatalf("start response = %+v", resp)
	}
	if resp.Pending.ForPlayer != 0 || len(resp.Pending.Options) != 2 || resp.Pending.Options[1].Option != "2" {
		t.Errorf("pending = %+v", resp.Pending)
	}
	if resp.State == nil || resp.State.You.DeckCount != 2 {
		t.Errorf("state = %+v", resp.State)
	}
	if len(resp.Events) == 0 {
		t.Error("start_episode returned no events")
	}

	text, isErr = call(t, ep.handleGetObservation, map[string]any{"tensors": true})
	if isErr {
		t.Fatalf("get_observation: %s", text)
	}
	if resp := decode(t, text); resp.Observation == nil || resp.Pending == nil {
		t.Errorf("observation response = %+v", resp)
	}

	if _, isErr := call(t, ep.handleTakeAction, map[string]any{"index": 7}); !isErr {
		t.Error("out-of-range index should be a tool error")
	}

	text, isErr = call(t, ep.handleTakeAction, map[string]any{"index": 1})
	if isErr {
		t.Fatalf("take_action: %s", text)
	}
	resp = decode(t, text)
	if !resp.Done || resp.Reward != -1 || resp.Pending != nil {
		t.Errorf("final response = %+v", resp)
	}
	if !strings.HasPrefix(resp.Result, "You lost") {
		t.Errorf("result = %q", resp.Result)
	}

	if _, isErr := call(t, ep.handleTakeAction, map[string]any{"index": 0}); !isErr {
		t.Error("take_action after the end should fail")
	}
	text, _ = call(t, ep.handleGetObservation, nil)
	if resp := decode(t, text); !resp.Done {
		t.Errorf("observation after the end = %+v", resp)
	}

	// A new episode can always be started.
	if text, isErr := call(t, ep.handleStartEpisode, nil); isErr {
		t.Errorf("restart: %s", text)
	}
}
