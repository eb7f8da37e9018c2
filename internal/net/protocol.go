// Package net serves duel environments to remote agents over websocket.
// Every connection owns one environment session; the client drives it with
// reset, step and observe requests.
package net

import "github.com/peterkuimelis/ygoenv/internal/obs"

// Message types for the JSON protocol.
const (
	TypeReset   = "reset"
	TypeStep    = "step"
	TypeObserve = "observe"

	TypeReady  = "ready"
	TypeResult = "result"
	TypeError  = "error"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`

	// For "result"
	Events      []EventView      `json:"events,omitempty"`
	Actions     []ActionView     `json:"actions,omitempty"`
	State       *StateView       `json:"state,omitempty"`
	Observation *obs.Observation `json:"observation,omitempty"`
	Reward      float32          `json:"reward"`
	Done        bool             `json:"done"`
	ToPlay      int              `json:"to_play"`
	IsSelfplay  bool             `json:"is_selfplay,omitempty"`
	WinReason   int              `json:"win_reason"`
	Result      string           `json:"result,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView is a narrated duel event as one player saw it.
type EventView struct {
	Turn    int    `json:"turn"`
	Phase   string `json:"phase"`
	Player  int    `json:"player"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Details string `json:"details"`
}

// ActionView is one legal option.
type ActionView struct {
	Index  int    `json:"index"`
	Option string `json:"option"`
}

// StateView is the board from one player's perspective.
type StateView struct {
	You        PlayerView `json:"you"`
	Opponent   PlayerView `json:"opponent"`
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	IsYourTurn bool       `json:"is_your_turn"`
}

// PlayerView shows one side of the board.
type PlayerView struct {
	LP           int         `json:"lp"`
	HandCount    int         `json:"hand_count"`
	Hand         []string    `json:"hand,omitempty"` // card names (only for "you")
	Monsters     [7]ZoneView `json:"monsters"`
	SpellTraps   [8]ZoneView `json:"spell_traps"`
	GraveCount   int         `json:"grave_count"`
	RemovedCount int         `json:"removed_count"`
	ExtraCount   int         `json:"extra_count"`
	DeckCount    int         `json:"deck_count"`
}

// ZoneView describes a single zone on the field.
type ZoneView struct {
	Empty     bool   `json:"empty,omitempty"`
	FaceDown  bool   `json:"face_down,omitempty"`
	Name      string `json:"name,omitempty"`
	ATK       int    `json:"atk,omitempty"`
	DEF       int    `json:"def,omitempty"`
	Position  string `json:"position,omitempty"`
	Materials int    `json:"materials,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "step"
	Index int `json:"index,omitempty"`

	// Include the observation tensors in the reply.
	Tensors bool `json:"tensors,omitempty"`
}
