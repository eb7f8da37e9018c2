package duel

import (
	"strings"

	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/core"
)

// Action is one recorded decision.
type Action struct {
	Msg    core.Msg
	Player uint8
	Option string
	Code   uint32 // card behind the option's first spec at decision time, 0 if none
}

// History is a fixed-depth ring of a player's recent actions.
type History struct {
	ring []Action
	next int
	n    int
}

func NewHistory(depth int) *History {
	return &History{ring: make([]Action, depth)}
}

// Push records a, overwriting the oldest entry once the ring is full.
func (h *History) Push(a Action) {
	if len(h.ring) == 0 {
		return
	}
	h.ring[h.next] = a
	h.next = (h.next + 1) % len(h.ring)
	if h.n < len(h.ring) {
		h.n++
	}
}

// Actions returns the recorded actions, oldest first.
func (h *History) Actions() []Action {
	out := make([]Action, 0, h.n)
	start := (h.next - h.n + len(h.ring)) % max(len(h.ring), 1)
	for i := 0; i < h.n; i++ {
		out = append(out, h.ring[(start+i)%len(h.ring)])
	}
	return out
}

func (h *History) Len() int { return h.n }

func (h *History) Reset() {
	clear(h.ring)
	h.next, h.n = 0, 0
}

// OptionSpec returns the first card spec an option refers to. ok is false
// for options that name no card or zone, such as phase commands, "y", "c"
// or numbered choices. suffix is the chain disambiguation letter (1 = 'a').
func OptionSpec(msg core.Msg, opt string) (sp codec.Spec, suffix int, ok bool) {
	switch msg {
	case core.MsgSelectIdleCmd, core.MsgSelectBattleCmd:
		if len(opt) < 3 || opt[1] != ' ' {
			return codec.Spec{}, 0, false
		}
		opt = opt[2:]
	case core.MsgSelectChain:
		opt, suffix = codec.SplitChainSuffix(opt)
	case core.MsgSelectCard, core.MsgSelectTribute, core.MsgSelectUnselect,
		core.MsgSelectPlace, core.MsgSelectDisfield:
		if i := strings.IndexByte(opt, ' '); i >= 0 {
			opt = opt[:i]
		}
	default:
		return codec.Spec{}, 0, false
	}
	sp, err := codec.ParseSpec(opt)
	if err != nil {
		return codec.Spec{}, 0, false
	}
	return sp, suffix, true
}

// SpecCount is the number of card specs in an option.
func SpecCount(msg core.Msg, opt string) int {
	switch msg {
	case core.MsgSelectCard, core.MsgSelectTribute:
		return len(strings.Fields(opt))
	}
	if _, _, ok := OptionSpec(msg, opt); ok {
		return 1
	}
	return 0
}
