package duel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterkuimelis/ygoenv/internal/codec"
	"github.com/peterkuimelis/ygoenv/internal/combin"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/log"
)

// menuCard is one entry of an idle or battle command list.
type menuCard struct {
	code uint32
	spec string
	data uint32
}

// readMenuCards reads a count-prefixed command list. extra is the width of
// the trailing per-card field: 0, 1 or 4 bytes.
func (h *Handler) readMenuCards(extra int) []menuCard {
	n := int(h.r.U8())
	cards := make([]menuCard, 0, n)
	for i := 0; i < n; i++ {
		e := menuCard{code: h.r.U32()}
		h.r.U8() // controller
		loc, seq := h.r.U8(), h.r.U8()
		e.spec = codec.FormatSpec(loc, seq, 0, false)
		switch extra {
		case 1:
			e.data = uint32(h.r.U8())
		case 4:
			e.data = h.r.U32()
		}
		cards = append(cards, e)
	}
	return cards
}

// selectCard is one entry of a card selection list.
type selectCard struct {
	code uint32
	spec string
	data uint8
}

// readSelectCards reads n entries of code followed by a location word,
// whose last byte is returned as data.
func (h *Handler) readSelectCards(n int, player uint8) []selectCard {
	cards := make([]selectCard, 0, n)
	for i := 0; i < n; i++ {
		code := h.r.U32()
		c, l, s, p := h.r.U8(), h.r.U8(), h.r.U8(), h.r.U8()
		cards = append(cards, selectCard{
			code: code,
			spec: codec.FormatSpec(l, s, p, c != player),
			data: p,
		})
	}
	return cards
}

// menu collects options with their narration lines.
type menu struct {
	options []string
	lines   []string
}

func (m *menu) add(opt string) { m.options = append(m.options, opt) }

func (m *menu) note(format string, args ...any) {
	m.lines = append(m.lines, fmt.Sprintf(format, args...))
}

// offer installs a decision and narrates its menu to the deciding player.
func (h *Handler) offer(player uint8, m *menu, title string, r Responder) {
	h.pending = &PendingDecision{Msg: h.msg, Player: player, Options: m.options, Responder: r}
	if h.narrating() {
		h.emit(log.NewPromptEvent(h.turn, h.phaseName(), int(player), title, m.lines))
	}
}

func (h *Handler) cardName(code uint32) (string, error) {
	c, err := h.card(code)
	return c.Name, err
}

func (h *Handler) onBattleCmd() error {
	player := h.r.U8()
	activatable := h.readMenuCards(4)
	attackable := h.readMenuCards(1)
	toM2, toEP := h.r.Bool(), h.r.Bool()
	if err := h.readErr(); err != nil {
		return err
	}

	var m menu
	var values []int32
	for i, e := range activatable {
		opt := "v " + e.spec
		m.add(opt)
		values = append(values, int32(i)<<16)
		if h.narrating() {
			c, err := h.card(e.code)
			if err != nil {
				return err
			}
			m.note("%s: activate %s (%s)", opt, c.Name, c.Stats())
		}
	}
	for i, e := range attackable {
		opt := "a " + e.spec
		m.add(opt)
		values = append(values, int32(i)<<16+1)
		if h.narrating() {
			c, err := h.card(e.code)
			if err != nil {
				return err
			}
			m.note("%s: %s (%s) attack", opt, c.Name, c.Stats())
		}
	}
	if toM2 {
		m.add("m")
		values = append(values, 2)
		m.note("m: Main phase 2.")
	}
	if toEP && !toM2 {
		m.add("e")
		values = append(values, 3)
		m.note("e: End phase.")
	}
	h.offer(player, &m, "Battle menu:", Packed{Values: values})
	return nil
}

func (h *Handler) onIdleCmd() error {
	player := h.r.U8()
	summonable := h.readMenuCards(0)
	spsummon := h.readMenuCards(0)
	repos := h.readMenuCards(0)
	mset := h.readMenuCards(0)
	set := h.readMenuCards(0)
	activate := h.readMenuCards(4)
	toBP, toEP := h.r.Bool(), h.r.Bool()
	h.r.U8() // can_shuffle
	if err := h.readErr(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(activate))
	for _, e := range activate {
		if seen[e.spec] {
			return fmt.Errorf("%w: %s offers several effects of %d at %s", ErrUnsupported, h.msg, e.code, e.spec)
		}
		seen[e.spec] = true
	}

	var m menu
	var values []int32
	groups := []struct {
		letter string
		tag    int32
		cards  []menuCard
		verb   string
	}{
		{"s", 0, summonable, "Summon %s in face-up attack position."},
		{"t", 4, set, "Set %s."},
		{"m", 3, mset, "Summon %s in face-down defense position."},
		{"r", 2, repos, "Reposition %s."},
		{"c", 1, spsummon, "Special summon %s."},
		{"v", 5, activate, ""},
	}
	for _, g := range groups {
		for i, e := range g.cards {
			opt := g.letter + " " + e.spec
			m.add(opt)
			values = append(values, int32(i)<<16+g.tag)
			if !h.narrating() {
				continue
			}
			c, err := h.card(e.code)
			if err != nil {
				return err
			}
			if g.verb == "" {
				m.note("%s: %s", opt, h.store.EffectDescription(c, e.data))
			} else {
				m.note("%s: "+g.verb, opt, c.Name)
			}
		}
	}
	if toBP {
		m.add("b")
		values = append(values, 6)
		m.note("b: Enter the battle phase.")
	}
	if toEP && !toBP {
		m.add("e")
		values = append(values, 7)
		m.note("e: End phase.")
	}
	h.offer(player, &m, "Select a card and action to perform.", Packed{Values: values})
	return nil
}

func joinSpecs(specs []string, set []int) string {
	parts := make([]string, len(set))
	for j, i := range set {
		parts[j] = specs[i]
	}
	return strings.Join(parts, " ")
}

func (h *Handler) onSelectCard() error {
	player := h.r.U8()
	h.r.U8() // cancelable
	lo, hi := int(h.r.U8()), int(h.r.U8())
	cards := h.readSelectCards(int(h.r.U8()), player)
	if err := h.readErr(); err != nil {
		return err
	}

	specs := make([]string, len(cards))
	var m menu
	for i, c := range cards {
		specs[i] = c.spec
		if h.narrating() {
			name, err := h.cardName(c.code)
			if err != nil {
				return err
			}
			m.note("%s: %s", c.spec, name)
		}
	}
	var sets [][]int
	for k := lo; k <= hi; k++ {
		for _, set := range combin.Combinations(len(cards), k) {
			sets = append(sets, set)
			m.add(joinSpecs(specs, set))
		}
	}
	h.offer(player, &m, fmt.Sprintf("Select %d to %d cards separated by spaces:", lo, hi), Subset{Sets: sets})
	return nil
}

func (h *Handler) onSelectTribute() error {
	player := h.r.U8()
	h.r.U8() // cancelable
	lo, hi := int(h.r.U8()), int(h.r.U8())
	cards := h.readSelectCards(int(h.r.U8()), player)
	if err := h.readErr(); err != nil {
		return err
	}
	if lo != hi {
		return fmt.Errorf("%w: %s with min %d, max %d", ErrUnsupported, h.msg, lo, hi)
	}

	specs := make([]string, len(cards))
	weights := make([]int, len(cards))
	weighted := false
	var m menu
	for i, c := range cards {
		specs[i] = c.spec
		weights[i] = int(c.data)
		if c.data != 1 {
			weighted = true
		}
		if h.narrating() {
			name, err := h.cardName(c.code)
			if err != nil {
				return err
			}
			m.note("%s: %s", c.spec, name)
		}
	}

	var sets [][]int
	if weighted {
		sets = combin.WithWeight(weights, lo)
	} else {
		sets = combin.Combinations(len(cards), lo)
	}
	for _, set := range sets {
		m.add(joinSpecs(specs, set))
	}
	h.offer(player, &m, fmt.Sprintf("Select %d to %d cards to tribute separated by spaces:", lo, hi), Subset{Sets: sets})
	return nil
}

// chainSpecs returns the option for each chainable card: its spec, with a
// letter appended in order of appearance when several share the same spec.
func chainSpecs(codes []codec.SpecCode) []string {
	counts := make(map[codec.SpecCode]int, len(codes))
	for _, c := range codes {
		counts[c]++
	}
	order := make(map[codec.SpecCode]int, len(codes))
	out := make([]string, len(codes))
	for i, c := range codes {
		s := c.String()
		if counts[c] > 1 {
			s += string(rune('a' + order[c]))
		}
		order[c]++
		out[i] = s
	}
	return out
}

func (h *Handler) onSelectChain() error {
	player := h.r.U8()
	size := int(h.r.U8())
	speCount := h.r.U8()
	forced := h.r.Bool()
	h.r.Skip(8) // hint timings

	type chainCard struct {
		code uint32
		loc  uint32
		desc uint32
	}
	cards := make([]chainCard, size)
	codes := make([]codec.SpecCode, size)
	for i := range cards {
		h.r.U8() // effect type
		code := h.r.U32()
		c, l, s, p := h.r.U8(), h.r.U8(), h.r.U8(), h.r.U8()
		cards[i] = chainCard{code: code, loc: uint32(c) | uint32(l)<<8 | uint32(s)<<16 | uint32(p)<<24, desc: h.r.U32()}
		codes[i] = codec.Spec{Location: l, Sequence: s, Overlay: p, Opponent: c != player}.Code()
	}
	if err := h.readErr(); err != nil {
		return err
	}

	if size == 0 && speCount == 0 {
		h.engine.SetResponseI(h.duel, -1)
		return nil
	}
	h.chainingPlayer = player

	var m menu
	specs := chainSpecs(codes)
	for i, s := range specs {
		m.add(s)
		if h.narrating() {
			c, err := h.placedCard(cards[i].code, cards[i].loc)
			if err != nil {
				return err
			}
			m.note("%s (%s): %s", s, c.Name, h.store.EffectDescription(c, cards[i].desc))
		}
	}
	title := "Select chain:"
	if !forced {
		m.add("c")
		title = "Select chain (c to cancel):"
	}
	h.offer(player, &m, title, Cancelable{N: size, Cancel: !forced})
	return nil
}

// question words a yes/no prompt from its description.
func (h *Handler) question(desc uint32) string {
	if desc > 10000 {
		c, err := h.card(desc >> 4)
		if err != nil {
			return fmt.Sprintf("system string %d. Yes or no?", desc)
		}
		if s := c.Text(int(desc & 0xf)); s != "" {
			return s
		}
		return "Unknown question from " + c.Name + ". Yes or no?"
	}
	return fmt.Sprintf("system string %d. Yes or no?", desc)
}

func yesNoMenu() *menu {
	m := &menu{options: []string{"y", "n"}}
	return m
}

func (h *Handler) onSelectYesNo() error {
	player := h.r.U8()
	desc := h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	m := yesNoMenu()
	title := ""
	if h.narrating() {
		title = h.question(desc)
		m.note("Please enter y or n.")
	}
	h.offer(player, m, title, YesNo{})
	return nil
}

func (h *Handler) onSelectEffectYN() error {
	player := h.r.U8()
	code, loc, desc := h.r.U32(), h.r.U32(), h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	m := yesNoMenu()
	title := ""
	if h.narrating() {
		c, err := h.placedCard(code, loc)
		if err != nil {
			return err
		}
		spec := c.Spec(player)
		switch {
		case desc == 221:
			title = "On " + spec + ", Activate Trigger Effect of " + c.Name + "?"
		case desc == 0:
			title = "From " + spec + ", activate " + c.Name + "?"
		default:
			title = h.store.EffectDescription(c, desc)
		}
		m.note("Please enter y or n.")
	}
	h.offer(player, m, title, YesNo{})
	return nil
}

func (h *Handler) onSelectPlace() error {
	player := h.r.U8()
	count := h.r.U8()
	if count == 0 {
		count = 1
	}
	flag := h.r.U32()
	if err := h.readErr(); err != nil {
		return err
	}
	zones := codec.UsableSpecs(flag, false)
	if len(zones) == 0 {
		return fmt.Errorf("%w: %s with no usable zone (flag %#x)", ErrDesync, h.msg, flag)
	}
	m := menu{options: zones}
	title := "Select place for card, one of " + strings.Join(zones, ", ") + "."
	if count > 1 {
		title = fmt.Sprintf("Select %d places for card, from %s.", count, strings.Join(zones, ", "))
	}
	h.offer(player, &m, title, ZonePlacement{Player: player, Zones: zones})
	return nil
}

func (h *Handler) onSelectOption() error {
	player := h.r.U8()
	n := int(h.r.U8())
	descs := make([]uint32, n)
	for i := range descs {
		descs[i] = h.r.U32()
	}
	if err := h.readErr(); err != nil {
		return err
	}
	var m menu
	for i, d := range descs {
		opt := strconv.Itoa(i + 1)
		m.add(opt)
		if h.narrating() {
			m.note("%s: %s", opt, h.optionText(d))
		}
	}
	h.offer(player, &m, "Select an option:", Cancelable{N: n})
	return nil
}

func (h *Handler) optionText(desc uint32) string {
	if desc > 10000 {
		if c, err := h.card(desc >> 4); err == nil {
			if s := c.Text(int(desc & 0xf)); s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("system string %d", desc)
}

// positionBits are the positions SELECT_POSITION can offer, in option order.
var positionBits = [4]uint8{core.PosFaceUpAttack, core.PosFaceDownAttack, core.PosFaceUpDefense, core.PosFaceDownDefense}

func (h *Handler) onSelectPosition() error {
	player := h.r.U8()
	code := h.r.U32()
	positions := h.r.U8()
	if err := h.readErr(); err != nil {
		return err
	}
	var m menu
	var bits []uint8
	for i, bit := range positionBits {
		if positions&bit == 0 {
			continue
		}
		opt := strconv.Itoa(i + 1)
		m.add(opt)
		bits = append(bits, bit)
		m.note("%s: %s", opt, codec.PositionName(bit))
	}
	title := "Select position:"
	if h.narrating() {
		name, err := h.cardName(code)
		if err != nil {
			return err
		}
		title = "Select position for " + name + ":"
	}
	h.offer(player, &m, title, PositionBitmask{Positions: bits})
	return nil
}

func (h *Handler) onSelectUnselect() error {
	player := h.r.U8()
	finishable, cancelable := h.r.Bool(), h.r.Bool()
	lo, hi := h.r.U8(), h.r.U8()
	selectable := h.readSelectCards(int(h.r.U8()), player)
	unselectable := h.readSelectCards(int(h.r.U8()), player)
	if err := h.readErr(); err != nil {
		return err
	}

	var m menu
	for _, c := range append(selectable, unselectable...) {
		m.add(c.spec)
		if h.narrating() {
			name, err := h.cardName(c.code)
			if err != nil {
				return err
			}
			m.note("%s: %s", c.spec, name)
		}
	}
	finish := finishable || cancelable
	if finish {
		m.add("f")
		m.note("f: Finish.")
	}
	n := len(selectable) + len(unselectable)
	h.offer(player, &m, fmt.Sprintf("Select %d to %d cards:", lo, hi), SelectUnselect{N: n, Finish: finish})
	return nil
}
