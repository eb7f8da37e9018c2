package log

import (
	"fmt"
	"strings"
)

// EventType enumerates the narrated duel events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventNewTurn
	EventDraw
	EventSummon
	EventSpecialSummon
	EventFlipSummon
	EventSet
	EventChangePosition
	EventActivate
	EventChainLink
	EventDestroy
	EventChangeControl
	EventZoneChange
	EventDiscard
	EventAddToHand
	EventTribute
	EventDetach
	EventSendToGrave
	EventBanish
	EventReturnToDeck
	EventReturnToExtra
	EventReturnToField
	EventLPChange
	EventAttackDeclare
	EventDirectAttackDeclare
	EventDamageStep
	EventBattle
	EventWin
	EventPrompt   // a decision menu shown to the deciding player
	EventDecision // the option a player chose
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventNewTurn:
		return "NewTurn"
	case EventDraw:
		return "Draw"
	case EventSummon:
		return "Summon"
	case EventSpecialSummon:
		return "SpecialSummon"
	case EventFlipSummon:
		return "FlipSummon"
	case EventSet:
		return "Set"
	case EventChangePosition:
		return "ChangePosition"
	case EventActivate:
		return "Activate"
	case EventChainLink:
		return "ChainLink"
	case EventDestroy:
		return "Destroy"
	case EventChangeControl:
		return "ChangeControl"
	case EventZoneChange:
		return "ZoneChange"
	case EventDiscard:
		return "Discard"
	case EventAddToHand:
		return "AddToHand"
	case EventTribute:
		return "Tribute"
	case EventDetach:
		return "Detach"
	case EventSendToGrave:
		return "SendToGrave"
	case EventBanish:
		return "Banish"
	case EventReturnToDeck:
		return "ReturnToDeck"
	case EventReturnToExtra:
		return "ReturnToExtra"
	case EventReturnToField:
		return "ReturnToField"
	case EventLPChange:
		return "LPChange"
	case EventAttackDeclare:
		return "AttackDeclare"
	case EventDirectAttackDeclare:
		return "DirectAttackDeclare"
	case EventDamageStep:
		return "DamageStep"
	case EventBattle:
		return "Battle"
	case EventWin:
		return "Win"
	case EventPrompt:
		return "Prompt"
	case EventDecision:
		return "Decision"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single narrated event, as seen by one player.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Phase   string    // current phase name (e.g. "main1 phase")
	Player  int       // viewing player (0 or 1)
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}

// --- Helper constructors for common events ---
//
// Constructors that describe an action take the viewer and the actor so the
// text reads "You ..." for the actor and "P2 ..." for the other side.

func subject(viewer, actor int) string {
	if viewer == actor {
		return "You"
	}
	return playerName(actor)
}

func NewPhaseChangeEvent(turn int, phase string, viewer int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Entering %s", phase),
	}
}

func NewTurnEvent(turn int, viewer, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   "draw phase",
		Player:  viewer,
		Type:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, subject(viewer, player)),
	}
}

// NewDrawEvent names the drawn cards for their owner and only counts them
// for the opponent.
func NewDrawEvent(turn int, phase string, viewer, player int, cards []string) GameEvent {
	details := fmt.Sprintf("%s drew %d cards", subject(viewer, player), len(cards))
	if viewer == player && len(cards) > 0 {
		details += ": " + strings.Join(cards, ", ")
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventDraw,
		Details: details,
	}
}

func NewSummonEvent(turn int, phase string, viewer, player int, cardName, stats, position string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s summoning %s (%s) in %s position", subject(viewer, player), cardName, stats, position),
	}
}

func NewSpecialSummonEvent(turn int, phase string, viewer, player int, cardName, stats, position string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventSpecialSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s special summoning %s (%s) in %s position", subject(viewer, player), cardName, stats, position),
	}
}

func NewFlipSummonEvent(turn int, phase string, viewer, player int, cardName, spec string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventFlipSummon,
		Card:    cardName,
		Details: fmt.Sprintf("%s flip summoning %s (%s)", subject(viewer, player), spec, cardName),
	}
}

// NewSetEvent hides the card name from the opponent.
func NewSetEvent(turn int, phase string, viewer, player int, cardName, spec, position string) GameEvent {
	e := GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventSet,
		Details: fmt.Sprintf("%s set %s in %s position", subject(viewer, player), spec, position),
	}
	if viewer == player {
		e.Card = cardName
		e.Details = fmt.Sprintf("You set %s (%s) in %s position", spec, cardName, position)
	}
	return e
}

func NewChangePositionEvent(turn int, phase string, viewer int, cardName, spec, from, to string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventChangePosition,
		Card:    cardName,
		Details: fmt.Sprintf("The position of %s (%s) changed from %s to %s", spec, cardName, from, to),
	}
}

func NewActivateEvent(turn int, phase string, viewer, player int, cardName, spec string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventActivate,
		Card:    cardName,
		Details: fmt.Sprintf("%s activating %s (%s)", subject(viewer, player), spec, cardName),
	}
}

func NewChainLinkEvent(turn int, phase string, viewer, player int, cardName, spec string, chainIndex int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventChainLink,
		Card:    cardName,
		Details: fmt.Sprintf("Chain Link %d: %s activating %s (%s)", chainIndex, subject(viewer, player), spec, cardName),
	}
}

// NewMoveEvent narrates a card changing zones. typ selects the wording.
func NewMoveEvent(turn int, phase string, viewer, player int, typ EventType, cardName, from, to string) GameEvent {
	who := subject(viewer, player)
	var details string
	switch typ {
	case EventDestroy:
		details = fmt.Sprintf("%s (%s) destroyed", from, cardName)
	case EventChangeControl:
		details = fmt.Sprintf("%s (%s) changed control and is now at %s", from, cardName, to)
	case EventZoneChange:
		details = fmt.Sprintf("%s (%s) moved to %s", from, cardName, to)
	case EventDiscard:
		details = fmt.Sprintf("%s discarded %s (%s)", who, from, cardName)
	case EventAddToHand:
		details = fmt.Sprintf("%s (%s) returned to hand", from, cardName)
	case EventTribute:
		details = fmt.Sprintf("%s tributed %s (%s)", who, from, cardName)
	case EventDetach:
		details = fmt.Sprintf("%s detached %s", who, cardName)
	case EventSendToGrave:
		details = fmt.Sprintf("%s (%s) was sent to the graveyard", from, cardName)
	case EventBanish:
		details = fmt.Sprintf("%s (%s) was banished", from, cardName)
	case EventReturnToDeck:
		details = fmt.Sprintf("%s (%s) returned to the deck", from, cardName)
	case EventReturnToExtra:
		details = fmt.Sprintf("%s (%s) returned to the extra deck", from, cardName)
	case EventReturnToField:
		details = fmt.Sprintf("%s (%s) returns to the field at %s", from, cardName, to)
	default:
		details = fmt.Sprintf("%s (%s) moved from %s to %s", cardName, who, from, to)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    typ,
		Card:    cardName,
		Details: details,
	}
}

func NewLPChangeEvent(turn int, phase string, viewer, player int, oldLP, newLP int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventLPChange,
		Details: fmt.Sprintf("%s LP: %d → %d (%s)", subject(viewer, player), oldLP, newLP, reason),
	}
}

func NewAttackDeclareEvent(turn int, phase string, viewer, player int, attacker, target string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s declares attack: %s → %s", subject(viewer, player), attacker, target),
	}
}

func NewDirectAttackDeclareEvent(turn int, phase string, viewer, player int, attacker string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventDirectAttackDeclare,
		Card:    attacker,
		Details: fmt.Sprintf("%s prepares to attack with %s", subject(viewer, player), attacker),
	}
}

func NewDamageStepEvent(turn int, phase string, viewer int, begin bool) GameEvent {
	d := "end damage step"
	if begin {
		d = "begin damage step"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventDamageStep,
		Details: d,
	}
}

func NewBattleEvent(turn int, phase string, viewer int, attacker, attackerStats, target, targetStats string) GameEvent {
	details := fmt.Sprintf("%s (%s) attacks", attacker, attackerStats)
	if target != "" {
		details = fmt.Sprintf("%s (%s) attacks %s (%s)", attacker, attackerStats, target, targetStats)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventBattle,
		Card:    attacker,
		Details: details,
	}
}

func NewWinEvent(turn int, phase string, viewer, winner int, reason string) GameEvent {
	outcome := "You lost"
	if viewer == winner {
		outcome = "You won"
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventWin,
		Details: fmt.Sprintf("%s (%s)", outcome, reason),
	}
}

// NewPromptEvent lists a decision menu, one "option: description" line per entry.
func NewPromptEvent(turn int, phase string, viewer int, title string, lines []string) GameEvent {
	var sb strings.Builder
	sb.WriteString(title)
	for _, l := range lines {
		sb.WriteString("\n    ")
		sb.WriteString(l)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventPrompt,
		Details: sb.String(),
	}
}

func NewDecisionEvent(turn int, phase string, viewer int, chosen string, options []string) GameEvent {
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = fmt.Sprintf("'%s'", o)
	}
	return GameEvent{
		Turn:    turn,
		Phase:   phase,
		Player:  viewer,
		Type:    EventDecision,
		Details: fmt.Sprintf("%s chose '%s' in [%s]", playerName(viewer), chosen, strings.Join(quoted, ", ")),
	}
}
