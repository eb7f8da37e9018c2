package codec

import (
	"cmp"
	"maps"
	"slices"

	"github.com/peterkuimelis/ygoenv/internal/core"
)

// makeIDs assigns ids to the keys of m in ascending order, starting at offset.
func makeIDs[K cmp.Ordered, V any](m map[K]V, offset int) map[K]uint8 {
	ids := make(map[K]uint8, len(m))
	for i, k := range slices.Sorted(maps.Keys(m)) {
		ids[k] = uint8(i + offset)
	}
	return ids
}

// makeOrderedIDs assigns ids in the given order, starting at offset.
func makeOrderedIDs[K comparable](keys []K, offset int) map[K]uint8 {
	m := make(map[K]uint8, len(keys))
	for i, k := range keys {
		m[k] = uint8(i + offset)
	}
	return m
}

var locationNames = map[uint8]string{
	core.LocationDeck:    "Deck",
	core.LocationHand:    "Hand",
	core.LocationMZone:   "Main Monster Zone",
	core.LocationSZone:   "Spell & Trap Zone",
	core.LocationGrave:   "Graveyard",
	core.LocationRemoved: "Banished",
	core.LocationExtra:   "Extra Deck",
}

var positionNames = map[uint8]string{
	core.PosNone:            "none",
	core.PosFaceUpAttack:    "face-up attack",
	core.PosFaceDownAttack:  "face-down attack",
	core.PosAttack:          "attack",
	core.PosFaceUpDefense:   "face-up defense",
	core.PosFaceUp:          "face-up",
	core.PosFaceDownDefense: "face-down defense",
	core.PosFaceDown:        "face-down",
	core.PosDefense:         "defense",
}

var attributeNames = map[uint32]string{
	core.AttributeNone:   "None",
	core.AttributeEarth:  "Earth",
	core.AttributeWater:  "Water",
	core.AttributeFire:   "Fire",
	core.AttributeWind:   "Wind",
	core.AttributeLight:  "Light",
	core.AttributeDark:   "Dark",
	core.AttributeDivine: "Divine",
}

var raceNames = map[uint32]string{
	core.RaceNone:         "None",
	core.RaceWarrior:      "Warrior",
	core.RaceSpellcaster:  "Spellcaster",
	core.RaceFairy:        "Fairy",
	core.RaceFiend:        "Fiend",
	core.RaceZombie:       "Zombie",
	core.RaceMachine:      "Machine",
	core.RaceAqua:         "Aqua",
	core.RacePyro:         "Pyro",
	core.RaceRock:         "Rock",
	core.RaceWindbeast:    "Windbeast",
	core.RacePlant:        "Plant",
	core.RaceInsect:       "Insect",
	core.RaceThunder:      "Thunder",
	core.RaceDragon:       "Dragon",
	core.RaceBeast:        "Beast",
	core.RaceBeastWarrior: "Beast Warrior",
	core.RaceDinosaur:     "Dinosaur",
	core.RaceFish:         "Fish",
	core.RaceSeaSerpent:   "Sea Serpent",
	core.RaceReptile:      "Reptile",
	core.RacePsycho:       "Psycho",
	core.RaceDivine:       "Divine",
	core.RaceCreatorGod:   "Creator God",
	core.RaceWyrm:         "Wyrm",
	core.RaceCyberse:      "Cyberse",
	core.RaceIllusion:     "Illusion",
}

var phaseNames = map[int]string{
	core.PhaseDraw:        "draw phase",
	core.PhaseStandby:     "standby phase",
	core.PhaseMain1:       "main1 phase",
	core.PhaseBattleStart: "battle start phase",
	core.PhaseBattleStep:  "battle step phase",
	core.PhaseDamage:      "damage phase",
	core.PhaseDamageCal:   "damage calculation phase",
	core.PhaseBattle:      "battle phase",
	core.PhaseMain2:       "main2 phase",
	core.PhaseEnd:         "end phase",
}

// TypeBits lists the card type bits in ascending order; a card's type
// vector has one entry per bit.
var TypeBits = []uint32{
	core.TypeMonster, core.TypeSpell, core.TypeTrap, core.TypeNormal,
	core.TypeEffect, core.TypeFusion, core.TypeRitual, core.TypeTrapMonster,
	core.TypeSpirit, core.TypeUnion, core.TypeDual, core.TypeTuner,
	core.TypeSynchro, core.TypeToken, core.TypeQuickPlay, core.TypeContinuous,
	core.TypeEquip, core.TypeField, core.TypeCounter, core.TypeFlip,
	core.TypeToon, core.TypeXyz, core.TypePendulum, core.TypeSpSummon,
	core.TypeLink,
}

var typeNames = map[uint32]string{
	core.TypeMonster: "Monster", core.TypeSpell: "Spell", core.TypeTrap: "Trap",
	core.TypeNormal: "Normal", core.TypeEffect: "Effect", core.TypeFusion: "Fusion",
	core.TypeRitual: "Ritual", core.TypeTrapMonster: "Trap Monster", core.TypeSpirit: "Spirit",
	core.TypeUnion: "Union", core.TypeDual: "Dual", core.TypeTuner: "Tuner",
	core.TypeSynchro: "Synchro", core.TypeToken: "Token", core.TypeQuickPlay: "Quick-play",
	core.TypeContinuous: "Continuous", core.TypeEquip: "Equip", core.TypeField: "Field",
	core.TypeCounter: "Counter", core.TypeFlip: "Flip", core.TypeToon: "Toon",
	core.TypeXyz: "XYZ", core.TypePendulum: "Pendulum", core.TypeSpSummon: "Special",
	core.TypeLink: "Link",
}

// decisionMsgs fixes the message ids used in action rows.
var decisionMsgs = []core.Msg{
	core.MsgSelectIdleCmd,
	core.MsgSelectChain,
	core.MsgSelectCard,
	core.MsgSelectTribute,
	core.MsgSelectPosition,
	core.MsgSelectEffectYN,
	core.MsgSelectYesNo,
	core.MsgSelectBattleCmd,
	core.MsgSelectUnselect,
	core.MsgSelectOption,
	core.MsgSelectPlace,
}

var (
	locationIDs  = makeIDs(locationNames, 1)
	positionIDs  = makeIDs(positionNames, 0)
	attributeIDs = makeIDs(attributeNames, 0)
	raceIDs      = makeIDs(raceNames, 0)
	phaseIDs     = makeIDs(phaseNames, 0)
	msgIDs       = makeOrderedIDs(decisionMsgs, 1)
	cmdActIDs    = makeOrderedIDs([]byte{'t', 'r', 'v', 'c', 's', 'm', 'a'}, 1)
	cmdPhaseIDs  = makeOrderedIDs([]byte{'b', 'm', 'e'}, 1)
	yesNoIDs     = makeOrderedIDs([]byte{'y', 'n'}, 1)
)

// LocationID maps a location, ignoring the overlay bit, to 1..7; 0 if unknown.
func LocationID(loc uint8) uint8 { return locationIDs[loc&^core.LocationOverlay] }

// PositionID maps a position mask to 0..8.
func PositionID(pos uint8) uint8 { return positionIDs[pos] }

// AttributeID maps an attribute to 0..7.
func AttributeID(attr uint32) uint8 { return attributeIDs[attr] }

// RaceID maps a race to 0..26.
func RaceID(race uint32) uint8 { return raceIDs[race] }

// PhaseID maps a phase to 0..9.
func PhaseID(phase int) uint8 { return phaseIDs[phase] }

// MsgID maps a decision message to 1..11 and everything else to 0.
// SELECT_DISFIELD shares the SELECT_PLACE id.
func MsgID(m core.Msg) uint8 {
	if m == core.MsgSelectDisfield {
		m = core.MsgSelectPlace
	}
	return msgIDs[m]
}

// CmdActID maps an idle/battle command letter to 1..7.
func CmdActID(c byte) uint8 { return cmdActIDs[c] }

// CmdPhaseID maps a phase command letter to 1..3.
func CmdPhaseID(c byte) uint8 { return cmdPhaseIDs[c] }

// YesNoID maps 'y' and 'n' to 1 and 2.
func YesNoID(c byte) uint8 { return yesNoIDs[c] }

// TypeVector expands a type mask to one 0/1 entry per TypeBits element.
func TypeVector(t uint32) [25]uint8 {
	var v [25]uint8
	for i, bit := range TypeBits {
		if t&bit != 0 {
			v[i] = 1
		}
	}
	return v
}

// ValueTransform splits a stat into two bytes.
func ValueTransform(x int) (hi, lo uint8) {
	x %= 65536
	return uint8(x / 256), uint8(x % 256)
}

func LocationName(loc uint8) string {
	if s, ok := locationNames[loc&^core.LocationOverlay]; ok {
		return s
	}
	return "unknown"
}

func PositionName(pos uint8) string {
	if s, ok := positionNames[pos]; ok {
		return s
	}
	return "unknown"
}

func PhaseName(phase int) string {
	if s, ok := phaseNames[phase]; ok {
		return s
	}
	return "unknown"
}

func AttributeName(attr uint32) string {
	if s, ok := attributeNames[attr]; ok {
		return s
	}
	return "unknown"
}

func RaceName(race uint32) string {
	if s, ok := raceNames[race]; ok {
		return s
	}
	return "unknown"
}

// TypeNames lists the names of the type bits set in t.
func TypeNames(t uint32) []string {
	var out []string
	for _, bit := range TypeBits {
		if t&bit != 0 {
			out = append(out, typeNames[bit])
		}
	}
	return out
}

// WinReason describes a MSG_WIN reason code.
func WinReason(reason uint8) string {
	switch reason {
	case 0x0:
		return "Surrendered"
	case 0x1:
		return "LP reached 0"
	case 0x2:
		return "Cards can't be drawn"
	case 0x3:
		return "Time limit up"
	case 0x4:
		return "Lost connection"
	default:
		return "Unknown"
	}
}
