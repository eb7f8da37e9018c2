package core

// --- Message tags ---

// Msg is the first byte of every engine message.
type Msg uint8

const (
	MsgRetry             Msg = 1
	MsgHint              Msg = 2
	MsgWaiting           Msg = 3
	MsgStart             Msg = 4
	MsgWin               Msg = 5
	MsgUpdateData        Msg = 6
	MsgUpdateCard        Msg = 7
	MsgRequestDeck       Msg = 8
	MsgSelectBattleCmd   Msg = 10
	MsgSelectIdleCmd     Msg = 11
	MsgSelectEffectYN    Msg = 12
	MsgSelectYesNo       Msg = 13
	MsgSelectOption      Msg = 14
	MsgSelectCard        Msg = 15
	MsgSelectChain       Msg = 16
	MsgSelectPlace       Msg = 18
	MsgSelectPosition    Msg = 19
	MsgSelectTribute     Msg = 20
	MsgSortChain         Msg = 21
	MsgSelectCounter     Msg = 22
	MsgSelectSum         Msg = 23
	MsgSelectDisfield    Msg = 24
	MsgSortCard          Msg = 25
	MsgSelectUnselect    Msg = 26
	MsgConfirmDecktop    Msg = 30
	MsgConfirmCards      Msg = 31
	MsgShuffleDeck       Msg = 32
	MsgShuffleHand       Msg = 33
	MsgRefreshDeck       Msg = 34
	MsgSwapGraveDeck     Msg = 35
	MsgShuffleSetCard    Msg = 36
	MsgReverseDeck       Msg = 37
	MsgDeckTop           Msg = 38
	MsgShuffleExtra      Msg = 39
	MsgNewTurn           Msg = 40
	MsgNewPhase          Msg = 41
	MsgConfirmExtratop   Msg = 42
	MsgMove              Msg = 50
	MsgPosChange         Msg = 53
	MsgSet               Msg = 54
	MsgSwap              Msg = 55
	MsgFieldDisabled     Msg = 56
	MsgSummoning         Msg = 60
	MsgSummoned          Msg = 61
	MsgSpSummoning       Msg = 62
	MsgSpSummoned        Msg = 63
	MsgFlipSummoning     Msg = 64
	MsgFlipSummoned      Msg = 65
	MsgChaining          Msg = 70
	MsgChained           Msg = 71
	MsgChainSolving      Msg = 72
	MsgChainSolved       Msg = 73
	MsgChainEnd          Msg = 74
	MsgChainNegated      Msg = 75
	MsgChainDisabled     Msg = 76
	MsgCardSelected      Msg = 80
	MsgRandomSelected    Msg = 81
	MsgBecomeTarget      Msg = 83
	MsgDraw              Msg = 90
	MsgDamage            Msg = 91
	MsgRecover           Msg = 92
	MsgEquip             Msg = 93
	MsgLPUpdate          Msg = 94
	MsgUnequip           Msg = 95
	MsgCardTarget        Msg = 96
	MsgCancelTarget      Msg = 97
	MsgPayLPCost         Msg = 100
	MsgAddCounter        Msg = 101
	MsgRemoveCounter     Msg = 102
	MsgAttack            Msg = 110
	MsgBattle            Msg = 111
	MsgAttackDisabled    Msg = 112
	MsgDamageStepStart   Msg = 113
	MsgDamageStepEnd     Msg = 114
	MsgMissedEffect      Msg = 120
	MsgBeChainTarget     Msg = 121
	MsgCreateRelation    Msg = 122
	MsgReleaseRelation   Msg = 123
	MsgTossCoin          Msg = 130
	MsgTossDice          Msg = 131
	MsgRockPaperScissors Msg = 132
	MsgHandRes           Msg = 133
	MsgAnnounceRace      Msg = 140
	MsgAnnounceAttrib    Msg = 141
	MsgAnnounceCard      Msg = 142
	MsgAnnounceNumber    Msg = 143
	MsgCardHint          Msg = 160
	MsgTagSwap           Msg = 161
	MsgReloadField       Msg = 162
	MsgAIName            Msg = 163
	MsgShowHint          Msg = 164
	MsgPlayerHint        Msg = 165
	MsgMatchKill         Msg = 170
	MsgCustomMsg         Msg = 180
)

func (m Msg) String() string {
	switch m {
	case MsgRetry:
		return "retry"
	case MsgHint:
		return "hint"
	case MsgWaiting:
		return "waiting"
	case MsgStart:
		return "start"
	case MsgWin:
		return "win"
	case MsgUpdateData:
		return "update_data"
	case MsgUpdateCard:
		return "update_card"
	case MsgRequestDeck:
		return "request_deck"
	case MsgSelectBattleCmd:
		return "select_battlecmd"
	case MsgSelectIdleCmd:
		return "select_idlecmd"
	case MsgSelectEffectYN:
		return "select_effectyn"
	case MsgSelectYesNo:
		return "select_yesno"
	case MsgSelectOption:
		return "select_option"
	case MsgSelectCard:
		return "select_card"
	case MsgSelectChain:
		return "select_chain"
	case MsgSelectPlace:
		return "select_place"
	case MsgSelectPosition:
		return "select_position"
	case MsgSelectTribute:
		return "select_tribute"
	case MsgSortChain:
		return "sort_chain"
	case MsgSelectCounter:
		return "select_counter"
	case MsgSelectSum:
		return "select_sum"
	case MsgSelectDisfield:
		return "select_disfield"
	case MsgSortCard:
		return "sort_card"
	case MsgSelectUnselect:
		return "select_unselect_card"
	case MsgConfirmDecktop:
		return "confirm_decktop"
	case MsgConfirmCards:
		return "confirm_cards"
	case MsgShuffleDeck:
		return "shuffle_deck"
	case MsgShuffleHand:
		return "shuffle_hand"
	case MsgRefreshDeck:
		return "refresh_deck"
	case MsgSwapGraveDeck:
		return "swap_grave_deck"
	case MsgShuffleSetCard:
		return "shuffle_set_card"
	case MsgReverseDeck:
		return "reverse_deck"
	case MsgDeckTop:
		return "deck_top"
	case MsgShuffleExtra:
		return "shuffle_extra"
	case MsgNewTurn:
		return "new_turn"
	case MsgNewPhase:
		return "new_phase"
	case MsgConfirmExtratop:
		return "confirm_extratop"
	case MsgMove:
		return "move"
	case MsgPosChange:
		return "pos_change"
	case MsgSet:
		return "set"
	case MsgSwap:
		return "swap"
	case MsgFieldDisabled:
		return "field_disabled"
	case MsgSummoning:
		return "summoning"
	case MsgSummoned:
		return "summoned"
	case MsgSpSummoning:
		return "spsummoning"
	case MsgSpSummoned:
		return "spsummoned"
	case MsgFlipSummoning:
		return "flipsummoning"
	case MsgFlipSummoned:
		return "flipsummoned"
	case MsgChaining:
		return "chaining"
	case MsgChained:
		return "chained"
	case MsgChainSolving:
		return "chain_solving"
	case MsgChainSolved:
		return "chain_solved"
	case MsgChainEnd:
		return "chain_end"
	case MsgChainNegated:
		return "chain_negated"
	case MsgChainDisabled:
		return "chain_disabled"
	case MsgCardSelected:
		return "card_selected"
	case MsgRandomSelected:
		return "random_selected"
	case MsgBecomeTarget:
		return "become_target"
	case MsgDraw:
		return "draw"
	case MsgDamage:
		return "damage"
	case MsgRecover:
		return "recover"
	case MsgEquip:
		return "equip"
	case MsgLPUpdate:
		return "lpupdate"
	case MsgUnequip:
		return "unequip"
	case MsgCardTarget:
		return "card_target"
	case MsgCancelTarget:
		return "cancel_target"
	case MsgPayLPCost:
		return "pay_lpcost"
	case MsgAddCounter:
		return "add_counter"
	case MsgRemoveCounter:
		return "remove_counter"
	case MsgAttack:
		return "attack"
	case MsgBattle:
		return "battle"
	case MsgAttackDisabled:
		return "attack_disabled"
	case MsgDamageStepStart:
		return "damage_step_start"
	case MsgDamageStepEnd:
		return "damage_step_end"
	case MsgMissedEffect:
		return "missed_effect"
	case MsgBeChainTarget:
		return "be_chain_target"
	case MsgCreateRelation:
		return "create_relation"
	case MsgReleaseRelation:
		return "release_relation"
	case MsgTossCoin:
		return "toss_coin"
	case MsgTossDice:
		return "toss_dice"
	case MsgRockPaperScissors:
		return "rock_paper_scissors"
	case MsgHandRes:
		return "hand_res"
	case MsgAnnounceRace:
		return "announce_race"
	case MsgAnnounceAttrib:
		return "announce_attrib"
	case MsgAnnounceCard:
		return "announce_card"
	case MsgAnnounceNumber:
		return "announce_number"
	case MsgCardHint:
		return "card_hint"
	case MsgTagSwap:
		return "tag_swap"
	case MsgReloadField:
		return "reload_field"
	case MsgAIName:
		return "ai_name"
	case MsgShowHint:
		return "show_hint"
	case MsgPlayerHint:
		return "player_hint"
	case MsgMatchKill:
		return "match_kill"
	case MsgCustomMsg:
		return "custom_msg"
	default:
		return "unknown_msg"
	}
}

// --- Locations ---

const (
	LocationDeck    uint8 = 0x01
	LocationHand    uint8 = 0x02
	LocationMZone   uint8 = 0x04
	LocationSZone   uint8 = 0x08
	LocationGrave   uint8 = 0x10
	LocationRemoved uint8 = 0x20
	LocationExtra   uint8 = 0x40
	LocationOverlay uint8 = 0x80
	LocationOnField       = LocationMZone | LocationSZone
)

// --- Positions ---

const (
	PosNone            uint8 = 0x0 // xyz materials
	PosFaceUpAttack    uint8 = 0x1
	PosFaceDownAttack  uint8 = 0x2
	PosFaceUpDefense   uint8 = 0x4
	PosFaceDownDefense uint8 = 0x8
	PosFaceUp                = PosFaceUpAttack | PosFaceUpDefense
	PosFaceDown              = PosFaceDownAttack | PosFaceDownDefense
	PosAttack                = PosFaceUpAttack | PosFaceDownAttack
	PosDefense               = PosFaceUpDefense | PosFaceDownDefense
)

// --- Card types ---

const (
	TypeMonster     uint32 = 0x1
	TypeSpell       uint32 = 0x2
	TypeTrap        uint32 = 0x4
	TypeNormal      uint32 = 0x10
	TypeEffect      uint32 = 0x20
	TypeFusion      uint32 = 0x40
	TypeRitual      uint32 = 0x80
	TypeTrapMonster uint32 = 0x100
	TypeSpirit      uint32 = 0x200
	TypeUnion       uint32 = 0x400
	TypeDual        uint32 = 0x800
	TypeTuner       uint32 = 0x1000
	TypeSynchro     uint32 = 0x2000
	TypeToken       uint32 = 0x4000
	TypeQuickPlay   uint32 = 0x10000
	TypeContinuous  uint32 = 0x20000
	TypeEquip       uint32 = 0x40000
	TypeField       uint32 = 0x80000
	TypeCounter     uint32 = 0x100000
	TypeFlip        uint32 = 0x200000
	TypeToon        uint32 = 0x400000
	TypeXyz         uint32 = 0x800000
	TypePendulum    uint32 = 0x1000000
	TypeSpSummon    uint32 = 0x2000000
	TypeLink        uint32 = 0x4000000
)

// --- Attributes ---

const (
	AttributeNone   uint32 = 0x0 // tokens
	AttributeEarth  uint32 = 0x01
	AttributeWater  uint32 = 0x02
	AttributeFire   uint32 = 0x04
	AttributeWind   uint32 = 0x08
	AttributeLight  uint32 = 0x10
	AttributeDark   uint32 = 0x20
	AttributeDivine uint32 = 0x40
)

// --- Races ---

const (
	RaceNone         uint32 = 0x0
	RaceWarrior      uint32 = 0x1
	RaceSpellcaster  uint32 = 0x2
	RaceFairy        uint32 = 0x4
	RaceFiend        uint32 = 0x8
	RaceZombie       uint32 = 0x10
	RaceMachine      uint32 = 0x20
	RaceAqua         uint32 = 0x40
	RacePyro         uint32 = 0x80
	RaceRock         uint32 = 0x100
	RaceWindbeast    uint32 = 0x200
	RacePlant        uint32 = 0x400
	RaceInsect       uint32 = 0x800
	RaceThunder      uint32 = 0x1000
	RaceDragon       uint32 = 0x2000
	RaceBeast        uint32 = 0x4000
	RaceBeastWarrior uint32 = 0x8000
	RaceDinosaur     uint32 = 0x10000
	RaceFish         uint32 = 0x20000
	RaceSeaSerpent   uint32 = 0x40000
	RaceReptile      uint32 = 0x80000
	RacePsycho       uint32 = 0x100000
	RaceDivine       uint32 = 0x200000
	RaceCreatorGod   uint32 = 0x400000
	RaceWyrm         uint32 = 0x800000
	RaceCyberse      uint32 = 0x1000000
	RaceIllusion     uint32 = 0x2000000
)

// --- Phases ---

const (
	PhaseDraw        = 0x01
	PhaseStandby     = 0x02
	PhaseMain1       = 0x04
	PhaseBattleStart = 0x08
	PhaseBattleStep  = 0x10
	PhaseDamage      = 0x20
	PhaseDamageCal   = 0x40
	PhaseBattle      = 0x80
	PhaseMain2       = 0x100
	PhaseEnd         = 0x200
)

// --- Move reasons (subset used for narration) ---

const (
	ReasonDestroy = 0x1
	ReasonRelease = 0x2
	ReasonSummon  = 0x10
	ReasonDiscard = 0x4000
)

// --- Query flags ---

const (
	QueryCode        uint32 = 0x1
	QueryPosition    uint32 = 0x2
	QueryAlias       uint32 = 0x4
	QueryType        uint32 = 0x8
	QueryLevel       uint32 = 0x10
	QueryRank        uint32 = 0x20
	QueryAttribute   uint32 = 0x40
	QueryRace        uint32 = 0x80
	QueryAttack      uint32 = 0x100
	QueryDefense     uint32 = 0x200
	QueryBaseAttack  uint32 = 0x400
	QueryBaseDefense uint32 = 0x800
	QueryReason      uint32 = 0x1000
	QueryReasonCard  uint32 = 0x2000
	QueryEquipCard   uint32 = 0x4000
	QueryTargetCard  uint32 = 0x8000
	QueryOverlayCard uint32 = 0x10000
	QueryCounters    uint32 = 0x20000
	QueryOwner       uint32 = 0x40000
	QueryStatus      uint32 = 0x80000
	QueryIsPublic    uint32 = 0x100000
	QueryLScale      uint32 = 0x200000
	QueryRScale      uint32 = 0x400000
	QueryLink        uint32 = 0x800000
)

// LenEmpty is the record length the engine writes for an empty zone slot.
const LenEmpty = 4

// ProcessEnd is set in the value returned by Process once the duel is over.
const ProcessEnd = 0x20000

// Duel rules passed to StartDuel in the upper half of the options word.
const (
	RuleDefault     = 0
	RuleTraditional = 1
	RuleLink        = 4
	RuleMR5         = 5
)

// Hint types used by MSG_HINT narration.
const (
	HintSelectMsg = 3
	HintNumber    = 9
)
