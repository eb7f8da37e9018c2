package carddb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/deck"
)

// ErrUnknownCard is returned for a code that was never loaded, or that is
// missing from the code list.
var ErrUnknownCard = errors.New("carddb: unknown card")

// Source loads catalog entries, typically from a cards.cdb database.
type Source interface {
	LoadCard(ctx context.Context, code uint32) (Card, error)
}

// Store is the read-only card registry shared by every duel.
type Store struct {
	cards map[uint32]Card
	ids   map[uint32]uint16
	decks map[string]deck.Deck
}

// NewStore returns an empty store whose dense ids follow codeList: the
// i-th code gets id i+1.
func NewStore(codeList []uint32) *Store {
	ids := make(map[uint32]uint16, len(codeList))
	for i, code := range codeList {
		if _, dup := ids[code]; !dup {
			ids[code] = uint16(i + 1)
		}
	}
	return &Store{
		cards: make(map[uint32]Card),
		ids:   ids,
		decks: make(map[string]deck.Deck),
	}
}

// Add registers a card. Codes outside the code list are rejected.
func (s *Store) Add(c Card) error {
	if _, ok := s.ids[c.Code]; !ok {
		return fmt.Errorf("%w: %d is not in the code list", ErrUnknownCard, c.Code)
	}
	s.cards[c.Code] = c
	return nil
}

// AddDeck registers a named deck. Every code must already be present; the
// deck is split into main and extra by card type and the extra deck is put
// in engine order.
func (s *Store) AddDeck(d deck.Deck) error {
	var main []uint32
	var fusion, xyz, synchro, link []Card
	for _, code := range append(append([]uint32(nil), d.Main...), d.Extra...) {
		c, err := s.Card(code)
		if err != nil {
			return fmt.Errorf("deck %q: %w", d.Name, err)
		}
		switch {
		case c.Type&core.TypeFusion != 0:
			fusion = append(fusion, c)
		case c.Type&core.TypeXyz != 0:
			xyz = append(xyz, c)
		case c.Type&core.TypeSynchro != 0:
			synchro = append(synchro, c)
		case c.Type&core.TypeLink != 0:
			link = append(link, c)
		default:
			main = append(main, code)
		}
	}

	var extra []uint32
	for _, group := range [][]Card{fusion, xyz, synchro, link} {
		sort.SliceStable(group, func(i, j int) bool { return group[i].Level < group[j].Level })
		for _, c := range group {
			extra = append(extra, c.Code)
		}
	}
	s.decks[d.Name] = deck.Deck{Name: d.Name, Main: main, Extra: extra}
	return nil
}

// Load builds a store holding every card referenced by decks.
func Load(ctx context.Context, src Source, codeList []uint32, decks map[string]deck.Deck) (*Store, error) {
	s := NewStore(codeList)
	for _, name := range deck.Names(decks) {
		d := decks[name]
		for _, code := range append(append([]uint32(nil), d.Main...), d.Extra...) {
			if _, ok := s.cards[code]; ok {
				continue
			}
			c, err := src.LoadCard(ctx, code)
			if err != nil {
				return nil, fmt.Errorf("deck %q: %w", name, err)
			}
			if err := s.Add(c); err != nil {
				return nil, fmt.Errorf("deck %q: %w", name, err)
			}
		}
		if err := s.AddDeck(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Card returns a copy of the card with the given code.
func (s *Store) Card(code uint32) (Card, error) {
	c, ok := s.cards[code]
	if !ok {
		return Card{}, fmt.Errorf("%w: %d", ErrUnknownCard, code)
	}
	c.Strings = append([]string(nil), c.Strings...)
	return c, nil
}

// MustCard is like Card but panics for an unknown code.
func (s *Store) MustCard(code uint32) Card {
	c, err := s.Card(code)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the dense id of code.
func (s *Store) ID(code uint32) (uint16, error) {
	id, ok := s.ids[code]
	if !ok {
		return 0, fmt.Errorf("%w: %d has no id", ErrUnknownCard, code)
	}
	return id, nil
}

// CardData serves the engine's card reader.
func (s *Store) CardData(code uint32) (core.CardData, bool) {
	c, ok := s.cards[code]
	if !ok {
		return core.CardData{Code: code}, false
	}
	return c.Data(), true
}

// Deck returns a named deck with its extra deck in engine order.
func (s *Store) Deck(name string) (deck.Deck, bool) {
	d, ok := s.decks[name]
	return d, ok
}

// DeckNames lists the registered decks in sorted order.
func (s *Store) DeckNames() []string {
	return deck.Names(s.decks)
}

// Len returns the number of loaded cards.
func (s *Store) Len() int { return len(s.cards) }

// EffectDescription describes effect string desc of card c. Descriptions
// above 10000 address another card's strings as code<<4 | index.
func (s *Store) EffectDescription(c Card, desc uint32) string {
	if desc == 0 {
		return fmt.Sprintf("Activate %s.", c.Name)
	}
	if desc <= 10000 {
		return fmt.Sprintf("system string %d", desc)
	}
	owner := c
	if code := desc >> 4; code != c.Code {
		o, err := s.Card(code)
		if err != nil {
			return fmt.Sprintf("system string %d", desc)
		}
		owner = o
	}
	if str := owner.Text(int(desc & 0xf)); str != "" {
		return str
	}
	return fmt.Sprintf("Activate %s.", c.Name)
}
