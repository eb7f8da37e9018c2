// Package codec converts board positions to and from the short spec strings
// used in option lists, and maps engine enums to the compact ids used in
// observation tensors.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/peterkuimelis/ygoenv/internal/core"
)

// ErrBadSpec is returned when a spec string cannot be parsed.
var ErrBadSpec = errors.New("codec: invalid spec")

// Spec identifies a card slot from one player's point of view.
type Spec struct {
	Location uint8 // may carry core.LocationOverlay
	Sequence uint8
	Overlay  uint8 // material index under an xyz monster
	Opponent bool
}

// String formats the spec: an optional 'o', a zone letter (none for the
// deck), the 1-based sequence and, for materials, '#' and the 1-based
// material index. For example "m3", "os2#1" or "12".
func (s Spec) String() string {
	return FormatSpec(s.Location, s.Sequence, s.Overlay, s.Opponent)
}

// Code packs the spec into a hashable word {opponent, location, sequence, overlay}.
func (s Spec) Code() SpecCode {
	var c uint32
	if s.Opponent {
		c = 1
	}
	return SpecCode(c | uint32(s.Location)<<8 | uint32(s.Sequence)<<16 | uint32(s.Overlay)<<24)
}

// SpecCode is the packed form of a Spec. It never reaches the engine.
type SpecCode uint32

// Spec unpacks the code.
func (c SpecCode) Spec() Spec {
	return Spec{
		Location: uint8(c >> 8),
		Sequence: uint8(c >> 16),
		Overlay:  uint8(c >> 24),
		Opponent: c&0xff == 1,
	}
}

func (c SpecCode) String() string { return c.Spec().String() }

func zoneLetter(loc uint8) string {
	switch {
	case loc&core.LocationHand != 0:
		return "h"
	case loc&core.LocationMZone != 0:
		return "m"
	case loc&core.LocationSZone != 0:
		return "s"
	case loc&core.LocationGrave != 0:
		return "g"
	case loc&core.LocationRemoved != 0:
		return "r"
	case loc&core.LocationExtra != 0:
		return "x"
	}
	return ""
}

// FormatSpec is the string form of (loc, seq, overlay) seen by a player for
// whom the card is on the opponent's side iff opponent is set.
func FormatSpec(loc, seq, overlay uint8, opponent bool) string {
	var sb strings.Builder
	if opponent {
		sb.WriteByte('o')
	}
	sb.WriteString(zoneLetter(loc))
	sb.WriteString(strconv.Itoa(int(seq) + 1))
	if loc&core.LocationOverlay != 0 {
		sb.WriteByte('#')
		sb.WriteString(strconv.Itoa(int(overlay) + 1))
	}
	return sb.String()
}

// ParseSpec parses a spec string. A spec starting with a digit is a deck
// position. Trailing characters after the numbers are rejected; use
// SplitChainSuffix first for chain options.
func ParseSpec(s string) (Spec, error) {
	var sp Spec
	rest := s
	if strings.HasPrefix(rest, "o") {
		sp.Opponent = true
		rest = rest[1:]
	}
	if rest == "" {
		return Spec{}, fmt.Errorf("%w: %q", ErrBadSpec, s)
	}
	switch c := rest[0]; {
	case c == 'h':
		sp.Location = core.LocationHand
	case c == 'm':
		sp.Location = core.LocationMZone
	case c == 's':
		sp.Location = core.LocationSZone
	case c == 'g':
		sp.Location = core.LocationGrave
	case c == 'r':
		sp.Location = core.LocationRemoved
	case c == 'x':
		sp.Location = core.LocationExtra
	case c >= '0' && c <= '9':
		sp.Location = core.LocationDeck
	default:
		return Spec{}, fmt.Errorf("%w: unknown zone in %q", ErrBadSpec, s)
	}
	if sp.Location != core.LocationDeck {
		rest = rest[1:]
	}

	seqStr, rest := leadingDigits(rest)
	seq, err := oneBased(seqStr)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: sequence in %q", ErrBadSpec, s)
	}
	sp.Sequence = seq

	if strings.HasPrefix(rest, "#") {
		var ovStr string
		ovStr, rest = leadingDigits(rest[1:])
		ov, err := oneBased(ovStr)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: material index in %q", ErrBadSpec, s)
		}
		sp.Location |= core.LocationOverlay
		sp.Overlay = ov
	}
	if rest != "" {
		return Spec{}, fmt.Errorf("%w: trailing %q in %q", ErrBadSpec, rest, s)
	}
	return sp, nil
}

// ParseSpecCode parses s and packs it.
func ParseSpecCode(s string) (SpecCode, error) {
	sp, err := ParseSpec(s)
	if err != nil {
		return 0, err
	}
	return sp.Code(), nil
}

// SplitChainSuffix splits the disambiguation letter off a chain option such
// as "m1b". suffix is 0 when there is none, 1 for 'a', 2 for 'b' and so on.
func SplitChainSuffix(opt string) (spec string, suffix int) {
	n := len(opt)
	if n < 2 {
		return opt, 0
	}
	last := opt[n-1]
	if last >= 'a' && last <= 'z' && opt[n-2] >= '0' && opt[n-2] <= '9' {
		return opt[:n-1], int(last-'a') + 1
	}
	return opt, 0
}

func leadingDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

func oneBased(s string) (uint8, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 256 {
		return 0, ErrBadSpec
	}
	return uint8(n - 1), nil
}

// zoneNames are the four byte lanes of a zone-availability flag.
var zoneNames = [4]string{"m", "s", "om", "os"}

// UsableSpecs decodes a placement flag into zone specs. A set bit marks an
// unavailable zone unless reverse is true.
func UsableSpecs(flag uint32, reverse bool) []string {
	var specs []string
	for j, zone := range zoneNames {
		value := (flag >> (j * 8)) & 0xff
		for i := 0; i < 8; i++ {
			avail := value&(1<<i) == 0
			if reverse {
				avail = !avail
			}
			if avail {
				specs = append(specs, zone+strconv.Itoa(i+1))
			}
		}
	}
	return specs
}
