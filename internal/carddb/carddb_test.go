package carddb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/deck"
)

type mapSource map[uint32]Card

func (m mapSource) LoadCard(_ context.Context, code uint32) (Card, error) {
	c, ok := m[code]
	if !ok {
		return Card{}, ErrUnknownCard
	}
	return c, nil
}

func monster(code uint32, typ, level uint32) Card {
	return Card{Code: code, Type: core.TypeMonster | typ, Level: level, Name: "card"}
}

func TestLoadSortsExtraDeck(t *testing.T) {
	src := mapSource{
		1:  monster(1, core.TypeNormal, 4),
		2:  monster(2, core.TypeEffect, 3),
		10: monster(10, core.TypeLink, 2),
		11: monster(11, core.TypeSynchro, 8),
		12: monster(12, core.TypeXyz, 4),
		13: monster(13, core.TypeFusion, 7),
		14: monster(14, core.TypeFusion, 5),
		15: monster(15, core.TypeXyz, 3),
	}
	codes := []uint32{1, 2, 10, 11, 12, 13, 14, 15}
	decks := map[string]deck.Deck{
		"mix": {Name: "mix", Main: []uint32{1, 2, 1, 14}, Extra: []uint32{10, 11, 12, 13, 15}},
	}

	s, err := Load(context.Background(), src, codes, decks)
	require.NoError(t, err)

	d, ok := s.Deck("mix")
	require.True(t, ok)
	assert.Equal(t, []uint32{1, 2, 1}, d.Main)
	assert.Equal(t, []uint32{14, 13, 15, 12, 11, 10}, d.Extra, "fusion, xyz, synchro, link by level")
	assert.Equal(t, []string{"mix"}, s.DeckNames())
	assert.Equal(t, 8, s.Len())
}

func TestLoadRejectsCodeOutsideList(t *testing.T) {
	src := mapSource{1: monster(1, core.TypeNormal, 4), 2: monster(2, core.TypeNormal, 4)}
	_, err := Load(context.Background(), src, []uint32{1}, map[string]deck.Deck{
		"d": {Name: "d", Main: []uint32{1, 2}},
	})
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestStoreLookups(t *testing.T) {
	s := NewStore([]uint32{100, 200, 300})
	require.NoError(t, s.Add(Card{Code: 200, Name: "Two", Attack: 1500, Defense: 1200}))

	id, err := s.ID(300)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id)

	_, err = s.ID(400)
	assert.ErrorIs(t, err, ErrUnknownCard)

	_, err = s.Card(100)
	assert.ErrorIs(t, err, ErrUnknownCard, "in code list but never loaded")
	assert.Panics(t, func() { s.MustCard(100) })

	data, ok := s.CardData(200)
	assert.True(t, ok)
	assert.Equal(t, int32(1500), data.Attack)
	_, ok = s.CardData(999)
	assert.False(t, ok)
}

func TestCardCopiesAreIndependent(t *testing.T) {
	s := NewStore([]uint32{1})
	require.NoError(t, s.Add(Card{Code: 1, Strings: []string{"a"}}))

	c := s.MustCard(1)
	c.Strings[0] = "changed"
	c.SetLocation(1 | uint32(core.LocationMZone)<<8 | 2<<16 | uint32(core.PosFaceUpAttack)<<24)

	fresh := s.MustCard(1)
	assert.Equal(t, "a", fresh.Strings[0])
	assert.Equal(t, uint8(0), fresh.Location())
	assert.Equal(t, uint8(1), c.Controller())
	assert.Equal(t, "om3", c.Spec(0))
	assert.Equal(t, "m3", c.Spec(1))
}

func TestEffectDescription(t *testing.T) {
	s := NewStore([]uint32{5000, 6000})
	own := Card{Code: 5000, Name: "Pot", Strings: []string{"  Draw 2", ""}}
	other := Card{Code: 6000, Name: "Other", Strings: []string{"x", "y", "Negate"}}
	require.NoError(t, s.Add(own))
	require.NoError(t, s.Add(other))

	assert.Equal(t, "Activate Pot.", s.EffectDescription(own, 0))
	assert.Equal(t, "Draw 2", s.EffectDescription(own, 5000<<4))
	assert.Equal(t, "Activate Pot.", s.EffectDescription(own, 5000<<4|1))
	assert.Equal(t, "Negate", s.EffectDescription(own, 6000<<4|2))
	assert.Equal(t, "system string 1160", s.EffectDescription(own, 1160))
}

func TestParseCodeList(t *testing.T) {
	codes, err := ParseCodeList(strings.NewReader("# header\n89631139 Blue-Eyes\n\n46986414\n"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{89631139, 46986414}, codes)

	_, err = ParseCodeList(strings.NewReader("abc\n"))
	assert.Error(t, err)
}

func writeTestCDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.cdb")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	cols := []string{`id integer primary key`, `name text`, `"desc" text`}
	for i := 1; i <= 16; i++ {
		cols = append(cols, fmt.Sprintf("str%d text", i))
	}
	stmts := []string{
		`CREATE TABLE datas (id integer primary key, ot integer, alias integer, setcode integer,
			type integer, atk integer, def integer, level integer, race integer, attribute integer, category integer)`,
		`CREATE TABLE texts (` + strings.Join(cols, ", ") + `)`,
		`INSERT INTO datas VALUES (89631139, 3, 0, 221, 17, 3000, 2500, 8, 8192, 16, 0)`,
		`INSERT INTO datas VALUES (1861629, 3, 0, 0, 67108897, 2300, 171, 4, 16777216, 32, 0)`,
		`INSERT INTO datas VALUES (14558127, 3, 0, 0, 16777249, 1200, 600, 67371012, 1, 16, 0)`,
		`INSERT INTO texts (id, name, "desc", str1, str2) VALUES (89631139, 'Blue-Eyes White Dragon', 'A legend.', '', 'unused')`,
		`INSERT INTO texts (id, name, "desc", str1) VALUES (1861629, 'Decode Talker', 'Link.', 'Negate')`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

func TestDBLoadCard(t *testing.T) {
	path := writeTestCDB(t)
	db, err := OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	bewd, err := db.LoadCard(ctx, 89631139)
	require.NoError(t, err)
	assert.Equal(t, "Blue-Eyes White Dragon", bewd.Name)
	assert.Equal(t, uint32(8), bewd.Level)
	assert.Equal(t, int32(3000), bewd.Attack)
	assert.Equal(t, int32(2500), bewd.Defense)
	assert.Equal(t, uint64(221), bewd.Setcode)
	assert.Empty(t, bewd.Strings, "strings stop at the first empty column")

	link, err := db.LoadCard(ctx, 1861629)
	require.NoError(t, err)
	assert.True(t, link.IsLink())
	assert.Equal(t, uint32(171), link.LinkMarker)
	assert.Equal(t, int32(0), link.Defense)
	assert.Equal(t, []string{"Negate"}, link.Strings)

	pend, err := db.LoadCard(ctx, 14558127)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), pend.Level)
	assert.Equal(t, uint32(4), pend.LScale)
	assert.Equal(t, uint32(4), pend.RScale)
	assert.Equal(t, "", pend.Name, "missing texts row is not an error")

	_, err = db.LoadCard(ctx, 1)
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestOpenDBErrors(t *testing.T) {
	_, err := OpenDB(" ")
	assert.Error(t, err)
}

func TestScriptsCache(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c100.lua"), []byte("local s = 1\nreturn s\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c200.lua"), []byte("local = = broken"), 0o644))

	s := NewScripts([]string{dir}, true, zerolog.Nop())
	b := s.Read("./script/c100.lua")
	assert.Contains(t, string(b), "local s")
	assert.NotNil(t, s.Read("./script/c200.lua"), "a script that fails the check is still served")
	assert.Nil(t, s.Read("./script/c300.lua"))

	require.NoError(t, os.Remove(filepath.Join(dir, "c100.lua")))
	assert.Equal(t, b, s.Read("./script/c100.lua"), "served from cache")
	assert.Equal(t, 3, s.Cached())
}

func TestCheckScript(t *testing.T) {
	assert.NoError(t, CheckScript("ok", []byte("function f(a) return a + 1 end")))
	assert.Error(t, CheckScript("bad", []byte("function (")))
}
