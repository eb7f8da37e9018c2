package app

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/peterkuimelis/ygoenv/internal/config"
	"github.com/peterkuimelis/ygoenv/internal/core"
	"github.com/peterkuimelis/ygoenv/internal/core/coretest"
	"github.com/peterkuimelis/ygoenv/internal/duel"
)

// fixture writes a two-card database, a code list and a .ydk deck.
func fixture(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cards.cdb")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	for _, s := range []string{
		`CREATE TABLE datas (id integer primary key, ot integer, alias integer, setcode integer,
			type integer, atk integer, def integer, level integer, race integer, attribute integer, category integer)`,
		`CREATE TABLE texts (id integer primary key, name text, "desc" text, str1 text, str2 text, str3 text, str4 text,
			str5 text, str6 text, str7 text, str8 text, str9 text, str10 text, str11 text, str12 text, str13 text,
			str14 text, str15 text, str16 text)`,
		`INSERT INTO datas VALUES (89631139, 3, 0, 0, 17, 3000, 2500, 8, 8192, 16, 0)`,
		`INSERT INTO datas VALUES (46986414, 3, 0, 0, 17, 2500, 2100, 7, 1, 32, 0)`,
		`INSERT INTO texts (id, name, "desc") VALUES (89631139, 'Blue-Eyes White Dragon', '')`,
		`INSERT INTO texts (id, name, "desc") VALUES (46986414, 'Dark Magician', '')`,
	} {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	require.NoError(t, db.Close())

	codeList := filepath.Join(dir, "code_list.txt")
	require.NoError(t, os.WriteFile(codeList, []byte("89631139\n46986414\n"), 0o644))
	decks := filepath.Join(dir, "decks")
	require.NoError(t, os.Mkdir(decks, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(decks, "Classic.ydk"),
		[]byte("#main\n89631139\n89631139\n46986414\n#extra\n!side\n"), 0o644))

	cfg := config.Default()
	cfg.DBPath, cfg.CodeList, cfg.Decks = dbPath, codeList, decks
	cfg.ScriptDirs = []string{filepath.Join(dir, "script")}
	cfg.Deck1, cfg.Deck2 = "Classic", "Classic"
	cfg.Seed = 11
	return cfg
}

func TestOpenLoadsStore(t *testing.T) {
	a, err := Open(context.Background(), fixture(t), coretest.New(), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, a.Store.Len())
	assert.Equal(t, []string{"Classic"}, a.Store.DeckNames())
	bewd, err := a.Store.Card(89631139)
	require.NoError(t, err)
	assert.Equal(t, "Blue-Eyes White Dragon", bewd.Name)
	assert.Equal(t, a.Config.Shape(), a.Encoder.Shape())
}

func TestOpenRejectsUnknownDeck(t *testing.T) {
	cfg := fixture(t)
	cfg.Deck2 = "Chaos"
	_, err := Open(context.Background(), cfg, coretest.New(), zerolog.Nop())
	assert.ErrorContains(t, err, "Chaos")
}

func TestOpenMissingFiles(t *testing.T) {
	cfg := fixture(t)
	cfg.CodeList = filepath.Join(t.TempDir(), "none.txt")
	_, err := Open(context.Background(), cfg, coretest.New(), zerolog.Nop())
	assert.Error(t, err)
}

func TestEnvSeedsAdvance(t *testing.T) {
	cfg := fixture(t)
	cfg.PlayMode = "self+random"
	a, err := Open(context.Background(), cfg, coretest.New(), zerolog.Nop())
	require.NoError(t, err)

	first, err := a.EnvConfig(nil)
	require.NoError(t, err)
	second, err := a.EnvConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(11), first.Seed)
	assert.Equal(t, uint64(12), second.Seed)
	assert.Equal(t, []duel.PlayMode{duel.ModeSelf, duel.ModeRandom}, first.PlayModes)
	assert.Equal(t, cfg.NHistoryActions, first.NHistoryActions)
}

func TestEnvFactoryRunsDuel(t *testing.T) {
	e := coretest.New()
	e.Queue(coretest.Batch(coretest.NewTurn(0), coretest.NewPhase(core.PhaseMain1), coretest.YesNo(0, 30)))
	cfg := fixture(t)
	cfg.Player = 0
	a, err := Open(context.Background(), cfg, e, zerolog.Nop())
	require.NoError(t, err)

	env, err := a.EnvFactory(nil)
	require.NoError(t, err)
	res, err := env.Reset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "n"}, res.Info.Options)
	assert.Len(t, e.Cards, 6, "both decks were loaded")
}
