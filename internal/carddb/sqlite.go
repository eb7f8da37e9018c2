package carddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB reads a ygopro cards.cdb database (tables datas and texts).
type DB struct {
	sqlDB *sql.DB
}

// OpenDB opens a cards.cdb file read-only.
func OpenDB(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("card database path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?mode=ro"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open card db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping card db: %w", err)
	}
	return &DB{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

const textColumns = `name, "desc", str1, str2, str3, str4, str5, str6, str7, str8, ` +
	`str9, str10, str11, str12, str13, str14, str15, str16`

// LoadCard reads one card. The level column packs the pendulum scales in
// its upper bytes, and link monsters keep their markers in def.
func (d *DB) LoadCard(ctx context.Context, code uint32) (Card, error) {
	c := Card{Code: code}

	var setcode int64
	var level uint32
	err := d.sqlDB.QueryRowContext(ctx,
		`SELECT alias, setcode, type, atk, def, level, race, attribute FROM datas WHERE id = ?`, code,
	).Scan(&c.Alias, &setcode, &c.Type, &c.Attack, &c.Defense, &level, &c.Race, &c.Attribute)
	if errors.Is(err, sql.ErrNoRows) {
		return Card{}, fmt.Errorf("%w: %d not in database", ErrUnknownCard, code)
	}
	if err != nil {
		return Card{}, fmt.Errorf("query datas %d: %w", code, err)
	}
	c.Setcode = uint64(setcode)
	c.fromLevelWord(level)

	texts := make([]sql.NullString, 18)
	dest := make([]any, len(texts))
	for i := range texts {
		dest[i] = &texts[i]
	}
	err = d.sqlDB.QueryRowContext(ctx, `SELECT `+textColumns+` FROM texts WHERE id = ?`, code).Scan(dest...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c, nil
	case err != nil:
		return Card{}, fmt.Errorf("query texts %d: %w", code, err)
	}
	c.Name = texts[0].String
	c.Desc = texts[1].String
	for _, s := range texts[2:] {
		if s.String == "" {
			break
		}
		c.Strings = append(c.Strings, s.String)
	}
	return c, nil
}
