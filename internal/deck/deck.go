// Package deck loads named decks from .ydk files and YAML manifests.
package deck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Deck is a named list of card codes. Extra holds the extra deck as
// written in the source; the card store sorts it into engine order.
type Deck struct {
	Name  string
	Main  []uint32
	Extra []uint32
}

// Size returns the number of cards in both sections.
func (d Deck) Size() int { return len(d.Main) + len(d.Extra) }

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file. A deck either lists
// its cards or points at a .ydk file relative to the manifest.
type DeckEntry struct {
	Name  string      `yaml:"name"`
	YDK   string      `yaml:"ydk,omitempty"`
	Cards []CardEntry `yaml:"cards,omitempty"`
	Extra []CardEntry `yaml:"extra,omitempty"`
}

// CardEntry represents a card and its count in a deck. Name is only a
// reminder for the reader of the file.
type CardEntry struct {
	Code  uint32 `yaml:"code"`
	Name  string `yaml:"name,omitempty"`
	Count int    `yaml:"count"`
}

func expand(entries []CardEntry) []uint32 {
	var codes []uint32
	for _, e := range entries {
		n := e.Count
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// ParseYDK reads a .ydk deck. The main section ends at the first line
// mentioning "extra" or "side"; the extra section ends at "side". Only
// all-digit lines are card codes.
func ParseYDK(r io.Reader) (Deck, error) {
	var d Deck
	sc := bufio.NewScanner(r)
	section := "main"
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.Contains(line, "side"):
			return d, nil
		case strings.Contains(line, "extra"):
			section = "extra"
			continue
		}
		if line == "" || strings.TrimLeft(line, "0123456789") != "" {
			continue
		}
		code, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			return d, fmt.Errorf("parse ydk code %q: %w", line, err)
		}
		if section == "main" {
			d.Main = append(d.Main, uint32(code))
		} else {
			d.Extra = append(d.Extra, uint32(code))
		}
	}
	if err := sc.Err(); err != nil {
		return d, fmt.Errorf("read ydk: %w", err)
	}
	return d, nil
}

// ReadYDK reads a .ydk file; the deck is named after the file.
func ReadYDK(path string) (Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return Deck{}, err
	}
	defer f.Close()

	d, err := ParseYDK(f)
	if err != nil {
		return Deck{}, fmt.Errorf("%s: %w", path, err)
	}
	d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return d, nil
}

func readDeckFile(path string) (DeckFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DeckFile{}, err
	}
	var df DeckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return DeckFile{}, fmt.Errorf("parse deck YAML: %w", err)
	}
	return df, nil
}

func (e DeckEntry) resolve(base string) (Deck, error) {
	if e.YDK != "" {
		p := e.YDK
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		d, err := ReadYDK(p)
		if err != nil {
			return Deck{}, err
		}
		if e.Name != "" {
			d.Name = e.Name
		}
		return d, nil
	}
	return Deck{Name: e.Name, Main: expand(e.Cards), Extra: expand(e.Extra)}, nil
}

// ParseDeckFile parses a YAML deck manifest and returns its decks by name.
func ParseDeckFile(path string) (map[string]Deck, error) {
	df, err := readDeckFile(path)
	if err != nil {
		return nil, err
	}

	decks := make(map[string]Deck, len(df.Decks))
	for _, entry := range df.Decks {
		d, err := entry.resolve(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("deck %q: %w", entry.Name, err)
		}
		decks[d.Name] = d
	}
	return decks, nil
}

// DeckByNumber returns the Nth deck (1-indexed) from the deck manifest.
func DeckByNumber(path string, n int) (Deck, error) {
	df, err := readDeckFile(path)
	if err != nil {
		return Deck{}, err
	}

	if n < 1 || n > len(df.Decks) {
		return Deck{}, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	return df.Decks[n-1].resolve(filepath.Dir(path))
}

// LoadDir reads every .ydk file in dir.
func LoadDir(dir string) (map[string]Deck, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.ydk"))
	if err != nil {
		return nil, err
	}
	decks := make(map[string]Deck, len(paths))
	for _, p := range paths {
		d, err := ReadYDK(p)
		if err != nil {
			return nil, err
		}
		decks[d.Name] = d
	}
	return decks, nil
}

// Load reads decks from a directory of .ydk files, a single .ydk file or a
// YAML manifest.
func Load(path string) (map[string]Deck, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ydk":
		d, err := ReadYDK(path)
		if err != nil {
			return nil, err
		}
		return map[string]Deck{d.Name: d}, nil
	case ".yaml", ".yml":
		return ParseDeckFile(path)
	}
	return nil, fmt.Errorf("unsupported deck source %q", path)
}

// Names returns the deck names in sorted order.
func Names(decks map[string]Deck) []string {
	names := make([]string, 0, len(decks))
	for n := range decks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
