package carddb

import (
	"os"
	"path/filepath"
	"sync"

	lua "github.com/Shopify/go-lua"
	"github.com/rs/zerolog"
)

// Scripts serves card scripts to the engine and caches them by name.
type Scripts struct {
	dirs   []string
	check  bool
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string][]byte
}

// NewScripts looks scripts up as named by the engine and then by base name
// in each of dirs. With check set, each script is compiled once with a Lua
// parser and failures are logged; the engine still receives the bytes.
func NewScripts(dirs []string, check bool, logger zerolog.Logger) *Scripts {
	return &Scripts{
		dirs:   dirs,
		check:  check,
		logger: logger,
		cache:  make(map[string][]byte),
	}
}

// Read returns the script bytes, or nil if no candidate file exists.
func (s *Scripts) Read(name string) []byte {
	s.mu.RLock()
	b, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.cache[name]; ok {
		return b
	}
	b = s.load(name)
	s.cache[name] = b
	return b
}

// Cached reports how many names have been resolved, found or not.
func (s *Scripts) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

func (s *Scripts) load(name string) []byte {
	candidates := []string{name}
	for _, dir := range s.dirs {
		candidates = append(candidates, filepath.Join(dir, filepath.Base(name)))
	}
	for _, p := range candidates {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if s.check {
			if err := CheckScript(name, b); err != nil {
				s.logger.Warn().Str("script", p).Err(err).Msg("script does not parse")
			}
		}
		return b
	}
	s.logger.Debug().Str("script", name).Msg("script not found")
	return nil
}

// CheckScript compiles src without running it.
func CheckScript(name string, src []byte) error {
	l := lua.NewState()
	return lua.LoadBuffer(l, string(src), name, "")
}
