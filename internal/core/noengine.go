//go:build !(cgo && ocgcore)

package core

// Default reports ErrNoEngine; the rule engine is only linked with the
// ocgcore build tag.
func Default() (Engine, error) {
	return nil, ErrNoEngine
}
