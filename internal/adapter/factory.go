package adapter

import (
	"errors"
	"fmt"

	"github.com/openaudit/auditengine/internal/config"
)

// ErrConfigUnsupported is returned by a configured constructor to say it does
// not take a configuration at all. The bootstrapper then falls back to the
// bare constructor. Any other constructor error is a real failure.
var ErrConfigUnsupported = errors.New("adapter does not accept configuration")

// Factory constructs one adapter. At least one variant must be set. New takes
// the tool's configuration section; NewBare takes nothing.
type Factory struct {
	New     func(config.Section) (any, error)
	NewBare func() (any, error)
}

// Build constructs the adapter from sec. A factory without New is built bare.
// A factory whose New reports ErrConfigUnsupported is retried bare when it
// has a NewBare variant.
func (f Factory) Build(sec config.Section) (any, error) {
	if f.New == nil && f.NewBare == nil {
		return nil, errors.New("factory has no constructor")
	}
	if f.New == nil {
		return f.NewBare()
	}
	a, err := f.New(sec)
	if err == nil {
		return a, nil
	}
	if errors.Is(err, ErrConfigUnsupported) && f.NewBare != nil {
		return f.NewBare()
	}
	return nil, err
}

// Configured wraps a typed configured constructor.
func Configured[T any](fn func(config.Section) (T, error)) func(config.Section) (any, error) {
	return func(sec config.Section) (any, error) {
		a, err := fn(sec)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

// Bare wraps a typed no-argument constructor.
func Bare[T any](fn func() T) func() (any, error) {
	return func() (any, error) {
		return fn(), nil
	}
}

// As asserts that a constructed adapter provides capability T.
func As[T any](slot string, a any) (T, error) {
	v, ok := a.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s: %T does not implement %T", slot, a, (*T)(nil))
	}
	return v, nil
}
