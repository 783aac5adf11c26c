// Package pipeline constructs the adapter set for an engine and runs the
// staged audit against a target.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/config"
)

var (
	// ErrConstruct means an adapter could not be constructed from its
	// configuration.
	ErrConstruct = errors.New("adapter construction failed")
	// ErrTargetNotFound means the audit target is not an existing file.
	ErrTargetNotFound = errors.New("target not found")
)

// Bound is a constructed adapter together with its slot and the timeout taken
// from its configuration section (zero when unset).
type Bound[T adapter.Named] struct {
	Slot    string
	Adapter T
	Timeout time.Duration
}

// State is the immutable result of Bootstrap. It is shared by every run of
// one engine.
type State struct {
	Static []Bound[adapter.StaticAnalyzer]
	Tests  Bound[adapter.TestRunner]
	Fuzz   Bound[adapter.Fuzzer]
	Scorer Bound[adapter.Scorer]

	// Timeout is the engine-wide per-adapter timeout from the engine
	// section, zero when unset.
	Timeout time.Duration
}

// Bootstrap constructs one adapter per slot, in slot order, from the
// factories in reg. Each factory receives its section of cfg, or an empty
// section when the key is absent.
func Bootstrap(cfg config.Config, reg *adapter.Registry) (*State, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: no registry", ErrConstruct)
	}
	st := &State{}

	d, err := cfg.Section(config.KeyEngine).Duration("timeout")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", config.ErrShape, config.KeyEngine, err)
	}
	st.Timeout = d

	for _, slot := range adapter.Slots {
		sec := cfg.Section(slot.Name)
		timeout, err := sec.Duration("timeout")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", config.ErrShape, slot.Name, err)
		}

		a, err := construct(reg, slot, sec)
		if err != nil {
			return nil, err
		}

		switch slot.Kind {
		case adapter.KindStatic:
			v, err := adapter.As[adapter.StaticAnalyzer](slot.Name, a)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
			}
			st.Static = append(st.Static, Bound[adapter.StaticAnalyzer]{Slot: slot.Name, Adapter: v, Timeout: timeout})
		case adapter.KindTests:
			v, err := adapter.As[adapter.TestRunner](slot.Name, a)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
			}
			st.Tests = Bound[adapter.TestRunner]{Slot: slot.Name, Adapter: v, Timeout: timeout}
		case adapter.KindFuzz:
			v, err := adapter.As[adapter.Fuzzer](slot.Name, a)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
			}
			st.Fuzz = Bound[adapter.Fuzzer]{Slot: slot.Name, Adapter: v, Timeout: timeout}
		case adapter.KindScorer:
			v, err := adapter.As[adapter.Scorer](slot.Name, a)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrConstruct, err)
			}
			st.Scorer = Bound[adapter.Scorer]{Slot: slot.Name, Adapter: v, Timeout: timeout}
		}
	}
	return st, nil
}

func construct(reg *adapter.Registry, slot adapter.Slot, sec config.Section) (any, error) {
	f, ok := reg.Lookup(slot.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s: no factory registered", ErrConstruct, slot.Name)
	}
	a, err := f.Build(sec)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstruct, slot.Name, err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s: constructor returned nil", ErrConstruct, slot.Name)
	}
	return a, nil
}
