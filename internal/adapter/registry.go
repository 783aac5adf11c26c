package adapter

import (
	"sort"
	"sync"

	"github.com/openaudit/auditengine/internal/config"
)

// Kind is the capability a slot requires.
type Kind int

const (
	KindStatic Kind = iota
	KindTests
	KindFuzz
	KindScorer
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindTests:
		return "tests"
	case KindFuzz:
		return "fuzz"
	case KindScorer:
		return "scorer"
	default:
		return "unknown"
	}
}

// Slot is one adapter position in the pipeline. The slot name doubles as the
// configuration key and as the key used in the report.
type Slot struct {
	Name string
	Kind Kind
}

// Slots lists the pipeline positions in execution order.
var Slots = []Slot{
	{Name: config.KeySlither, Kind: KindStatic},
	{Name: config.KeyMythril, Kind: KindStatic},
	{Name: config.KeyEchidna, Kind: KindTests},
	{Name: config.KeyFuzzer, Kind: KindFuzz},
	{Name: config.KeyScoring, Kind: KindScorer},
}

// Registry maps slot names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register sets the factory for a slot, replacing any previous one.
func (r *Registry) Register(slot string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[slot] = f
}

// Lookup returns the factory registered for slot.
func (r *Registry) Lookup(slot string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[slot]
	return f, ok
}

// Names returns the registered slot names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy, so callers can override single slots
// without touching a shared registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for k, v := range r.factories {
		c.factories[k] = v
	}
	return c
}

