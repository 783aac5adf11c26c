// Package builtin registers the adapters shipped with the engine.
package builtin

import (
	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/echidna"
	"github.com/openaudit/auditengine/internal/adapters/fuzzer"
	"github.com/openaudit/auditengine/internal/adapters/mythril"
	"github.com/openaudit/auditengine/internal/adapters/slither"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/scoring"
)

// Registry returns a new registry holding a factory for every slot.
func Registry() *adapter.Registry {
	reg := adapter.NewRegistry()
	reg.Register(config.KeySlither, slither.Factory())
	reg.Register(config.KeyMythril, mythril.Factory())
	reg.Register(config.KeyEchidna, echidna.Factory())
	reg.Register(config.KeyFuzzer, fuzzer.Factory())
	reg.Register(config.KeyScoring, scoring.Factory())
	return reg
}
