// Package fuzzer runs an arbitrary fuzzing command and collects the findings
// it prints.
package fuzzer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/execx"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
)

const name = config.KeyFuzzer

// Fuzzer runs the configured command. The first element is the binary; every
// "{target}" in the command is replaced by the target path.
type Fuzzer struct {
	command []string
	dir     string
	env     []string
}

// New builds the fuzzer from its section. Recognized keys: command (list or
// single string), dir, env. An empty section builds an unconfigured fuzzer,
// which fails each run with INVALID_INPUT. A section that sets anything but
// lacks a usable command is rejected.
func New(sec config.Section) (*Fuzzer, error) {
	if !configured(sec) {
		return NewBare(), nil
	}
	raw, ok := sec["command"]
	if !ok {
		return nil, errors.New("fuzzer: command is required")
	}
	cmd := sec.Strings("command")
	if len(cmd) == 0 || cmd[0] == "" {
		return nil, fmt.Errorf("fuzzer: command must be a string or a list of strings, got %v", raw)
	}
	return &Fuzzer{
		command: cmd,
		dir:     sec.String("dir", ""),
		env:     sec.Strings("env"),
	}, nil
}

// configured reports whether sec sets any fuzzer key. The timeout key belongs
// to the engine.
func configured(sec config.Section) bool {
	for k := range sec {
		if k != "timeout" {
			return true
		}
	}
	return false
}

// NewBare returns an unconfigured fuzzer. Using it is an isolated failure.
func NewBare() *Fuzzer {
	return &Fuzzer{}
}

// Factory returns the registry entry for the fuzzer.
func Factory() adapter.Factory {
	return adapter.Factory{New: adapter.Configured(New)}
}

func (f *Fuzzer) Name() string { return name }

// Fuzz runs the command and parses its stdout as findings.
func (f *Fuzzer) Fuzz(ctx context.Context, target string) (any, error) {
	if len(f.command) == 0 {
		return nil, adapter.NewError(name, "fuzz", adapter.CodeInvalidInput, "no fuzzing command configured")
	}
	cmd := execx.ExpandTarget(f.command, target)
	res, err := execx.Run(ctx, execx.Command{
		Tool:      name,
		Operation: "fuzz",
		Binary:    cmd[0],
		Args:      cmd[1:],
		Dir:       f.dir,
		Env:       f.env,
	})
	if err != nil {
		return nil, err
	}
	findings, err := Parse(res.Stdout)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 && len(findings) == 0 {
		return nil, adapter.NewError(name, "fuzz", adapter.CodeExecutionFailed,
			fmt.Sprintf("exit status %d: %s", res.ExitCode, res.Tail()))
	}
	return findings, nil
}

// Parse accepts a JSON array of findings, an object with a "findings" array,
// or one JSON finding per line. Empty output is no findings.
func Parse(data []byte) ([]types.Finding, error) {
	data = bytes.TrimSpace(data)
	findings := []types.Finding{}
	if len(data) == 0 {
		return findings, nil
	}

	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &findings); err != nil {
			return nil, parseError(err)
		}
	case '{':
		var doc struct {
			Findings *[]types.Finding `json:"findings"`
		}
		if err := json.Unmarshal(data, &doc); err == nil && doc.Findings != nil {
			findings = *doc.Findings
			break
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			var f types.Finding
			if err := json.Unmarshal(line, &f); err != nil {
				return nil, parseError(err)
			}
			findings = append(findings, f)
		}
		if err := sc.Err(); err != nil {
			return nil, parseError(err)
		}
	default:
		return nil, parseError(fmt.Errorf("unexpected output starting with %q", data[0]))
	}

	for i := range findings {
		if findings[i].Tool == "" {
			findings[i].Tool = name
		}
	}
	return findings, nil
}

func parseError(err error) error {
	return adapter.NewError(name, "fuzz", adapter.CodeParseError, "decoding fuzzer output").WithCause(err)
}
