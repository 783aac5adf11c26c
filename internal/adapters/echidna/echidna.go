// Package echidna wraps the echidna property-based tester.
package echidna

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/execx"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/types"
)

const name = config.KeyEchidna

// Runner runs echidna and reports property outcomes.
type Runner struct {
	binary    string
	contract  string
	cfgFile   string
	testLimit int
	args      []string
}

// New builds the runner. Recognized keys: binary, contract, config,
// test_limit, args.
func New(sec config.Section) (*Runner, error) {
	return &Runner{
		binary:    sec.String("binary", "echidna"),
		contract:  sec.String("contract", ""),
		cfgFile:   sec.String("config", ""),
		testLimit: sec.Int("test_limit", 0),
		args:      sec.Strings("args"),
	}, nil
}

// Factory returns the registry entry for echidna.
func Factory() adapter.Factory {
	return adapter.Factory{New: adapter.Configured(New)}
}

func (r *Runner) Name() string { return name }

// RunTests runs "echidna <target> --format json" and returns a
// types.TestReport. Falsified properties are part of the report, not errors.
func (r *Runner) RunTests(ctx context.Context, target string) (any, error) {
	args := []string{target, "--format", "json"}
	if r.contract != "" {
		args = append(args, "--contract", r.contract)
	}
	if r.cfgFile != "" {
		args = append(args, "--config", r.cfgFile)
	}
	if r.testLimit > 0 {
		args = append(args, "--test-limit", strconv.Itoa(r.testLimit))
	}
	args = append(args, r.args...)

	res, err := execx.Run(ctx, execx.Command{
		Tool:      name,
		Operation: "run_tests",
		Binary:    r.binary,
		Args:      args,
	})
	if err != nil {
		return nil, err
	}
	rep, err := Parse(res.Stdout)
	if err != nil && res.ExitCode != 0 {
		if tail := res.Tail(); tail != "" {
			return nil, adapter.NewError(name, "run_tests", adapter.CodeExecutionFailed, tail).WithCause(err)
		}
	}
	return rep, err
}

type output struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
	Tests   []test  `json:"tests"`
}

type test struct {
	Contract string          `json:"contract"`
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	Error    json.RawMessage `json:"error"`
}

// Parse decodes echidna's JSON output. Echidna may print progress lines before
// the JSON document, so decoding starts at the first '{'.
func Parse(data []byte) (types.TestReport, error) {
	rep := types.TestReport{Tool: name, Tests: []types.TestCase{}}
	s := string(data)
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	}
	var out output
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return rep, adapter.NewError(name, "run_tests", adapter.CodeParseError, "decoding echidna json").WithCause(err)
	}
	if !out.Success && out.Error != nil && *out.Error != "" {
		return rep, adapter.NewError(name, "run_tests", adapter.CodeExecutionFailed, *out.Error)
	}

	for _, t := range out.Tests {
		tc := types.TestCase{
			Contract: t.Contract,
			Name:     t.Name,
			Status:   status(t.Status),
			Message:  message(t.Error),
		}
		if tc.Status == types.TestPassed {
			rep.Passed++
		} else {
			rep.Failed++
		}
		rep.Tests = append(rep.Tests, tc)
	}
	return rep, nil
}

func status(s string) types.TestStatus {
	switch strings.ToLower(s) {
	case "passed", "fuzzing", "open":
		return types.TestPassed
	case "solved", "shrinking", "shrunk", "failed":
		return types.TestFailed
	default:
		return types.TestError
	}
}

func message(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}
