// Package mythril wraps the mythril symbolic execution analyzer.
package mythril

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

const name = config.KeyMythril

// Analyzer runs "myth analyze" and maps reported issues to findings.
type Analyzer struct {
	binary           string
	args             []string
	executionTimeout int
	maxDepth         int
}

// New builds the analyzer. Recognized keys: binary, args,
// execution_timeout (seconds, passed to mythril), max_depth.
func New(sec config.Section) (*Analyzer, error) {
	return &Analyzer{
		binary:           sec.String("binary", "myth"),
		args:             sec.Strings("args"),
		executionTimeout: sec.Int("execution_timeout", 0),
		maxDepth:         sec.Int("max_depth", 0),
	}, nil
}

// Factory returns the registry entry for mythril.
func Factory() adapter.Factory {
	return adapter.Factory{New: adapter.Configured(New)}
}

func (a *Analyzer) Name() string { return name }

// Analyze runs "myth analyze <target> -o json".
func (a *Analyzer) Analyze(ctx context.Context, target string) (any, error) {
	args := []string{"analyze", target, "-o", "json"}
	if a.executionTimeout > 0 {
		args = append(args, "--execution-timeout", strconv.Itoa(a.executionTimeout))
	}
	if a.maxDepth > 0 {
		args = append(args, "--max-depth", strconv.Itoa(a.maxDepth))
	}
	args = append(args, a.args...)

	res, err := execx.Run(ctx, execx.Command{
		Tool:      name,
		Operation: "analyze",
		Binary:    a.binary,
		Args:      args,
	})
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(res.Stdout))) == 0 && res.ExitCode != 0 {
		return nil, adapter.NewError(name, "analyze", adapter.CodeExecutionFailed,
			"exit status "+strconv.Itoa(res.ExitCode)+": "+res.Tail())
	}
	return Parse(res.Stdout)
}

type output struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
	Issues  []issue `json:"issues"`
}

type issue struct {
	Title       string          `json:"title"`
	SWCID       string          `json:"swc-id"`
	Severity    string          `json:"severity"`
	Description string          `json:"description"`
	Filename    string          `json:"filename"`
	Lineno      json.RawMessage `json:"lineno"`
	Contract    string          `json:"contract"`
	Function    string          `json:"function"`
}

// Parse decodes mythril's JSON report into findings.
func Parse(data []byte) ([]types.Finding, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, adapter.NewError(name, "analyze", adapter.CodeParseError, "decoding mythril json").WithCause(err)
	}
	if !out.Success {
		msg := "analysis unsuccessful"
		if out.Error != nil && *out.Error != "" {
			msg = *out.Error
		}
		return nil, adapter.NewError(name, "analyze", adapter.CodeExecutionFailed, msg)
	}

	findings := make([]types.Finding, 0, len(out.Issues))
	for _, is := range out.Issues {
		sev, err := types.ParseSeverity(is.Severity)
		if err != nil {
			sev = types.SeverityInfo
		}
		check := is.Title
		swc := ""
		if is.SWCID != "" {
			swc = "SWC-" + is.SWCID
			check = swc
		}
		findings = append(findings, types.Finding{
			Tool:        name,
			Check:       check,
			Title:       is.Title,
			Severity:    sev,
			Description: strings.TrimSpace(is.Description),
			File:        is.Filename,
			Line:        lineno(is.Lineno),
			SWC:         swc,
		})
	}
	return findings, nil
}

// lineno accepts both numeric and string line numbers; mythril emits either
// depending on the input type.
func lineno(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		n, _ = strconv.Atoi(s)
	}
	return n
}
