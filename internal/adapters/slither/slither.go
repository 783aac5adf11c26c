// Package slither wraps the slither static analyzer.
package slither

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/openaudit/auditengine/internal/adapter"
	"github.com/openaudit/auditengine/internal/adapters/execx"
	"github.com/openaudit/auditengine/internal/config"
	"github.com/openaudit/auditengine/internal/textutil"
	"github.com/openaudit/auditengine/internal/types"
)

const name = config.KeySlither

// Analyzer runs slither and maps its detector results to findings.
type Analyzer struct {
	binary  string
	args    []string
	solc    string
	exclude []string
}

// New builds the analyzer from its configuration section. Recognized keys:
// binary, args, solc, exclude (detector names to drop).
func New(sec config.Section) (*Analyzer, error) {
	a := &Analyzer{
		binary:  sec.String("binary", "slither"),
		args:    sec.Strings("args"),
		solc:    sec.String("solc", ""),
		exclude: sec.Strings("exclude"),
	}
	if a.binary == "" {
		return nil, fmt.Errorf("slither: binary must not be empty")
	}
	return a, nil
}

// Factory returns the registry entry for slither.
func Factory() adapter.Factory {
	return adapter.Factory{New: adapter.Configured(New)}
}

func (a *Analyzer) Name() string { return name }

// Analyze runs "slither <target> --json -". Slither exits non-zero whenever it
// reports detectors, so only unparseable output is a failure.
func (a *Analyzer) Analyze(ctx context.Context, target string) (any, error) {
	args := []string{target, "--json", "-"}
	if a.solc != "" {
		args = append(args, "--solc", a.solc)
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
	findings, err := Parse(res.Stdout)
	if err != nil {
		if tail := res.Tail(); tail != "" {
			return nil, adapter.NewError(name, "analyze", adapter.CodeExecutionFailed, tail).WithCause(err)
		}
		return nil, err
	}
	if len(a.exclude) > 0 {
		findings = slices.DeleteFunc(findings, func(f types.Finding) bool {
			return slices.Contains(a.exclude, f.Check)
		})
	}
	return findings, nil
}

type output struct {
	Success bool    `json:"success"`
	Error   *string `json:"error"`
	Results struct {
		Detectors []detector `json:"detectors"`
	} `json:"results"`
}

type detector struct {
	Check       string    `json:"check"`
	Impact      string    `json:"impact"`
	Confidence  string    `json:"confidence"`
	Description string    `json:"description"`
	Markdown    string    `json:"markdown"`
	Elements    []element `json:"elements"`
}

type element struct {
	Name          string `json:"name"`
	SourceMapping struct {
		FilenameRelative string `json:"filename_relative"`
		FilenameShort    string `json:"filename_short"`
		Lines            []int  `json:"lines"`
	} `json:"source_mapping"`
}

// Parse decodes slither's --json output into findings, in detector order.
func Parse(data []byte) ([]types.Finding, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, adapter.NewError(name, "analyze", adapter.CodeParseError, "decoding slither json").WithCause(err)
	}
	if !out.Success && out.Error != nil && *out.Error != "" {
		return nil, adapter.NewError(name, "analyze", adapter.CodeExecutionFailed, *out.Error)
	}

	findings := make([]types.Finding, 0, len(out.Results.Detectors))
	for _, d := range out.Results.Detectors {
		sev, err := types.ParseSeverity(d.Impact)
		if err != nil {
			sev = types.SeverityInfo
		}
		desc := d.Description
		if d.Markdown != "" {
			desc = textutil.PlainText(d.Markdown)
		}
		f := types.Finding{
			Tool:        name,
			Check:       d.Check,
			Title:       d.Check,
			Severity:    sev,
			Confidence:  d.Confidence,
			Description: desc,
		}
		if len(d.Elements) > 0 {
			sm := d.Elements[0].SourceMapping
			f.File = sm.FilenameRelative
			if f.File == "" {
				f.File = sm.FilenameShort
			}
			if len(sm.Lines) > 0 {
				f.Line = sm.Lines[0]
			}
		}
		findings = append(findings, f)
	}
	return findings, nil
}
