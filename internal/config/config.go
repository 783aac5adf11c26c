// Package config loads the engine configuration document: a mapping from
// tool name to that tool's sub-configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Recognized top-level keys.
const (
	KeySlither = "slither"
	KeyMythril = "mythril"
	KeyEchidna = "echidna"
	KeyFuzzer  = "fuzzer"
	KeyScoring = "scoring"
	KeyEngine  = "engine"
)

// maxConfigSize is the largest configuration document accepted (1 MB).
const maxConfigSize = 1 << 20

var (
	// ErrNotFound means the path does not resolve to a readable file.
	ErrNotFound = errors.New("config not found")
	// ErrParse means the document is not well-formed YAML or JSON.
	ErrParse = errors.New("config parse error")
	// ErrShape means the document parsed but is not a mapping of mappings.
	ErrShape = errors.New("config shape error")
)

// Config maps a tool name to its sub-configuration. It is never mutated after
// Load returns.
type Config map[string]Section

// Section returns the sub-configuration for name, or an empty section when
// the key is absent.
func (c Config) Section(name string) Section {
	if s, ok := c[name]; ok && s != nil {
		return s
	}
	return Section{}
}

// Load reads the configuration document at path. JSON documents are accepted
// as well as YAML. An empty document is an empty configuration.
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("%w: %s: file too large (%d bytes, max 1 MB)", ErrParse, path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrNotFound, path, err)
	}
	return Parse(data, path)
}

// Parse decodes an in-memory configuration document. name is used in error
// messages only.
func Parse(data []byte, name string) (Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Config{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrParse, name, err)
	}
	if len(doc.Content) == 0 {
		return Config{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: root must be a mapping, got %s", ErrShape, name, kindName(root))
	}

	cfg := make(Config, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}
		switch value.Kind {
		case yaml.MappingNode:
			var sec Section
			if err := value.Decode(&sec); err != nil {
				return nil, fmt.Errorf("%w: parsing %s: section %q: %v", ErrParse, name, key.Value, err)
			}
			cfg[key.Value] = sec
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				cfg[key.Value] = Section{}
				continue
			}
			fallthrough
		default:
			if known(key.Value) {
				return nil, fmt.Errorf("%w: %s: section %q must be a mapping, got %s", ErrShape, name, key.Value, kindName(value))
			}
			// Unknown keys are ignored whatever their shape.
		}
	}
	return cfg, nil
}

func known(key string) bool {
	switch key {
	case KeySlither, KeyMythril, KeyEchidna, KeyFuzzer, KeyScoring, KeyEngine:
		return true
	}
	return false
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "document"
	}
}
