// Package manifest parses an optional YAML description of the endpoints
// mkmimo should wire up, as an alternative to naming them positionally on
// the command line split by "--". When a manifest is given, positional
// arguments are not used.
package manifest

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Mode selects whether a manifest entry is an input or an output.
type Mode string

const (
	ModeIn  Mode = "in"
	ModeOut Mode = "out"
)

// Entry names one endpoint: a file path (or "-" for stdin/stdout) and
// whether mkmimo should open it for reading or writing.
type Entry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Mode Mode   `yaml:"mode"`
}

// Manifest is the top-level document: an ordered list of endpoints.
// Ordering is preserved since it determines poll and round-robin order.
type Manifest struct {
	Endpoints []Entry `yaml:"endpoints"`
}

// Load reads and parses a manifest file at path.
func Load(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks every entry has a name, a path, and a recognized mode.
func (m *Manifest) Validate() error {
	if len(m.Endpoints) == 0 {
		return fmt.Errorf("no endpoints declared")
	}
	seen := make(map[string]struct{}, len(m.Endpoints))
	for i, e := range m.Endpoints {
		if e.Name == "" {
			return fmt.Errorf("endpoint %d: name is required", i)
		}
		if e.Path == "" {
			return fmt.Errorf("endpoint %q: path is required", e.Name)
		}
		if e.Mode != ModeIn && e.Mode != ModeOut {
			return fmt.Errorf("endpoint %q: mode must be %q or %q, got %q", e.Name, ModeIn, ModeOut, e.Mode)
		}
		if _, dup := seen[e.Name]; dup {
			return fmt.Errorf("endpoint %q: name declared more than once", e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

// Inputs returns the names and paths of every ModeIn entry, in document order.
func (m *Manifest) Inputs() (names, paths []string) {
	return m.byMode(ModeIn)
}

// Outputs returns the names and paths of every ModeOut entry, in document order.
func (m *Manifest) Outputs() (names, paths []string) {
	return m.byMode(ModeOut)
}

func (m *Manifest) byMode(mode Mode) (names, paths []string) {
	for _, e := range m.Endpoints {
		if e.Mode != mode {
			continue
		}
		names = append(names, e.Name)
		paths = append(paths, e.Path)
	}
	return names, paths
}
