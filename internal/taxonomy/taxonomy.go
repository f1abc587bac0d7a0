// Package taxonomy maps outlet identifiers to their political leaning.
//
// The table ships embedded in the binary (outlets.yaml) and can be replaced
// by a file of the same shape. A Taxonomy is immutable once loaded.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/IshaanNene/unioncorpus/internal/types"
)

//go:embed outlets.yaml
var defaultOutlets []byte

// Entry is the leaning record for one outlet.
type Entry struct {
	Outlet  string        `yaml:"outlet"`
	Leaning types.Leaning `yaml:"leaning"`
	Far     bool          `yaml:"far"`
}

// FarLabel returns the far label for this outlet: the leaning when the
// outlet is flagged far, otherwise FarNone.
func (e Entry) FarLabel() types.Far {
	if !e.Far {
		return types.FarNone
	}
	switch e.Leaning {
	case types.LeaningLeft:
		return types.FarLeft
	case types.LeaningRight:
		return types.FarRight
	}
	return types.FarNone
}

type document struct {
	Outlets []Entry `yaml:"outlets"`
}

// Taxonomy is a read-only outlet → Entry table.
type Taxonomy struct {
	entries map[string]Entry
}

// Default returns the embedded taxonomy.
func Default() (*Taxonomy, error) {
	return Parse(defaultOutlets)
}

// Load reads a taxonomy from path, or returns the embedded one when path is
// empty.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if len(doc.Outlets) == 0 {
		return nil, fmt.Errorf("taxonomy has no outlets")
	}

	t := &Taxonomy{entries: make(map[string]Entry, len(doc.Outlets))}
	for i, e := range doc.Outlets {
		e.Outlet = strings.TrimSpace(e.Outlet)
		if e.Outlet == "" {
			return nil, fmt.Errorf("taxonomy entry %d: outlet is required", i)
		}
		if !e.Leaning.Valid() {
			return nil, fmt.Errorf("taxonomy entry %q: invalid leaning %q", e.Outlet, e.Leaning)
		}
		// A far flag must resolve to left or right.
		if e.Far && e.Leaning == types.LeaningCentre {
			return nil, fmt.Errorf("taxonomy entry %q: centre outlets cannot be far", e.Outlet)
		}
		if _, dup := t.entries[e.Outlet]; dup {
			return nil, fmt.Errorf("taxonomy entry %q: duplicate outlet", e.Outlet)
		}
		t.entries[e.Outlet] = e
	}
	return t, nil
}

// Lookup returns the entry for outlet or a *types.LookupError.
func (t *Taxonomy) Lookup(outlet string) (Entry, error) {
	e, ok := t.entries[outlet]
	if !ok {
		return Entry{}, &types.LookupError{Outlet: outlet}
	}
	return e, nil
}

// Len returns the number of outlets.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}

// Entries returns all entries sorted by outlet.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Outlet < out[j].Outlet })
	return out
}
