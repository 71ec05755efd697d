// Package format provides the result sinks: output formats consuming the
// audit result stream. Formats are selected by name through a static
// registry.
package format

import (
	"fmt"
	"io"
	"sort"

	"github.com/rdmtools/vaultcheck/pkg/check"
)

// Options tunes sink behavior; individual sinks ignore what they don't
// support.
type Options struct {
	// Truncate clips human-format lines to the active terminal width.
	Truncate bool
}

type constructor func(io.Writer, Options) check.Sink

var registry = map[string]constructor{
	"human": newHuman,
	"csv":   newCSV,
}

// New returns the sink registered under name, writing to w.
func New(name string, w io.Writer, opts Options) (check.Sink, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, Names())
	}
	return ctor(w, opts), nil
}

// Names lists the registered format names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
