package format

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/rdmtools/vaultcheck/pkg/check"
)

// humanSink writes one block of labeled lines per result.
type humanSink struct {
	w io.Writer
	// width clips each output line when > 0.
	width int
}

func newHuman(w io.Writer, opts Options) check.Sink {
	width := 0
	if opts.Truncate {
		if f, ok := w.(*os.File); ok {
			if tw, _, err := term.GetSize(int(f.Fd())); err == nil {
				width = tw
			}
		}
	}
	return &humanSink{w: w, width: width}
}

func (s *humanSink) Head() error {
	_, err := fmt.Fprint(s.w, "Results of consistency check\n\n\n")
	return err
}

func (s *humanSink) Emit(r check.Result) error {
	lines := []string{
		"----",
		"Type: " + string(r.Kind),
		"Logical path: " + r.LogicalPath,
		"Physical path: " + r.PhysicalPath,
		"Status: " + string(r.Status),
	}

	expected, okE := r.Observed[check.ExpectedSize]
	observed, okO := r.Observed[check.ObservedSize]
	if okE && okO && expected != observed {
		lines = append(lines, "Expected size: "+expected, "Observed size: "+observed)
	}
	expected, okE = r.Observed[check.ExpectedChecksum]
	observed, okO = r.Observed[check.ObservedChecksum]
	if okE && okO && expected != observed {
		lines = append(lines, "Expected checksum: "+expected, "Observed checksum: "+observed)
	}

	for _, line := range lines {
		if s.width > 0 {
			line = clipLine(line, s.width)
		}
		if _, err := fmt.Fprintln(s.w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(s.w)
	return err
}

// clipLine shortens a line to at most width runes, never splitting a
// multi-byte character.
func clipLine(line string, width int) string {
	if runes := []rune(line); len(runes) > width {
		return string(runes[:width])
	}
	return line
}
