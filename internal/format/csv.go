package format

import (
	"encoding/csv"
	"io"

	"github.com/rdmtools/vaultcheck/pkg/check"
)

// csvSink writes one row per result in a fixed column layout.
type csvSink struct {
	w *csv.Writer
}

func newCSV(w io.Writer, _ Options) check.Sink {
	return &csvSink{w: csv.NewWriter(w)}
}

func (s *csvSink) Head() error {
	err := s.w.Write([]string{
		"Type", "Status", "Logical Path", "Physical Path",
		"Observed Checksum", "Expected Checksum",
		"Observed Size", "Expected Size",
	})
	if err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Emit(r check.Result) error {
	err := s.w.Write([]string{
		string(r.Kind),
		string(r.Status),
		r.LogicalPath,
		r.PhysicalPath,
		r.Observed[check.ObservedChecksum],
		r.Observed[check.ExpectedChecksum],
		r.Observed[check.ObservedSize],
		r.Observed[check.ExpectedSize],
	})
	if err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}
