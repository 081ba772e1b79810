package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/sixdof/internal/sim"
)

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []sim.Sample `json:"samples"`
}

// ExportJSON writes the metadata and archived samples of a run.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: *meta, Samples: samples})
}

// ExportCSV writes the selected columns of a run, all of them when cols is
// empty. Unknown column names are skipped.
func (s *Store) ExportCSV(w io.Writer, runID string, cols ...string) error {
	t, err := s.LoadTable(runID)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		cols = t.Columns
	}

	var header []string
	var data [][]float64
	for _, c := range cols {
		col, ok := t.Column(c)
		if !ok {
			continue
		}
		header = append(header, c)
		data = append(data, col)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range t.Rows {
		rec := make([]string, len(data))
		for j := range data {
			rec[j] = strconv.FormatFloat(data[j][i], 'f', 6, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
