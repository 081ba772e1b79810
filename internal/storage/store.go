package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/sixdof/internal/control"
	"github.com/san-kum/sixdof/internal/eom"
	"github.com/san-kum/sixdof/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// RunMetadata describes a stored run. Error is set when the run aborted.
type RunMetadata struct {
	ID         string             `json:"id"`
	Aircraft   string             `json:"aircraft"`
	Timestamp  time.Time          `json:"timestamp"`
	Integrator string             `json:"integrator"`
	Start      float64            `json:"start"`
	Dt         float64            `json:"dt"`
	End        float64            `json:"end"`
	Steps      int                `json:"steps"`
	Trimmed    bool               `json:"trimmed"`
	Metrics    map[string]float64 `json:"metrics"`
	Error      string             `json:"error,omitempty"`
}

// Save writes metadata, a CSV of the samples and the compressed archive
// under a new run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Aircraft, meta.Timestamp.UnixNano())
	}
	meta.Steps = result.Steps
	meta.Metrics = result.Metrics

	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, statesFile), result.Samples); err != nil {
		return "", err
	}
	if err := writeArchive(filepath.Join(runDir, archiveFile), result.Samples); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// Columns is the CSV header for samples with the given engine count.
func Columns(engines int) []string {
	cols := []string{"time"}
	cols = append(cols, eom.Names()...)
	cols = append(cols, string(control.Elevator), string(control.Aileron), string(control.Rudder))
	for i := 0; i < engines; i++ {
		cols = append(cols, fmt.Sprintf("%s%d", control.Throttle, i))
	}
	cols = append(cols, string(control.Flaps), string(control.Gear), string(control.Brakes))
	return append(cols, "airspeed", "alpha", "beta", "nz", "thrust")
}

func row(s sim.Sample) []float64 {
	r := []float64{s.Time}
	r = append(r, s.State...)
	u := s.Controls
	r = append(r, u.Elevator, u.Aileron, u.Rudder)
	r = append(r, u.Throttle...)
	r = append(r, u.Flaps, u.Gear, u.Brakes)
	o := s.Outputs
	return append(r, o.Airspeed, o.Alpha, o.Beta, o.Nz, o.Thrust)
}

func writeCSV(path string, samples []sim.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(samples) == 0 {
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns(samples[0].Controls.Engines())); err != nil {
		return err
	}
	for _, s := range samples {
		vals := row(s)
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Table is the CSV of a run with named columns.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// Column returns one column by name.
func (t *Table) Column(name string) ([]float64, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	col := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if idx < len(r) {
			col = append(col, r[idx])
		}
	}
	return col, true
}

func (s *Store) LoadTable(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.Dir(runID), statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Columns: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for i := 1; i < len(records); i++ {
		vals := make([]float64, len(records[i]))
		for j, field := range records[i] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", statesFile, i+1, err)
			}
			vals[j] = v
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, nil
}
