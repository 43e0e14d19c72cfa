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

	"github.com/san-kum/blobsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return &sim.SetupError{Stage: "storage", Err: err}
	}
	return nil
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Variant   string             `json:"variant"`
	Preset    string             `json:"preset,omitempty"`
	Scenario  string             `json:"scenario,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Ticks     int                `json:"ticks"`
	Bodies    int                `json:"bodies"`
	Resets    int                `json:"resets"`
	Kicks     int                `json:"kicks"`
	Metrics   map[string]float64 `json:"metrics"`
	Params    sim.Params         `json:"params"`
}

// Save writes metadata.json and states.csv into a new run directory and
// returns the run ID. ID, Timestamp and Bodies are filled in.
func (s *Store) Save(meta RunMetadata, samples []sim.Snapshot) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Variant, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	if len(samples) > 0 {
		meta.Bodies = len(samples[0].Bodies)
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := WriteCSV(w, samples); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// WriteCSV writes one row per snapshot: time, then x, y, vx, vy per body.
func WriteCSV(w *csv.Writer, samples []sim.Snapshot) error {
	if len(samples) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range samples[0].Bodies {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range samples {
		row := []string{strconv.FormatFloat(snap.Time, 'f', 6, 64)}
		for _, b := range snap.Bodies {
			row = append(row,
				strconv.FormatFloat(b.Pos[0], 'f', 6, 64),
				strconv.FormatFloat(b.Pos[1], 'f', 6, 64),
				strconv.FormatFloat(b.Vel[0], 'f', 6, 64),
				strconv.FormatFloat(b.Vel[1], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run, newest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadStates reads states.csv back as rows of body values and their times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: bad value %q at t=%s", runID, field, record[0])
			}
			state = append(state, val)
		}
		times = append(times, t)
		states = append(states, state)
	}

	return states, times, nil
}

// Positions splits a states.csv row into per-body positions.
func Positions(row []float64) []sim.Vec {
	out := make([]sim.Vec, 0, len(row)/4)
	for i := 0; i+3 < len(row); i += 4 {
		out = append(out, sim.Vec{row[i], row[i+1]})
	}
	return out
}
