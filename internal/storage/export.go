package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/blobsim/internal/sim"
)

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Steps  int           `json:"steps"`
	Frames []ExportFrame `json:"frames"`
}

// ExportFrame carries positions in both NDC and texture space so renderers
// can use whichever they sample in.
type ExportFrame struct {
	Time    float64   `json:"time"`
	Pos     []sim.Vec `json:"pos"`
	Texture []sim.Vec `json:"texture"`
}

func ExportJSON(w io.Writer, meta RunMetadata, states [][]float64, times []float64) error {
	data := ExportData{
		Run:    meta,
		Steps:  len(times),
		Frames: make([]ExportFrame, len(times)),
	}

	for i, t := range times {
		pos := Positions(states[i])
		tex := make([]sim.Vec, len(pos))
		for j, p := range pos {
			tex[j] = sim.ToTexture(p)
		}
		data.Frames[i] = ExportFrame{Time: t, Pos: pos, Texture: tex}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies a stored run's states.csv to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	states, times, err := s.LoadStates(runID)
	if err != nil {
		return err
	}
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	samples := make([]sim.Snapshot, len(times))
	for i, t := range times {
		row := states[i]
		bodies := make([]sim.BodyView, 0, meta.Bodies)
		for j := 0; j+3 < len(row); j += 4 {
			bodies = append(bodies, sim.BodyView{
				Pos: sim.Vec{row[j], row[j+1]},
				Vel: sim.Vec{row[j+2], row[j+3]},
			})
		}
		samples[i] = sim.Snapshot{Time: t, Bodies: bodies}
	}

	cw := csv.NewWriter(w)
	if err := WriteCSV(cw, samples); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
