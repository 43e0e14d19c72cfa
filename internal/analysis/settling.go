package analysis

import "math"

// Episode is the stretch between two returns to the starting layout.
// Settled is when the bodies last arrived on the centre within it, or -1.
type Episode struct {
	Start, End float64
	Settled    float64
}

func (e Episode) Duration() float64 { return e.End - e.Start }

// Episodes splits a recorded run at the samples where every body is back
// within homeTol of the positions of the first row, which is what an idle
// reset looks like from the outside. Settled uses centreTol.
func Episodes(rows [][]float64, times []float64, homeTol, centreTol float64) []Episode {
	if len(rows) < 2 || len(rows) != len(times) {
		return nil
	}
	home := rows[0]
	var out []Episode
	first, away := 0, false
	for i := 1; i < len(rows); i++ {
		if !atPositions(rows[i], home, homeTol) {
			away = true
			continue
		}
		if away {
			out = append(out, Episode{
				Start:   times[first],
				End:     times[i],
				Settled: SettleTime(rows[first:i], times[first:i], centreTol),
			})
			first, away = i, false
		}
	}
	return out
}

func atPositions(row, home []float64, tol float64) bool {
	for i := 0; i+1 < len(row) && i+1 < len(home); i += 4 {
		if math.Abs(row[i]-home[i]) > tol || math.Abs(row[i+1]-home[i+1]) > tol {
			return false
		}
	}
	return true
}

// SettleTime is the first time after which every position stays within tol
// of the origin, or -1 if the bodies are not there at the end.
func SettleTime(rows [][]float64, times []float64, tol float64) float64 {
	settled := -1.0
	for i, r := range rows {
		if i >= len(times) {
			break
		}
		switch {
		case !nearOrigin(r, tol):
			settled = -1
		case settled < 0:
			settled = times[i]
		}
	}
	return settled
}

func nearOrigin(row []float64, tol float64) bool {
	for i := 0; i+1 < len(row); i += 4 {
		if math.Abs(row[i]) > tol || math.Abs(row[i+1]) > tol {
			return false
		}
	}
	return true
}
