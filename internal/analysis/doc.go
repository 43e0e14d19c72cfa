// Package analysis works on recorded runs: rows of per-body
// [x, y, vx, vy] columns with their sample times.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation of one column
//   - [Portrait]: phase portrait of two columns drawn as text
//   - [Episodes]: the run split at each return to the starting layout
//   - [SettleTime]: when the bodies stop leaving the centre
package analysis
