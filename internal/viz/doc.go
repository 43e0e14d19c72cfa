// Package viz is the interactive terminal host for the simulator.
//
// The program runs on Bubble Tea with mouse cell motion enabled:
//
//   - [Model]: steps the simulator on a fixed tick and maps mouse presses,
//     drags and releases onto pointer events
//   - [Canvas]: braille dot canvas that draws circles and rectangles
//   - four colour themes, cycled at runtime
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Step once while paused
//	R     - Reset to the initial positions
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
