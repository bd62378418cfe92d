// Package viz renders bubble scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: launcher with preset selection and a config screen
//   - [Model]: the live view, stepping a scene at the configured frame rate
//   - [Canvas]: braille dot-matrix canvas; gainers draw solid, losers hollow
//   - [Camera] and [RenderMarkers]: the rotating sphere scatter view
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Re-pack from scratch
//	M     - Cycle size mode
//	F     - Cycle change window
//	3     - Toggle sphere view
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// # Recording
//
// The G key toggles GIF recording; on stop the captured frames are written
// to bubbles.gif in the current directory.
package viz
