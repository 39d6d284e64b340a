// Package viz draws a running world in the terminal.
//
// The live viewer looks straight down the Y axis and outlines every entity's
// footprint on a Braille canvas: spheres as circles, boxes as rectangles or
// rotated quads, capsules as stadiums, constraints as lines.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	.     - Advance one frame while paused
//	R     - Rebuild the scene
//	B     - Toggle the broad-phase
//	G     - Toggle gravity
//	I/O   - Fewer/more constraint iterations
//	+/-   - Zoom
//	F     - Follow the scene's focus entity
//	V     - Toggle GIF recording
//	T     - Cycle color themes
//	?     - Show help overlay
//
// # Recording
//
// Recordings are written as GIF animations, one frame per tick, to
// rigidsim.gif unless another path is set.
package viz
