// Package selection owns the screen-space point selection kernel.
//
// Responsibilities: composing model, view and projection matrices,
// projecting point buffers to screen pixels, and classifying each point
// against a rectangle or polygon drawn by the user.
// Key types: Mat4, Viewport, Region, Request, Mask.
//
// The kernel is a pure function of its inputs. It holds no state between
// calls, performs no I/O and never mutates the point buffer it is given.
// Worker isolation lives in the worker subpackage; the message boundary
// lives in wire.
package selection
