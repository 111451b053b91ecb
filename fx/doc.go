// Package fx renders particle effects through a recording.Queue.
//
// Effects come from a Manager and are either unordered, drawn per layer
// straight into the scene, or ordered, interleaved by the caller with world
// objects. Ordered effects are packed into a shared atlas, rendered once
// per frame into a pair of accumulation targets (one for alpha blended
// particles, one for additive particles) and composited back at each
// instance's world rectangle in three blend passes.
//
// The three-pass composite approximates layering the additive result over
// the blended one. It is not an exact compositing operator.
package fx
