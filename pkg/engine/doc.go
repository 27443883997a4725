// Package engine runs the per-frame animation of a scene.
//
// An [Engine] owns the current [scene.Scene] and the [fade.State]. Every call
// that reads or mutates either (ticks, input, rebuilds) takes the engine's
// single mutex, so a tick always observes a consistent node set.
//
// # Frame
//
// [Engine.Tick] performs one frame against a [Renderer]:
//
//  1. skip the frame entirely until a graph has been loaded
//  2. clear the canvas while hovered or before the starting animation is done
//  3. step the fade intensity
//  4. draw every edge of the connectivity matrix in the fade grey
//  5. for every node: follow its target when the intensity is at its peak,
//     recompute radius and forces from [Controls], draw it
//  6. draw hover highlights (the node, its neighbours and the links to them
//     in white)
//  7. recompute the completion flags from the updated nodes
//
// [Engine.Run] repeats Tick whenever its [Scheduler] fires and stops when the
// context is cancelled.
//
// # Loading
//
// [Engine.Load] fetches definitions from a [graph.Source], builds a new scene
// outside the lock and swaps it in under the lock. Only after the swap is the
// engine marked loaded. A failed load or build leaves the previous scene, and
// the gate, exactly as they were.
package engine
