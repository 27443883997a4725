// Package scene holds the in-memory graph that the engine animates.
//
// A [Scene] is built once from a list of [graph.Definition] records and then
// mutated tick by tick. It owns every [Node] in a single arena indexed by node
// id; child and parent links are stored as ids into that arena, so nodes never
// own each other and a scene can be copied or discarded as a unit.
//
// # Building
//
// [Build] resolves child/parent names through the scene's name lookup and
// derives the connectivity matrix (entry i is node i's child ids). Build never
// touches an existing scene: callers swap the returned scene in only when it
// succeeded. Build fails with code GRAPH_BUILD when:
//
//   - a child or parent name is not defined
//   - two records share a name
//   - an id is outside [0, n) or appears twice
//
// Nodes start evenly spaced on a circle of radius 0.45*width around the
// viewport centre and ease toward the (x_pos, y_pos) of their definition.
//
// # Motion
//
// [Node.Follow] advances a node one step toward its target. The step is
// Manhattan-weighted rather than unit-normalised, so diagonal moves are
// slightly faster than axis-aligned ones:
//
//	x += vx * dx / (|dx| + |dy|)
//	y += vy * dy / (|dx| + |dy|)
//
// Velocity starts at [InitialVelocity] and grows by [VelocityStep] per step
// while below [MaxVelocity]. Within [SnapDistance] the node snaps exactly onto
// its target and reports [Node.InPosition].
//
// # Input
//
// [Scene.HitTest] and the drag helpers on [Node] implement point-in-circle
// hover detection and direct position control while a node is dragged.
package scene
