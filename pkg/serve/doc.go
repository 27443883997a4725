// Package serve hosts one engine over HTTP for browser renderers.
//
// Routes:
//
//	GET  /healthz             liveness
//	GET  /graph               snapshot of nodes, links and fade state
//	GET  /frame               the last drawn frame
//	GET  /nodes/{id}          one node, including its content
//	PUT  /nodes/{id}/target   move a node's target: {"x": 10, "y": 20}
//	POST /reload              reload the graph from the configured source
//	GET  /ws                  websocket: frame stream plus pointer input
//
// Every websocket viewer gets a session id and receives each frame as a
// JSON message {"type": "frame", "frame": {...}}. Viewers send pointer events
// ({"type": "hover", "x": 1, "y": 2}, "leave", "drag_start", "drag_move",
// "drag_end"). All viewers share the single engine; there is no per-viewer
// state beyond the connection.
package serve
