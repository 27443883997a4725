// Package pkg holds the libraries behind fadegraph, an animated node-link
// graph.
//
// # Overview
//
// A graph document lists named nodes with a target position and the names of
// their children and parents. The engine places every node on a circle, eases
// it toward its target, and fades the edges from dark to light grey and back
// while the layout settles. Hovering highlights a node's links; dragging moves
// a node until it is released.
//
// # Packages
//
//   - [graph]: definition documents (JSON/YAML) and their sources (file, HTTP)
//   - [scene]: nodes, motion, connectivity and hit-testing
//   - [fade]: the global fade state machine
//   - [engine]: the per-frame orchestrator and its renderer/controls boundaries
//   - [render]: recorder, terminal canvas, SVG and Graphviz output
//   - [serve]: HTTP and websocket host for browser viewers
//   - [config]: TOML configuration and live controls
//   - [cache]: source cache backends (file, Redis, MongoDB)
//   - [observability], [errors], [buildinfo]: shared infrastructure
//
// # Data Flow
//
//	graph.Source ──Load──▶ engine.Engine ──Tick──▶ engine.Renderer
//	                           ▲
//	             input (hover, drag, SetTarget)
//
// # Quick Start
//
//	e := engine.New(engine.Options{})
//	if err := e.Load(ctx, graph.FileSource{Path: "skills.json"}); err != nil {
//	    return err
//	}
//	svg := render.NewSVG(e.Viewport())
//	e.Tick(svg)
package pkg
