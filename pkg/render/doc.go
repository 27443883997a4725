// Package render provides [engine.Renderer] implementations.
//
//   - [Recorder]: captures each frame as a [Frame] value, for streaming to
//     browser clients (see pkg/serve) and for tests
//   - [Terminal]: a character-cell canvas styled with lipgloss, used by the
//     interactive `run` command
//   - [SVG]: a vector image of the frames drawn since the last clear
//
// Still images of a whole scene can also be produced with Graphviz: [ToDOT]
// writes the scene with every node pinned at its current position and
// [RenderSVG] / [RenderPNG] lay it out with neato.
//
// Renderers are driven from inside [engine.Engine.Tick], which holds the
// engine lock. Callbacks must not call back into the engine.
package render
