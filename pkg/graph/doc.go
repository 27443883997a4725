// Package graph defines the graph definition wire format and the sources that
// load it.
//
// A graph definition is a flat list of node records. Links are expressed by
// node name, not by id:
//
//	[
//	  {"id": 0, "category": "Go", "is_boss": "true", "name": "Go",
//	   "x_pos": 400, "y_pos": 300, "content": "...",
//	   "children": ["Docker"], "parents": []},
//	  {"id": 1, "category": "Docker", "is_boss": "false", "name": "Docker",
//	   "x_pos": 620, "y_pos": 180, "content": "",
//	   "children": [], "parents": ["Go"]}
//	]
//
// The same records may be written in YAML. Resolution of names to ids happens
// later, when pkg/scene builds a scene from the definitions.
//
// # Sources
//
// A [Source] loads definitions asynchronously before the engine is enabled:
//
//   - [FileSource]: a local .json/.yaml/.yml file
//   - [HTTPSource]: a remote JSON document, cached and retried
//   - [StaticSource]: definitions already in memory
//
// Every source failure is reported with code LOAD (see pkg/errors).
//
// # Concurrency
//
// Sources are safe for concurrent use; definitions are plain values.
package graph
