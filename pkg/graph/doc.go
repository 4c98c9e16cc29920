// Package graph provides serialization types for career maps and layouts.
//
// This package defines the canonical wire format for metromap data, used for
// input files, API requests and responses, caching and storage.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - [CareerMap], [Layout]: serialization types (this package)
//   - pkg/metro.Graph: internal layout model
//
// pkg/metro/adapter converts a [CareerMap] into a metro.Graph and
// pkg/pipeline exports a positioned metro.Graph as a [Layout].
//
// # Career Maps
//
// A career map lists career paths, each with ordered roles, plus
// transitions between roles:
//
//	{
//	  "name": "Engineering",
//	  "paths": [
//	    {"id": "ic", "name": "Individual Contributor", "color": "#e4002b",
//	     "roles": [{"id": "eng1", "name": "Engineer I", "level": 0}]}
//	  ],
//	  "transitions": [{"from": "eng1", "to": "pm1", "recommended": true}]
//	}
//
// The same structure is accepted as TOML and YAML; the format is chosen by
// file extension in [ReadCareerMapFile] or explicitly in [ReadCareerMap].
//
// # Layouts
//
// A [Layout] is everything a renderer needs: positioned stations keyed by
// ID, lines with their color and SVG path data, connection path data and
// the view bounds. Renderers never recompute geometry.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
