// Package pkg provides the core libraries for metromap career maps.
//
// # Overview
//
// metromap draws career-progression data as a subway map: roles are
// stations, career paths are colored lines, and roles shared by several
// paths become interchanges. The pkg directory is organized into:
//
//  1. [metro] - Geometry (adapter, layout, collision, pathgen, sink)
//  2. [graph] - Serialization types for career maps and layouts
//  3. [pipeline] - Orchestration (parse → layout → render) with caching
//  4. [cache], [storage] - Infrastructure (layout cache, map storage)
//  5. [config], [errors], [observability], [buildinfo] - Ambient concerns
//
// # Architecture
//
// The typical data flow through metromap:
//
//	careers.yaml / API request
//	         ↓
//	    [graph] package (decode + validate CareerMap)
//	         ↓
//	    metro/adapter (roles → stations, shared roles → interchanges)
//	         ↓
//	    metro/layout (levels → x, lines → y, interchange and level passes)
//	         ↓
//	    metro/collision (push apart stations closer than 2 × radius)
//	         ↓
//	    pipeline.ExportLayout + metro/pathgen (line and connection paths)
//	         ↓
//	    metro/sink (SVG, JSON, DOT, PNG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/metromap/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	opts := pipeline.DefaultOptions()
//	opts.MapFile = "careers.yaml"
//	result, err := runner.Execute(context.Background(), opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// Each stage returns a new value; none mutates its input, so stages can be
// run, cached and tested on their own.
package pkg
