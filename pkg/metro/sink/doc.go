// Package sink renders computed metro layouts to output formats.
//
// # Overview
//
// Every renderer takes a [graph.Layout], the positioned result of the
// layout pipeline, and never recomputes geometry. Station coordinates are
// read from the layout itself, so several maps can be rendered side by side
// without sharing state.
//
// # Formats
//
//   - [RenderSVG]: standalone SVG with lines, connections, stations, labels
//     and an optional legend and "you are here" marker
//   - [RenderJSON]: the layout document as pretty-printed JSON
//   - [ToDOT]: Graphviz DOT source with pinned station positions
//   - [RenderPNG]: raster output produced by Graphviz from [ToDOT]
//
// # Colors
//
// Lines without a color take one from [Palette] by line index, so the same
// map always renders with the same colors.
package sink
