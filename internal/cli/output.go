package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/metromap/pkg/graph"
)

// artifactWriteParams describes rendered artifacts and where they go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	cacheHit  bool
	layout    *graph.Layout
}

// writeArtifacts writes one file per format. With a single format, output
// names the file itself ("-" writes to stdout). With several, output is a
// base path and each file gets its format as extension.
func writeArtifacts(p artifactWriteParams) error {
	formats := slices.Clone(p.formats)
	if len(formats) == 0 {
		for f := range p.artifacts {
			formats = append(formats, f)
		}
		slices.Sort(formats)
	}

	base := basePath(p.output, p.input)
	var written []string
	for _, format := range formats {
		data, ok := p.artifacts[format]
		if !ok {
			return fmt.Errorf("no %s output was rendered", format)
		}

		path := base + "." + format
		if len(formats) == 1 && p.output != "" {
			path = p.output
		}

		if err := writeOutput(path, data); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if path != "-" {
			written = append(written, path)
		}
	}

	if len(written) == 0 {
		return nil
	}
	printSuccess("Rendered %s", strings.Join(formats, ", "))
	for _, path := range written {
		printFile(path)
	}
	if p.layout != nil {
		printStats(*p.layout, p.cacheHit)
	}
	return nil
}

// basePath derives the output base path (without extension). An explicit
// output wins; otherwise the input's extension is stripped, along with a
// ".layout" suffix so "careers.layout.json" renders to "careers.svg".
func basePath(output, input string) string {
	if output != "" && output != "-" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}

func writeOutput(path string, data []byte) error {
	w, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// openOutput returns a writer for path, or stdout for "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
