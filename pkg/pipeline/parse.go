package pipeline

import (
	"github.com/matzehuels/metromap/pkg/graph"
)

// Parse reads the career map named by opts: opts.MapFile when set,
// otherwise opts.Input decoded as opts.Format.
func Parse(opts Options) (graph.CareerMap, error) {
	if err := opts.ValidateForParse(); err != nil {
		return graph.CareerMap{}, err
	}

	var (
		m   graph.CareerMap
		err error
	)
	if opts.MapFile != "" {
		m, err = graph.ReadCareerMapFile(opts.MapFile)
	} else {
		m, err = graph.ReadCareerMap(opts.Input, opts.Format)
	}
	if err != nil {
		return graph.CareerMap{}, err
	}

	opts.Logger.Debug("parsed career map",
		"name", m.Name,
		"paths", len(m.Paths),
		"roles", m.RoleCount(),
		"transitions", len(m.Transitions))
	return m, nil
}
