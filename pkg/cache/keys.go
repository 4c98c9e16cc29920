package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// keyVersion is part of every key. Bump it when the layout geometry or
// the Layout JSON changes so entries written by older builds miss.
const keyVersion = "v1"

// Keyer derives cache keys for pipeline stages.
type Keyer interface {
	// LayoutKey identifies a layout computed from the map with the given hash.
	LayoutKey(mapHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered format of the layout with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change computed coordinates.
type LayoutKeyOpts struct {
	Padding            float64 `json:"padding"`
	LevelSpacing       float64 `json:"level_spacing"`
	PathSpacing        float64 `json:"path_spacing"`
	NodeRadius         float64 `json:"node_radius"`
	InterchangeRadius  float64 `json:"interchange_radius"`
	AdjustInterchanges bool    `json:"adjust_interchanges"`
	AlignLevels        bool    `json:"align_levels"`
	JitterAmount       float64 `json:"jitter_amount"`
	Seed               uint64  `json:"seed"`
	ResolvePasses      int     `json:"resolve_passes"`
	Orthogonal         bool    `json:"orthogonal"`
	RoundedCorners     bool    `json:"rounded_corners"`
	CornerRadius       float64 `json:"corner_radius"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Highlight string  `json:"highlight,omitempty"`
	Legend    bool    `json:"legend,omitempty"`
	Labels    bool    `json:"labels"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer builds keys of the form "<stage>:<version>:<sha256>" where
// the digest covers the input hash and the stage options.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(mapHash string, opts LayoutKeyOpts) string {
	return stageKey("layout", mapHash, opts)
}

// ArtifactKey keys on the format, so each format of one layout is cached
// separately.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return stageKey("artifact", layoutHash, opts)
}

func stageKey(stage, inputHash string, opts any) string {
	// Option structs hold only numbers, bools and strings.
	data, _ := json.Marshal(struct {
		Input string `json:"input"`
		Opts  any    `json:"opts"`
	}{inputHash, opts})
	return stage + ":" + keyVersion + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. The pipeline hashes
// serialized maps and layouts with it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
