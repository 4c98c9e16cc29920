package metro

// Default layout values, shared by the CLI, the API and the config loader.
const (
	DefaultPadding           = 50.0
	DefaultLevelSpacing      = 150.0
	DefaultPathSpacing       = 100.0
	DefaultNodeRadius        = 12.0
	DefaultInterchangeRadius = DefaultNodeRadius
	DefaultSeed              = uint64(42)
	DefaultResolvePasses     = 1
)

// Config is the layout configuration read by every stage.
type Config struct {
	Padding      float64 `json:"padding" toml:"padding"`
	LevelSpacing float64 `json:"level_spacing" toml:"level_spacing"` // x distance per level
	PathSpacing  float64 `json:"path_spacing" toml:"path_spacing"`   // y distance per line index

	NodeRadius float64 `json:"node_radius" toml:"node_radius"`
	// InterchangeRadius sizes interchange markers and is the collision
	// threshold: stations closer than twice this value collide.
	InterchangeRadius float64 `json:"interchange_radius" toml:"interchange_radius"`

	AdjustInterchanges bool `json:"adjust_interchanges" toml:"adjust_interchanges"`
	AlignLevels        bool `json:"align_levels" toml:"align_levels"`

	// JitterAmount > 0 offsets x by a random amount in [-j/2, +j/2].
	JitterAmount float64 `json:"jitter_amount,omitempty" toml:"jitter_amount"`
	Seed         uint64  `json:"seed,omitempty" toml:"seed"`

	// ResolvePasses caps collision resolution passes. Values <= 1 run the
	// single pass over the initial collision set.
	ResolvePasses int `json:"resolve_passes,omitempty" toml:"resolve_passes"`
}

// DefaultConfig returns the documented layout defaults.
func DefaultConfig() Config {
	return Config{
		Padding:            DefaultPadding,
		LevelSpacing:       DefaultLevelSpacing,
		PathSpacing:        DefaultPathSpacing,
		NodeRadius:         DefaultNodeRadius,
		InterchangeRadius:  DefaultInterchangeRadius,
		AdjustInterchanges: true,
		AlignLevels:        true,
		Seed:               DefaultSeed,
		ResolvePasses:      DefaultResolvePasses,
	}
}
