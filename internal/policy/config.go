package policy

// PolicyConfig is the optional rule tuning file. A nil *PolicyConfig means
// every rule runs with its built-in defaults.
type PolicyConfig struct {
	Version int                   `yaml:"version"`
	Rules   map[string]RuleConfig `yaml:"rules"`
}

// RuleConfig tunes one check. Disabling a waste check does not hide the
// resource: it is reported as active instead.
type RuleConfig struct {
	Enabled *bool              `yaml:"enabled,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}
