package config

// Heuristic defaults.
var (
	DefaultVariants        = []string{"bird3", "improved"}
	DefaultGenericPrefixes = []string{"mail", "github", "git", "info", "hello", "me"}
	DefaultThresholds      = []float64{0.9, 0.99}
)

// Scalar defaults.
const (
	DefaultEmailCheck         = true
	DefaultImprovedNameCutoff = 0.6

	DefaultPipelineWorkers       = 0
	DefaultPipelineWritePairs    = true
	DefaultPipelineCompressPairs = false

	DefaultDataRoot     = "."
	DefaultAnnotatedDir = "annotated"

	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)
