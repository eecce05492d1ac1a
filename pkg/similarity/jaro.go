package similarity

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
)

// JaroScore holds the Jaro-Winkler conditions c1-c4.
type JaroScore struct {
	C1 float64 // full name similarity
	C2 float64 // email local part similarity
	C3 float64 // first initial + last name similarity
	C4 float64 // last initial + first name similarity
}

// Values implements Conditions.
func (s JaroScore) Values() []string {
	return []string{FormatFloat(s.C1), FormatFloat(s.C2), FormatFloat(s.C3), FormatFloat(s.C4)}
}

// Matches implements Conditions.
func (s JaroScore) Matches(threshold float64) bool {
	return s.C1 >= threshold || s.C2 >= threshold || s.C3 >= threshold || s.C4 >= threshold
}

// JaroWinkler is the Bird variant scored with Jaro-Winkler similarity.
type JaroWinkler struct {
	cfg    Config
	metric *metrics.JaroWinkler
}

// NewJaroWinkler creates a Jaro-Winkler engine.
func NewJaroWinkler(cfg Config) *JaroWinkler {
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	return &JaroWinkler{cfg: cfg, metric: metric}
}

// Variant implements Engine.
func (e *JaroWinkler) Variant() Variant { return VariantJaroWinkler }

func (e *JaroWinkler) sim(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), e.metric)
}

// Compare implements Engine.
func (e *JaroWinkler) Compare(a, b identity.Identity) Conditions {
	score := JaroScore{C1: e.sim(a.Folded, b.Folded)}

	if !(e.cfg.EmailCheck && e.cfg.anyGeneric(a, b)) {
		score.C2 = e.sim(a.LocalPart, b.LocalPart)
	}

	if allSet(a.InitialFirst, a.Last, b.InitialFirst, b.Last) {
		score.C3 = e.sim(a.InitialFirst+a.Last, b.InitialFirst+b.Last)
	}

	if allSet(a.InitialLast, a.First, b.InitialLast, b.First) {
		score.C4 = e.sim(a.InitialLast+a.First, b.InitialLast+b.First)
	}

	return score
}

func allSet(parts ...string) bool {
	for _, p := range parts {
		if p == "" {
			return false
		}
	}

	return true
}
