package similarity

import (
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/levenshtein"
)

// BirdScore holds conditions c1-c3 of the Bird heuristic.
type BirdScore struct {
	C1  float64 // full name ratio
	C2  float64 // email local part ratio
	C31 float64 // first name ratio
	C32 float64 // last name ratio
}

// Values implements Conditions.
func (s BirdScore) Values() []string {
	return []string{FormatFloat(s.C1), FormatFloat(s.C2), FormatFloat(s.C31), FormatFloat(s.C32)}
}

// Matches implements Conditions. c3 requires both name parts to pass.
func (s BirdScore) Matches(threshold float64) bool {
	return s.C1 >= threshold || s.C2 >= threshold || (s.C31 >= threshold && s.C32 >= threshold)
}

// BirdExtendedScore adds the initial-in-local-part checks c4-c7.
type BirdExtendedScore struct {
	BirdScore

	C4 bool
	C5 bool
	C6 bool
	C7 bool
}

// Values implements Conditions.
func (s BirdExtendedScore) Values() []string {
	return append(s.BirdScore.Values(),
		FormatBool(s.C4), FormatBool(s.C5), FormatBool(s.C6), FormatBool(s.C7))
}

// Matches implements Conditions. c4-c7 hold regardless of the threshold.
func (s BirdExtendedScore) Matches(threshold float64) bool {
	return s.BirdScore.Matches(threshold) || s.C4 || s.C5 || s.C6 || s.C7
}

// Bird3 computes conditions c1-c3.
type Bird3 struct {
	cfg Config
}

// NewBird3 creates a Bird-3 engine.
func NewBird3(cfg Config) *Bird3 {
	return &Bird3{cfg: cfg}
}

// Variant implements Engine.
func (e *Bird3) Variant() Variant { return VariantBird3 }

// Compare implements Engine.
func (e *Bird3) Compare(a, b identity.Identity) Conditions {
	return e.score(a, b)
}

func (e *Bird3) score(a, b identity.Identity) BirdScore {
	var c2 float64
	if !(e.cfg.EmailCheck && e.cfg.anyGeneric(a, b)) {
		c2 = levenshtein.Ratio(a.LocalPart, b.LocalPart)
	}

	return BirdScore{
		C1:  levenshtein.Ratio(a.Folded, b.Folded),
		C2:  c2,
		C31: levenshtein.Ratio(a.First, b.First),
		C32: levenshtein.Ratio(a.Last, b.Last),
	}
}

// Bird7 computes conditions c1-c7.
type Bird7 struct {
	base *Bird3
}

// NewBird7 creates a Bird-7 engine.
func NewBird7(cfg Config) *Bird7 {
	return &Bird7{base: NewBird3(cfg)}
}

// Variant implements Engine.
func (e *Bird7) Variant() Variant { return VariantBird7 }

// Compare implements Engine.
func (e *Bird7) Compare(a, b identity.Identity) Conditions {
	return BirdExtendedScore{
		BirdScore: e.base.score(a, b),
		C4:        embedded(a.InitialFirst, a.Last, b.LocalPart),
		C5:        embedded(a.InitialLast, a.First, b.LocalPart),
		C6:        embedded(b.InitialFirst, b.Last, a.LocalPart),
		C7:        embedded(b.InitialLast, b.First, a.LocalPart),
	}
}

// embedded reports whether both an initial and a name part occur in an
// email local part, as in "jdoe". Empty operands never match.
func embedded(initial, part, local string) bool {
	if initial == "" || part == "" {
		return false
	}

	return strings.Contains(local, initial) && strings.Contains(local, part)
}

// Improved is Bird-3 where a generic local part only suppresses c2 when the
// names are dissimilar. The generic check is always active.
type Improved struct {
	cfg Config
}

// NewImproved creates an improved engine.
func NewImproved(cfg Config) *Improved {
	return &Improved{cfg: cfg}
}

// Variant implements Engine.
func (e *Improved) Variant() Variant { return VariantImproved }

// Compare implements Engine.
func (e *Improved) Compare(a, b identity.Identity) Conditions {
	c1 := levenshtein.Ratio(a.Folded, b.Folded)

	var c2 float64
	if !(e.cfg.anyGeneric(a, b) && c1 < e.cfg.ImprovedNameCutoff) {
		c2 = levenshtein.Ratio(a.LocalPart, b.LocalPart)
	}

	return BirdScore{
		C1:  c1,
		C2:  c2,
		C31: levenshtein.Ratio(a.First, b.First),
		C32: levenshtein.Ratio(a.Last, b.Last),
	}
}
