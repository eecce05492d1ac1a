// Package similarity implements the Bird identity-matching heuristic and its
// variants. Every engine compares two normalized identities and returns a
// fixed, variant-specific set of conditions.
package similarity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
)

// Variant names one heuristic strategy and, with it, one output row shape.
type Variant string

// Supported variants.
const (
	// VariantBird7 is the full Bird heuristic with conditions c1-c7.
	VariantBird7 Variant = "bird7"
	// VariantBird3 is the Bird heuristic restricted to c1-c3.
	VariantBird3 Variant = "bird3"
	// VariantJaroWinkler replaces the edit ratio with Jaro-Winkler similarity.
	VariantJaroWinkler Variant = "jaro-winkler"
	// VariantImproved is Bird-3 with name-aware generic prefix suppression.
	VariantImproved Variant = "improved"
)

// Condition column names.
const (
	ColC1  = "c1"
	ColC2  = "c2"
	ColC3  = "c3"
	ColC31 = "c3.1"
	ColC32 = "c3.2"
	ColC4  = "c4"
	ColC5  = "c5"
	ColC6  = "c6"
	ColC7  = "c7"
)

// DefaultImprovedNameCutoff is the name similarity under which a generic
// local part suppresses c2 in the improved variant.
const DefaultImprovedNameCutoff = 0.60

// ErrUnknownVariant is returned for a variant name that is not supported.
var ErrUnknownVariant = errors.New("unknown similarity variant")

// Variants returns every supported variant in a stable order.
func Variants() []Variant {
	return []Variant{VariantBird7, VariantBird3, VariantJaroWinkler, VariantImproved}
}

// ParseVariant resolves a variant name.
func ParseVariant(name string) (Variant, error) {
	for _, v := range Variants() {
		if string(v) == strings.ToLower(strings.TrimSpace(name)) {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, name)
}

// Columns returns the condition column names produced by the variant.
func (v Variant) Columns() []string {
	switch v {
	case VariantBird7:
		return []string{ColC1, ColC2, ColC31, ColC32, ColC4, ColC5, ColC6, ColC7}
	case VariantJaroWinkler:
		return []string{ColC1, ColC2, ColC3, ColC4}
	case VariantBird3, VariantImproved:
		return []string{ColC1, ColC2, ColC31, ColC32}
	default:
		return nil
	}
}

// Config carries the heuristic settings shared by all engines.
type Config struct {
	// GenericPrefixes are email local parts carrying no identity signal.
	GenericPrefixes map[string]struct{}
	// EmailCheck enables generic prefix suppression of c2.
	EmailCheck bool
	// ImprovedNameCutoff is the c1 value under which the improved variant
	// suppresses c2 for generic local parts.
	ImprovedNameCutoff float64
}

// NewConfig builds a Config with the default improved cutoff.
func NewConfig(prefixes []string, emailCheck bool) Config {
	set := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		set[p] = struct{}{}
	}

	return Config{
		GenericPrefixes:    set,
		EmailCheck:         emailCheck,
		ImprovedNameCutoff: DefaultImprovedNameCutoff,
	}
}

// IsGeneric reports whether local is a configured generic prefix.
func (c Config) IsGeneric(local string) bool {
	_, ok := c.GenericPrefixes[local]

	return ok
}

// anyGeneric reports whether either local part is generic.
func (c Config) anyGeneric(a, b identity.Identity) bool {
	return c.IsGeneric(a.LocalPart) || c.IsGeneric(b.LocalPart)
}

// Conditions is one variant-specific set of scores for a developer pair.
type Conditions interface {
	// Values renders the conditions in column order.
	Values() []string
	// Matches reports whether any condition predicate holds at threshold.
	Matches(threshold float64) bool
}

// Engine scores developer pairs. Implementations are safe for concurrent use.
type Engine interface {
	Variant() Variant
	Compare(a, b identity.Identity) Conditions
}

// New returns the engine for a variant.
func New(v Variant, cfg Config) (Engine, error) {
	switch v {
	case VariantBird7:
		return NewBird7(cfg), nil
	case VariantBird3:
		return NewBird3(cfg), nil
	case VariantJaroWinkler:
		return NewJaroWinkler(cfg), nil
	case VariantImproved:
		return NewImproved(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// FormatFloat renders a score the way Python's repr does for values in
// [0, 1]: shortest round-trip digits, with ".0" kept on integral values.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// FormatBool renders a boolean condition.
func FormatBool(b bool) string {
	if b {
		return "True"
	}

	return "False"
}
