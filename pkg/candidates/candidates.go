// Package candidates turns scored developer pairs into reviewable candidate
// tables, one per similarity threshold.
package candidates

import (
	"slices"
	"strconv"

	"github.com/Sumatoshi-tech/devdup/pkg/pairwise"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

// UnknownLabel is the label of a row nobody has reviewed yet.
const UnknownLabel = "0"

// Identifying column names.
const (
	ColName1  = "name_1"
	ColEmail1 = "email_1"
	ColName2  = "name_2"
	ColEmail2 = "email_2"
)

// PairsHeader is the header of the unfiltered pair table of a variant.
func PairsHeader(v similarity.Variant) []string {
	return append([]string{ColName1, ColEmail1, ColName2, ColEmail2}, v.Columns()...)
}

// Header is the fixed candidate table header of a variant.
func Header(v similarity.Variant) []string {
	return append([]string{table.LabelColumn}, PairsHeader(v)...)
}

// ScoreTable renders every pair score without a label column.
func ScoreTable(v similarity.Variant, scores []pairwise.PairScore) table.Table {
	t := table.New(PairsHeader(v)...)
	t.Rows = make([][]string, 0, len(scores))

	for _, s := range scores {
		t.Rows = append(t.Rows, s.Fields())
	}

	return t
}

// Filter keeps the pairs for which any condition predicate holds at
// threshold and labels them UnknownLabel. Row order follows scores.
func Filter(v similarity.Variant, scores []pairwise.PairScore, threshold float64) table.Table {
	t := table.New(Header(v)...)

	for _, s := range scores {
		if !s.Conditions.Matches(threshold) {
			continue
		}

		t.Rows = append(t.Rows, append([]string{UnknownLabel}, s.Fields()...))
	}

	return t
}

// Known reports whether header is the candidate header of some variant.
func Known(header []string) (similarity.Variant, bool) {
	for _, v := range similarity.Variants() {
		if slices.Equal(header, Header(v)) {
			return v, true
		}
	}

	return "", false
}

// Naming derives output file names so that runs with different settings
// never overwrite each other.
type Naming struct {
	Variant     similarity.Variant
	EmailCheck  bool
	PrefixCount int
}

// Stem returns the variant-specific base name.
func (n Naming) Stem() string {
	switch n.Variant {
	case similarity.VariantBird3:
		return "devs_similarity_no_c4c7"
	case similarity.VariantImproved:
		return "devs_similarity_no_c4c7_improved"
	case similarity.VariantJaroWinkler:
		return "devs_jw_similarity"
	default:
		return "devs_similarity"
	}
}

func (n Naming) checked() bool {
	return n.EmailCheck || n.Variant == similarity.VariantImproved
}

func (n Naming) base() string {
	name := n.Stem()
	if n.checked() {
		name += "_email_check=" + strconv.Itoa(n.PrefixCount)
	}

	return name
}

// CandidateFile names the candidate table for a threshold.
func (n Naming) CandidateFile(threshold float64) string {
	return n.base() + "_t=" + similarity.FormatFloat(threshold) + ".csv"
}

// PairsFile names the unfiltered pair table.
func (n Naming) PairsFile(compress bool) string {
	name := n.base() + "_pairs.csv"
	if compress {
		name += table.CompressedExt
	}

	return name
}
