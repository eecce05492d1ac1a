// Package annotation carries human true/false-positive labels from an older
// candidate table over to a newer, narrower one.
package annotation

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

// Sentinel errors.
var (
	// ErrLength indicates a candidate table longer than the annotated table.
	ErrLength = errors.New("candidate table is longer than the annotated table")
	// ErrUnknownRow indicates a candidate row missing from the annotated table.
	ErrUnknownRow = errors.New("candidate row not found in annotated table")
)

// LengthError reports the row counts of a rejected merge.
type LengthError struct {
	Annotated int
	Candidate int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%v: %d > %d rows", ErrLength, e.Candidate, e.Annotated)
}

// Unwrap returns ErrLength.
func (e *LengthError) Unwrap() error { return ErrLength }

// UnknownRowError describes the first candidate row that has no annotated
// counterpart.
type UnknownRowError struct {
	// Index is the zero-based data row index in the candidate table.
	Index int
	// Row is the full candidate row, label included.
	Row []string
	// Nearest is the annotated row closest to Row by edit distance, if any.
	Nearest []string
	// Diff is a character diff from Nearest to Row.
	Diff string
}

func (e *UnknownRowError) Error() string {
	msg := fmt.Sprintf("%v: row %d %s", ErrUnknownRow, e.Index, strings.Join(e.Row, ","))
	if e.Nearest != nil {
		msg += "; closest annotated row differs: " + e.Diff
	}

	return msg
}

// Unwrap returns ErrUnknownRow.
func (e *UnknownRowError) Unwrap() error { return ErrUnknownRow }

// Merge returns a copy of candidate in which every row is replaced by the
// annotated row with the same non-label columns. When the annotated table
// holds duplicates, the last one wins. Both tables must be annotated.
func Merge(annotated, candidate table.Table) (table.Table, error) {
	if !annotated.Annotated() {
		return table.Table{}, fmt.Errorf("annotated table: %w", table.ErrNotAnnotated)
	}

	if !candidate.Annotated() {
		return table.Table{}, fmt.Errorf("candidate table: %w", table.ErrNotAnnotated)
	}

	if candidate.Len() > annotated.Len() {
		return table.Table{}, &LengthError{Annotated: annotated.Len(), Candidate: candidate.Len()}
	}

	index := make(map[string]int, annotated.Len())
	for i, row := range annotated.Rows {
		index[rowKey(body(row))] = i
	}

	merged := table.New(candidate.Header...)
	merged.Rows = make([][]string, 0, candidate.Len())

	for i, row := range candidate.Rows {
		j, ok := index[rowKey(body(row))]
		if !ok {
			return table.Table{}, newUnknownRowError(i, row, annotated)
		}

		merged.Rows = append(merged.Rows, slices.Clone(annotated.Rows[j]))
	}

	return merged, nil
}

// Relabeled counts rows whose label differs between two tables of equal
// length, as produced by Merge.
func Relabeled(before, after table.Table) int {
	n := 0

	for i := range min(before.Len(), after.Len()) {
		if label(before.Rows[i]) != label(after.Rows[i]) {
			n++
		}
	}

	return n
}

func label(row []string) string {
	if len(row) == 0 {
		return ""
	}

	return row[0]
}

func body(row []string) []string {
	if len(row) == 0 {
		return nil
	}

	return row[1:]
}

// rowKey encodes fields unambiguously, so that fields containing the
// separator cannot collide.
func rowKey(fields []string) string {
	var sb strings.Builder

	for _, f := range fields {
		sb.WriteString(strconv.Quote(f))
		sb.WriteByte(',')
	}

	return sb.String()
}
