// Package report aggregates reviewer labels of annotated candidate tables
// into true-positive statistics.
package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

// TrueLabel marks a confirmed duplicate.
const TrueLabel = 1

// Sentinel errors.
var (
	// ErrDivisionUndefined indicates a ratio with a zero denominator.
	ErrDivisionUndefined = errors.New("ratio undefined: division by zero")
	// ErrInvalidLabel indicates a label that is not an integer.
	ErrInvalidLabel = errors.New("label is not an integer")
)

// Summary holds the statistics of one annotated table. Ratios are nil when
// undefined; Err then says why.
type Summary struct {
	File           string
	Pairs          int
	TruePositives  int
	FalsePositives int
	TPPerFP        *float64
	Precision      *float64
	Err            error
}

// Summarize computes the statistics of an annotated table.
func Summarize(name string, t table.Table) *Summary {
	s := &Summary{File: name, Pairs: t.Len()}

	for i, row := range t.Rows {
		if len(row) == 0 {
			s.Err = fmt.Errorf("row %d: %w: empty row", i+1, ErrInvalidLabel)

			return s
		}

		v, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			s.Err = fmt.Errorf("row %d: %w: %q", i+1, ErrInvalidLabel, row[0])

			return s
		}

		if v == TrueLabel {
			s.TruePositives++
		}
	}

	s.FalsePositives = s.Pairs - s.TruePositives

	if s.Pairs > 0 {
		p := float64(s.TruePositives) / float64(s.Pairs)
		s.Precision = &p
	}

	if s.FalsePositives == 0 {
		s.Err = fmt.Errorf("TP/FP: %w", ErrDivisionUndefined)

		return s
	}

	r := float64(s.TruePositives) / float64(s.FalsePositives)
	s.TPPerFP = &r

	return s
}

// Collect summarizes every CSV file in dir in reverse lexicographic order of
// file name. Files that are empty or carry no label column yield a nil
// entry. Per-file problems are reported in Summary.Err.
func Collect(dir string) ([]*Summary, error) {
	paths, err := table.List(dir)
	if err != nil {
		return nil, err
	}

	slices.Reverse(paths)

	summaries := make([]*Summary, 0, len(paths))

	for _, path := range paths {
		name := filepath.Base(path)

		t, readErr := table.Read(path)

		switch {
		case errors.Is(readErr, table.ErrEmptyTable):
			summaries = append(summaries, nil)
		case readErr != nil:
			summaries = append(summaries, &Summary{File: name, Err: readErr})
		case !t.Annotated():
			summaries = append(summaries, nil)
		default:
			summaries = append(summaries, Summarize(name, t))
		}
	}

	return summaries, nil
}
