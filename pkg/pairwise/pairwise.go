// Package pairwise scores every unordered pair of developer records with a
// similarity engine.
package pairwise

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
)

// PairScore is the scored comparison of two input records. Names and emails
// are the original, unnormalized values.
type PairScore struct {
	Name1      string
	Email1     string
	Name2      string
	Email2     string
	Conditions similarity.Conditions
}

// Fields returns the identifying columns followed by the condition values.
func (p PairScore) Fields() []string {
	return append([]string{p.Name1, p.Email1, p.Name2, p.Email2}, p.Conditions.Values()...)
}

// Options tunes the evaluation.
type Options struct {
	// Workers is the number of goroutines scoring rows of pairs. Values
	// below 2 score sequentially.
	Workers int
}

// PairCount returns n*(n-1)/2.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}

	return n * (n - 1) / 2
}

// rowOffset is the index of pair (i, i+1) in the canonical ordering.
func rowOffset(i, n int) int {
	return i * (2*n - i - 1) / 2
}

// Evaluate normalizes devs and scores each pair (i, j), i < j, in input order:
// outer index ascending, inner index ascending. Records are compared by
// position, so duplicate rows are still paired. A malformed record aborts the
// evaluation.
func Evaluate(
	ctx context.Context, devs []identity.DeveloperRecord, engine similarity.Engine, opts Options,
) ([]PairScore, error) {
	ids, err := identity.NormalizeAll(devs)
	if err != nil {
		return nil, fmt.Errorf("normalize developers: %w", err)
	}

	n := len(devs)
	scores := make([]PairScore, PairCount(n))

	scoreRow := func(i int) {
		base := rowOffset(i, n)
		for j := i + 1; j < n; j++ {
			scores[base+j-i-1] = PairScore{
				Name1:      devs[i].Name,
				Email1:     devs[i].Email,
				Name2:      devs[j].Name,
				Email2:     devs[j].Email,
				Conditions: engine.Compare(ids[i], ids[j]),
			}
		}
	}

	if opts.Workers < 2 {
		for i := range n {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("evaluate pairs: %w", ctxErr)
			}

			scoreRow(i)
		}

		return scores, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)

	for i := range n {
		group.Go(func() error {
			if ctxErr := groupCtx.Err(); ctxErr != nil {
				return ctxErr
			}

			// Each row writes a disjoint range of scores.
			scoreRow(i)

			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, fmt.Errorf("evaluate pairs: %w", err)
	}

	return scores, nil
}
