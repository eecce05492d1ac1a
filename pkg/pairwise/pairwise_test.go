package pairwise_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/pairwise"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
)

func makeDevs(n int) []identity.DeveloperRecord {
	devs := make([]identity.DeveloperRecord, n)
	for i := range devs {
		devs[i] = identity.DeveloperRecord{
			Name:  fmt.Sprintf("Dev %d", i),
			Email: fmt.Sprintf("dev%d@example.com", i),
		}
	}

	return devs
}

func TestEvaluatePairCountAndOrder(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 2, 3, 7, 12} {
		devs := makeDevs(n)

		scores, err := pairwise.Evaluate(context.Background(), devs,
			similarity.NewBird3(similarity.NewConfig(nil, false)), pairwise.Options{})
		require.NoError(t, err)
		require.Len(t, scores, pairwise.PairCount(n))

		seen := make(map[[2]string]bool)
		k := 0

		for i := range n {
			for j := i + 1; j < n; j++ {
				assert.Equal(t, devs[i].Name, scores[k].Name1)
				assert.Equal(t, devs[j].Name, scores[k].Name2)
				assert.NotEqual(t, scores[k].Name1, scores[k].Name2)

				key := [2]string{scores[k].Name1, scores[k].Name2}
				assert.False(t, seen[key])
				seen[key] = true
				k++
			}
		}
	}
}

func TestEvaluateParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	devs := makeDevs(25)
	engine := similarity.NewBird7(similarity.NewConfig([]string{"dev3"}, true))

	seq, err := pairwise.Evaluate(context.Background(), devs, engine, pairwise.Options{Workers: 1})
	require.NoError(t, err)

	par, err := pairwise.Evaluate(context.Background(), devs, engine, pairwise.Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestEvaluateDuplicateRowsArePaired(t *testing.T) {
	t.Parallel()

	dev := identity.DeveloperRecord{Name: "John Doe", Email: "john.doe@example.com"}

	scores, err := pairwise.Evaluate(context.Background(), []identity.DeveloperRecord{dev, dev},
		similarity.NewBird3(similarity.NewConfig(nil, false)), pairwise.Options{})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, similarity.BirdScore{C1: 1, C2: 1, C31: 1, C32: 1}, scores[0].Conditions)
}

func TestEvaluateMalformedRecord(t *testing.T) {
	t.Parallel()

	devs := append(makeDevs(3), identity.DeveloperRecord{Name: "Broken", Email: "no-at-sign"})

	_, err := pairwise.Evaluate(context.Background(), devs,
		similarity.NewBird3(similarity.NewConfig(nil, false)), pairwise.Options{})
	require.ErrorIs(t, err, identity.ErrMalformedRecord)
}

func TestEvaluateCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{0, 4} {
		_, err := pairwise.Evaluate(ctx, makeDevs(5),
			similarity.NewBird3(similarity.NewConfig(nil, false)), pairwise.Options{Workers: workers})
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestPairScoreFields(t *testing.T) {
	t.Parallel()

	score := pairwise.PairScore{
		Name1: "John Doe", Email1: "john.doe@x.com", Name2: "Jane Doe", Email2: "jane.doe@x.com",
		Conditions: similarity.BirdScore{C1: 0.75, C2: 0.75, C31: 0.5, C32: 1},
	}

	assert.Equal(t, []string{
		"John Doe", "john.doe@x.com", "Jane Doe", "jane.doe@x.com", "0.75", "0.75", "0.5", "1.0",
	}, score.Fields())
}
