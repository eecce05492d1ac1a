package candidates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdup/pkg/candidates"
	"github.com/Sumatoshi-tech/devdup/pkg/identity"
	"github.com/Sumatoshi-tech/devdup/pkg/pairwise"
	"github.com/Sumatoshi-tech/devdup/pkg/similarity"
	"github.com/Sumatoshi-tech/devdup/pkg/table"
)

var sampleDevs = []identity.DeveloperRecord{
	{Name: "John Doe", Email: "john.doe@example.com"},
	{Name: "Jane Doe", Email: "jane.doe@example.com"},
	{Name: "J. Doe", Email: "jdoe@example.com"},
	{Name: "Mark Twain", Email: "github@example.com"},
	{Name: "Mark Twain", Email: "mark@twain.org"},
	{Name: "Samuel Clemens", Email: "github@example.org"},
}

func score(t *testing.T, v similarity.Variant, devs []identity.DeveloperRecord) []pairwise.PairScore {
	t.Helper()

	engine, err := similarity.New(v, similarity.NewConfig([]string{"github"}, true))
	require.NoError(t, err)

	scores, err := pairwise.Evaluate(context.Background(), devs, engine, pairwise.Options{})
	require.NoError(t, err)

	return scores
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"true_pos", "name_1", "email_1", "name_2", "email_2",
		"c1", "c2", "c3.1", "c3.2", "c4", "c5", "c6", "c7",
	}, candidates.Header(similarity.VariantBird7))
	assert.Equal(t, []string{
		"true_pos", "name_1", "email_1", "name_2", "email_2", "c1", "c2", "c3.1", "c3.2",
	}, candidates.Header(similarity.VariantBird3))
	assert.Equal(t, candidates.Header(similarity.VariantBird3), candidates.Header(similarity.VariantImproved))
	assert.Equal(t, []string{
		"true_pos", "name_1", "email_1", "name_2", "email_2", "c1", "c2", "c3", "c4",
	}, candidates.Header(similarity.VariantJaroWinkler))

	v, ok := candidates.Known(candidates.Header(similarity.VariantJaroWinkler))
	assert.True(t, ok)
	assert.Equal(t, similarity.VariantJaroWinkler, v)

	_, ok = candidates.Known([]string{"name", "email"})
	assert.False(t, ok)
}

func TestEndToEndJohnJane(t *testing.T) {
	t.Parallel()

	devs := []identity.DeveloperRecord{
		{Name: "John Doe", Email: "john.doe@x.com"},
		{Name: "Jane Doe", Email: "jane.doe@x.com"},
	}

	engine := similarity.NewBird3(similarity.NewConfig(nil, false))
	scores, err := pairwise.Evaluate(context.Background(), devs, engine, pairwise.Options{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	got, ok := scores[0].Conditions.(similarity.BirdScore)
	require.True(t, ok)
	assert.InDelta(t, 0.75, got.C1, 1e-12)
	assert.InDelta(t, 0.75, got.C2, 1e-12)
	assert.InDelta(t, 0.5, got.C31, 1e-12)
	assert.InDelta(t, 1.0, got.C32, 1e-12)

	// c1 = c2 = 0.75 and c3.1 = 0.5 all miss 0.8, so the pair is dropped.
	at08 := candidates.Filter(similarity.VariantBird3, scores, 0.8)
	assert.Equal(t, 0, at08.Len())
	assert.Equal(t, candidates.Header(similarity.VariantBird3), at08.Header)

	at05 := candidates.Filter(similarity.VariantBird3, scores, 0.5)
	require.Equal(t, 1, at05.Len())
	assert.Equal(t, []string{
		"0", "John Doe", "john.doe@x.com", "Jane Doe", "jane.doe@x.com", "0.75", "0.75", "0.5", "1.0",
	}, at05.Rows[0])
}

func TestFilterMonotonic(t *testing.T) {
	t.Parallel()

	for _, v := range similarity.Variants() {
		scores := score(t, v, sampleDevs)
		prev := len(scores) + 1

		for _, threshold := range []float64{0, 0.3, 0.5, 0.7, 0.8, 0.9, 0.99, 1} {
			got := candidates.Filter(v, scores, threshold)
			assert.LessOrEqual(t, got.Len(), prev, "%s at %v", v, threshold)
			prev = got.Len()

			for _, row := range got.Rows {
				assert.Equal(t, candidates.UnknownLabel, row[0])
				assert.Len(t, row, len(candidates.Header(v)))
			}
		}

		assert.Equal(t, len(scores), candidates.Filter(v, scores, 0).Len())
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	t.Parallel()

	scores := score(t, similarity.VariantBird7, sampleDevs)
	filtered := candidates.Filter(similarity.VariantBird7, scores, 0.9)

	all := candidates.ScoreTable(similarity.VariantBird7, scores)
	pos := -1

	for _, row := range filtered.Rows {
		found := -1

		for i := pos + 1; i < all.Len(); i++ {
			if assert.ObjectsAreEqual(all.Rows[i], row[1:]) {
				found = i

				break
			}
		}

		require.Greater(t, found, pos, "row %v out of order", row)
		pos = found
	}
}

func TestFilterBooleanConditionsIgnoreThreshold(t *testing.T) {
	t.Parallel()

	devs := []identity.DeveloperRecord{
		{Name: "John Doe", Email: "john@a.org"},
		{Name: "Xavier Quill", Email: "jdoe@b.org"},
	}

	scores := score(t, similarity.VariantBird7, devs)
	got := candidates.Filter(similarity.VariantBird7, scores, 1)
	require.Equal(t, 1, got.Len())
	// c4: "j" and "doe" both occur in "jdoe".
	assert.Equal(t, "True", got.Rows[0][9])
}

func TestScoreTable(t *testing.T) {
	t.Parallel()

	scores := score(t, similarity.VariantJaroWinkler, sampleDevs)
	all := candidates.ScoreTable(similarity.VariantJaroWinkler, scores)

	assert.Equal(t, candidates.PairsHeader(similarity.VariantJaroWinkler), all.Header)
	assert.Equal(t, pairwise.PairCount(len(sampleDevs)), all.Len())
	assert.NotEqual(t, table.LabelColumn, all.Header[0])
}

func TestNaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		naming    candidates.Naming
		threshold float64
		want      string
		pairs     string
	}{
		{
			naming:    candidates.Naming{Variant: similarity.VariantBird7},
			threshold: 0.9,
			want:      "devs_similarity_t=0.9.csv",
			pairs:     "devs_similarity_pairs.csv",
		},
		{
			naming:    candidates.Naming{Variant: similarity.VariantBird7, EmailCheck: true, PrefixCount: 6},
			threshold: 0.99,
			want:      "devs_similarity_email_check=6_t=0.99.csv",
			pairs:     "devs_similarity_email_check=6_pairs.csv",
		},
		{
			naming:    candidates.Naming{Variant: similarity.VariantBird3, EmailCheck: true, PrefixCount: 1},
			threshold: 0.8,
			want:      "devs_similarity_no_c4c7_email_check=1_t=0.8.csv",
			pairs:     "devs_similarity_no_c4c7_email_check=1_pairs.csv",
		},
		{
			naming:    candidates.Naming{Variant: similarity.VariantImproved, PrefixCount: 4},
			threshold: 1,
			want:      "devs_similarity_no_c4c7_improved_email_check=4_t=1.0.csv",
			pairs:     "devs_similarity_no_c4c7_improved_email_check=4_pairs.csv",
		},
		{
			naming:    candidates.Naming{Variant: similarity.VariantJaroWinkler},
			threshold: 0.85,
			want:      "devs_jw_similarity_t=0.85.csv",
			pairs:     "devs_jw_similarity_pairs.csv",
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.naming.CandidateFile(tt.threshold))
		assert.Equal(t, tt.pairs, tt.naming.PairsFile(false))
		assert.Equal(t, tt.pairs+table.CompressedExt, tt.naming.PairsFile(true))
	}
}
