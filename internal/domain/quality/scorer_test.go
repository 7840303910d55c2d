package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/pkg/errors"
)

func TestScore_RecordedDemoRunScores100(t *testing.T) {
	t.Parallel()

	// The fixed sample run: 1,977 applications, 1,900 families, 2,000
	// forward + 2,000 backward citations, 47 applicant countries.
	counts := Counts{
		Applications: 1977,
		Citations:    4000,
		Countries:    47,
		Families:     1900,
	}

	score, err := Score(counts, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, 100, score.Total)
	assert.Equal(t, 30, score.Applications.Points)
	assert.Equal(t, 30, score.Citations.Points)
	assert.Equal(t, 20, score.Countries.Points)
	assert.Equal(t, 20, score.Families.Points)
}

func TestScore_EmptyDatasetScoresZero(t *testing.T) {
	t.Parallel()

	score, err := Score(Counts{}, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, 0, score.Total)
	assert.Equal(t, 0, score.Applications.Points)
	assert.Equal(t, 0, score.Citations.Points)
	assert.Equal(t, 0, score.Countries.Points)
	assert.Equal(t, 0, score.Families.Points)
}

func TestScore_MonotoneInEachInput(t *testing.T) {
	t.Parallel()

	thresholds := DefaultThresholds()
	base := Counts{Applications: 50, Citations: 150, Countries: 8, Families: 80}

	baseScore, err := Score(base, thresholds)
	require.NoError(t, err)

	bump := []struct {
		name string
		next Counts
	}{
		{"applications", Counts{Applications: 5000, Citations: 150, Countries: 8, Families: 80}},
		{"citations", Counts{Applications: 50, Citations: 5000, Countries: 8, Families: 80}},
		{"countries", Counts{Applications: 50, Citations: 150, Countries: 60, Families: 80}},
		{"families", Counts{Applications: 50, Citations: 150, Countries: 8, Families: 5000}},
	}

	for _, tc := range bump {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bumped, err := Score(tc.next, thresholds)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, bumped.Total, baseScore.Total)
		})
	}
}

func TestScore_MonotoneAcrossLadderSweep(t *testing.T) {
	t.Parallel()

	thresholds := DefaultThresholds()
	prev := -1
	for _, v := range []int64{0, 1, 5, 10, 50, 100, 400, 500, 900, 1000, 100000} {
		score, err := Score(Counts{Applications: v}, thresholds)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score.Total, prev, "applications=%d", v)
		prev = score.Total
	}
}

func TestScore_SaturatesAtMaxScore(t *testing.T) {
	t.Parallel()

	huge := Counts{Applications: 1 << 40, Citations: 1 << 40, Countries: 1 << 40, Families: 1 << 40}
	score, err := Score(huge, DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, MaxScore, score.Total)
}

func TestScore_NegativeCountsRejected(t *testing.T) {
	t.Parallel()

	_, err := Score(Counts{Applications: -1}, DefaultThresholds())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeScoreInvalidCounts))
}

func TestScore_InvalidThresholdsRejected(t *testing.T) {
	t.Parallel()

	bad := DefaultThresholds()
	bad.Countries.Cap = 25 // caps no longer sum to 100

	_, err := Score(Counts{Applications: 1}, bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeScoreInvalidThresholds))
}

func TestScore_SubScoresCarryCounts(t *testing.T) {
	t.Parallel()

	counts := Counts{Applications: 12, Citations: 30, Countries: 4, Families: 11}
	score, err := Score(counts, DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, int64(12), score.Applications.Count)
	assert.Equal(t, int64(30), score.Citations.Count)
	assert.Equal(t, int64(4), score.Countries.Count)
	assert.Equal(t, int64(11), score.Families.Count)
	assert.Equal(t, 7+7+5+5, score.Total)
}
