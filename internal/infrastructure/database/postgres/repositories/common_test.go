package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithQueryTimeout_SetsDeadline(t *testing.T) {
	ctx, cancel := withQueryTimeout(context.Background(), time.Minute)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestWithQueryTimeout_ZeroLeavesContextUntouched(t *testing.T) {
	parent := context.Background()
	ctx, cancel := withQueryTimeout(parent, 0)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
	assert.Equal(t, parent, ctx)
}

// Empty-input short-circuits must not touch the pool; a nil pool proves it —
// any query attempt would panic.

func TestApplicationRepository_EmptyInputsSkipQuery(t *testing.T) {
	r := NewApplicationRepository(nil, 0, nil)

	apps, err := r.FindByKeywords(context.Background(), nil, 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, apps)

	apps, err = r.FindByClassPrefixes(context.Background(), nil, 0, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestCitationRepository_EmptyInputsSkipQuery(t *testing.T) {
	r := NewCitationRepository(nil, 0, nil)

	pubs, err := r.ResolvePublications(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pubs)

	edges, err := r.ForwardCitations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, edges)

	edges, err = r.BackwardCitations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestApplicantRepository_EmptyInputSkipsQuery(t *testing.T) {
	r := NewApplicantRepository(nil, 0, nil)

	rows, err := r.PrimaryApplicantCountries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
