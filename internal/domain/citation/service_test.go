package citation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patscope/pkg/errors"
)

// fakeCitationRepo serves a fixed publication map and edge table, resolving
// both citation directions against the same edges so the service's symmetry
// can be checked.
type fakeCitationRepo struct {
	// appln id → publication ids
	pubs map[int64][]int64
	// all edges in the universe, keyed by nothing; direction queries scan it
	edges []Edge

	resolveErr  error
	forwardErr  error
	backwardErr error

	resolveCalls  int
	forwardCalls  int
	backwardCalls int
}

func (f *fakeCitationRepo) ResolvePublications(_ context.Context, applnIDs []int64) ([]PublicationRef, error) {
	f.resolveCalls++
	if f.resolveErr != nil {
		return nil, f.resolveErr
	}
	var out []PublicationRef
	for _, id := range applnIDs {
		for _, p := range f.pubs[id] {
			out = append(out, PublicationRef{PublnID: p, ApplnID: id, Authority: "EP"})
		}
	}
	return out, nil
}

func (f *fakeCitationRepo) ForwardCitations(_ context.Context, publnIDs []int64) ([]Edge, error) {
	f.forwardCalls++
	if f.forwardErr != nil {
		return nil, f.forwardErr
	}
	want := toSet(publnIDs)
	var out []Edge
	for _, e := range f.edges {
		if want[e.CitedPublnID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeCitationRepo) BackwardCitations(_ context.Context, publnIDs []int64) ([]Edge, error) {
	f.backwardCalls++
	if f.backwardErr != nil {
		return nil, f.backwardErr
	}
	want := toSet(publnIDs)
	var out []Edge
	for _, e := range f.edges {
		if want[e.CitingPublnID] {
			out = append(out, e)
		}
	}
	return out, nil
}

func toSet(ids []int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestFetcher_PublicationIndirection(t *testing.T) {
	repo := &fakeCitationRepo{
		pubs: map[int64][]int64{
			100: {1001, 1002}, // EP + US publication of the same application
			200: {2001},
		},
		edges: []Edge{
			{CitingPublnID: 9001, CitedPublnID: 1001, Origin: "SEA"}, // forward
			{CitingPublnID: 1002, CitedPublnID: 9002, Origin: "APP"}, // backward
			{CitingPublnID: 2001, CitedPublnID: 1001, Origin: "SEA"}, // both in-set
			{CitingPublnID: 9003, CitedPublnID: 9004},                // unrelated
		},
	}
	f := NewFetcher(repo, nil)

	set, err := f.Fetch(context.Background(), []int64{100, 200})
	require.NoError(t, err)

	require.Len(t, set.Publications, 3)
	assert.Len(t, set.Forward, 2, "edges cited into the dataset")
	assert.Len(t, set.Backward, 2, "edges cited out of the dataset")
	assert.Equal(t, int64(4), set.Total())
}

func TestFetcher_WithinSetEdgeAppearsInBothDirections(t *testing.T) {
	repo := &fakeCitationRepo{
		pubs: map[int64][]int64{100: {1001}, 200: {2001}},
		edges: []Edge{
			{CitingPublnID: 2001, CitedPublnID: 1001, Origin: "SEA"},
		},
	}
	f := NewFetcher(repo, nil)

	set, err := f.Fetch(context.Background(), []int64{100, 200})
	require.NoError(t, err)

	require.Len(t, set.Forward, 1)
	require.Len(t, set.Backward, 1)
	assert.Equal(t, set.Forward[0], set.Backward[0],
		"an edge between two dataset publications is the same edge seen from both sides")
}

func TestFetcher_EmptyInputShortCircuits(t *testing.T) {
	repo := &fakeCitationRepo{}
	f := NewFetcher(repo, nil)

	set, err := f.Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Zero(t, repo.resolveCalls, "no query for an empty dataset")
}

func TestFetcher_NoPublicationsShortCircuits(t *testing.T) {
	repo := &fakeCitationRepo{pubs: map[int64][]int64{}}
	f := NewFetcher(repo, nil)

	set, err := f.Fetch(context.Background(), []int64{100})
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
	assert.Equal(t, 1, repo.resolveCalls)
	assert.Zero(t, repo.forwardCalls, "citation queries skipped when nothing resolves")
	assert.Zero(t, repo.backwardCalls)
}

func TestFetcher_ErrorCodes(t *testing.T) {
	dbErr := errors.New(errors.CodeDBQueryError, "boom")

	t.Run("resolve failure", func(t *testing.T) {
		f := NewFetcher(&fakeCitationRepo{resolveErr: dbErr}, nil)
		_, err := f.Fetch(context.Background(), []int64{1})
		require.Error(t, err)
		assert.Equal(t, errors.CodePublicationResolveFailed, errors.GetCode(err))
	})

	t.Run("forward failure", func(t *testing.T) {
		f := NewFetcher(&fakeCitationRepo{
			pubs:       map[int64][]int64{1: {11}},
			forwardErr: dbErr,
		}, nil)
		_, err := f.Fetch(context.Background(), []int64{1})
		require.Error(t, err)
		assert.Equal(t, errors.CodeCitationQueryFailed, errors.GetCode(err))
	})

	t.Run("backward failure", func(t *testing.T) {
		f := NewFetcher(&fakeCitationRepo{
			pubs:        map[int64][]int64{1: {11}},
			backwardErr: dbErr,
		}, nil)
		_, err := f.Fetch(context.Background(), []int64{1})
		require.Error(t, err)
		assert.Equal(t, errors.CodeCitationQueryFailed, errors.GetCode(err))
	})
}
