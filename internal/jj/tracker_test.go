package jj

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/jjk-go/internal/jj/backend"
)

func TestResolveLatestUnchangedHead(t *testing.T) {
	t.Parallel()

	h := Head{LogicalID: "kxyz", ContentID: "c1"}
	f := newFakeExecutor().on(headLines(h), headsForArgs("kxyz")...)

	got, err := NewTracker(f).ResolveLatest(h)
	require.NoError(t, err)
	require.Equal(t, h, got)

	again, err := NewTracker(f).ResolveLatest(got)
	require.NoError(t, err)
	require.Equal(t, got, again)
	// No evolution lookup is needed when the head is still live.
	require.Len(t, f.callArgs(), 2)
}

func TestResolveLatestFollowsRewrite(t *testing.T) {
	t.Parallel()

	old := Head{LogicalID: "kxyz", ContentID: "c1"}
	rewritten := Head{LogicalID: "kxyz", ContentID: "c2"}
	f := newFakeExecutor().
		on(headLines(rewritten), headsForArgs("kxyz")...).
		on("c2\nc1\n", evologArgs("c2")...)

	got, err := NewTracker(f).ResolveLatest(old)
	require.NoError(t, err)
	require.Equal(t, old.LogicalID, got.LogicalID)
	require.Equal(t, ContentID("c2"), got.ContentID)
}

func TestResolveLatestDivergentHeadsResolveIndependently(t *testing.T) {
	t.Parallel()

	a := Head{LogicalID: "kxyz", ContentID: "a1", Divergent: true}
	b := Head{LogicalID: "kxyz", ContentID: "b1", Divergent: true}
	a2 := Head{LogicalID: "kxyz", ContentID: "a2", Divergent: true}
	b2 := Head{LogicalID: "kxyz", ContentID: "b2", Divergent: true}
	f := newFakeExecutor().
		on(headLines(a2, b2), headsForArgs("kxyz")...).
		on("a2\na1\nroot0\n", evologArgs("a2")...).
		on("b2\nb1\nroot0\n", evologArgs("b2")...)
	tracker := NewTracker(f)

	gotA, err := tracker.ResolveLatest(a)
	require.NoError(t, err)
	require.Equal(t, a2, gotA)

	gotB, err := tracker.ResolveLatest(b)
	require.NoError(t, err)
	require.Equal(t, b2, gotB)
}

func TestResolveLatestSharedAncestorPicksFirstCandidate(t *testing.T) {
	t.Parallel()

	old := Head{LogicalID: "kxyz", ContentID: "root0"}
	a2 := Head{LogicalID: "kxyz", ContentID: "a2", Divergent: true}
	b2 := Head{LogicalID: "kxyz", ContentID: "b2", Divergent: true}
	f := newFakeExecutor().
		on(headLines(a2, b2), headsForArgs("kxyz")...).
		on("a2\nroot0\n", evologArgs("a2")...).
		on("b2\nroot0\n", evologArgs("b2")...)

	got, err := NewTracker(f).ResolveLatest(old)
	require.NoError(t, err)
	require.Equal(t, a2, got)
}

func TestResolveLatestAbandoned(t *testing.T) {
	t.Parallel()

	old := Head{LogicalID: "kxyz", ContentID: "c1"}

	tests := []struct {
		name       string
		exec       *fakeExecutor
		candidates int
	}{
		{
			name: "no live heads",
			exec: newFakeExecutor().on("", headsForArgs("kxyz")...),
		},
		{
			name: "unrelated head",
			exec: newFakeExecutor().
				on(headLines(Head{LogicalID: "kxyz", ContentID: "z9"}), headsForArgs("kxyz")...).
				on("z9\n", evologArgs("z9")...),
			candidates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewTracker(tt.exec).ResolveLatest(old)
			var idErr *IdentityError
			require.ErrorAs(t, err, &idErr)
			require.Equal(t, old, idErr.Old)
			require.Len(t, idErr.Candidates, tt.candidates)
			require.Contains(t, err.Error(), "kxyz c1")
		})
	}
}

func TestResolveLatestHeadsQueryFailure(t *testing.T) {
	t.Parallel()

	old := Head{LogicalID: "kxyz", ContentID: "c1"}
	f := newFakeExecutor().fail(&backend.CommandError{Kind: backend.KindStatus, Stderr: "Error: store locked", ExitCode: 1}, headsForArgs("kxyz")...)

	_, err := NewTracker(f).ResolveLatest(old)
	var idErr *IdentityError
	require.False(t, errors.As(err, &idErr))
	var cmdErr *backend.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Contains(t, err.Error(), "kxyz c1")
	require.NotContains(t, err.Error(), "no live revisions")
}

func TestResolveLatestEvologFailure(t *testing.T) {
	t.Parallel()

	old := Head{LogicalID: "kxyz", ContentID: "c1"}
	f := newFakeExecutor().
		on(headLines(Head{LogicalID: "kxyz", ContentID: "c2"}), headsForArgs("kxyz")...).
		fail(errFake, evologArgs("c2")...)

	_, err := NewTracker(f).ResolveLatest(old)
	require.True(t, errors.Is(err, errFake))
}

func TestTrackerSingleHeadQueries(t *testing.T) {
	t.Parallel()

	cur := Head{LogicalID: "qpvu", ContentID: "aaaa"}
	parent := Head{LogicalID: "zzzz", ContentID: "0000", Immutable: true}
	mainHead := Head{LogicalID: "mmmm", ContentID: "bbbb"}
	f := newFakeExecutor().
		on(headLines(cur), singleHeadArgs("@")...).
		on(headLines(parent), singleHeadArgs("aaaa-")...).
		on(headLines(mainHead), singleHeadArgs("main@origin")...).
		on("true\n", "log", "--no-graph", "--template", "immutable", "-r", "0000", "--limit", "1").
		on("maybe\n", "log", "--no-graph", "--template", "immutable", "-r", "weird", "--limit", "1")
	tracker := NewTracker(f)

	got, err := tracker.Current()
	require.NoError(t, err)
	require.Equal(t, cur, got)

	got, err = tracker.Parent("aaaa")
	require.NoError(t, err)
	require.Equal(t, parent, got)

	got, err = tracker.HeadForBookmark(Bookmark{Name: "main", Remote: "origin"})
	require.NoError(t, err)
	require.Equal(t, mainHead, got)

	immutable, err := tracker.IsImmutable("0000")
	require.NoError(t, err)
	require.True(t, immutable)

	_, err = tracker.IsImmutable("weird")
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	_, err = tracker.Current()
	require.NoError(t, err)
}

func TestTrackerSingleHeadWrapsCommandError(t *testing.T) {
	t.Parallel()

	f := newFakeExecutor()
	_, err := NewTracker(f).Current()
	require.ErrorContains(t, err, "failed getting current head")
	var cmdErr *backend.CommandError
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, backend.KindStatus, cmdErr.Kind)
}

func TestEvolutionSkipsBlankLines(t *testing.T) {
	t.Parallel()

	f := newFakeExecutor().on("c3\n\nc2\r\nc1\n", evologArgs("c3")...)
	ids, err := NewTracker(f).Evolution("c3")
	require.NoError(t, err)
	require.Equal(t, []ContentID{"c3", "c2", "c1"}, ids)
}
