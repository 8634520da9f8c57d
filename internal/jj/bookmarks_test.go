package jj

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZipBookmarkLinesSortsNewestFirst(t *testing.T) {
	t.Parallel()

	colored := "old: aaaa\nbroken\nnew: bbbb\n"
	templated := "[old@|true|100]\n(conflicted)\n[new@|true|200]\n"

	lines := zipBookmarkLines(colored, templated)
	require.Len(t, lines, 3)
	require.Equal(t, "new: bbbb", lines[0].Text)
	require.Equal(t, "new", lines[0].Bookmark.Name)
	require.Equal(t, "old: aaaa", lines[1].Text)
	require.Equal(t, "broken", lines[2].Text)
	require.Nil(t, lines[2].Bookmark)
}

func TestBookmarkList(t *testing.T) {
	t.Parallel()

	f := newFakeExecutor().on(
		"[a@|true|1]\n[b@origin|true|3]\n[c@|true|2]\n",
		"bookmark", "list", "-T", `if(present, `+bookmarkTemplate+` ++ "\n", "")`, "--all-remotes",
	)
	bookmarks, err := NewService(f).BookmarkList(true)
	require.NoError(t, err)
	require.Equal(t, []string{"b@origin", "c", "a"}, []string{
		bookmarks[0].String(), bookmarks[1].String(), bookmarks[2].String(),
	})
}

func TestBookmarkCommands(t *testing.T) {
	t.Parallel()

	f := newFakeExecutor().
		on("", "bookmark", "create", "feat").
		on("", "bookmark", "create", "feat2", "-r", "4a1f").
		on("", "bookmark", "set", "feat", "-r", "4a1f", "--allow-backwards").
		on("", "bookmark", "rename", "feat", "feature").
		on("", "bookmark", "delete", "feature").
		on("", "bookmark", "forget", "feat2").
		on("", "bookmark", "track", "main@origin").
		on("", "bookmark", "untrack", "main@origin")
	s := NewService(f)

	b, err := s.BookmarkCreate("feat")
	require.NoError(t, err)
	require.Equal(t, Bookmark{Name: "feat", Present: true}, b)
	_, err = s.BookmarkCreateAt("feat2", "4a1f")
	require.NoError(t, err)
	require.NoError(t, s.BookmarkSet("feat", "4a1f"))
	require.NoError(t, s.BookmarkRename("feat", "feature"))
	require.NoError(t, s.BookmarkDelete("feature"))
	require.NoError(t, s.BookmarkForget("feat2"))
	remote := Bookmark{Name: "main", Remote: "origin"}
	require.NoError(t, s.BookmarkTrack(remote))
	require.NoError(t, s.BookmarkUntrack(remote))

	for _, c := range f.calls {
		require.True(t, c.Void)
	}

	_, err = s.BookmarkCreate("unknown")
	require.Error(t, err)
}

func TestGeneratedBookmarkName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "push-qpvuntsmwlqt", GeneratedBookmarkName("push-", Head{LogicalID: "qpvuntsmwlqtxyz"}))
	require.Equal(t, "me/kx", GeneratedBookmarkName("me/", Head{LogicalID: "kx"}))
}
