package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/feedql/internal/cursor"
	"github.com/roach88/feedql/internal/store"
	"github.com/roach88/feedql/internal/testutil"
)

const (
	alice = "@alice=.ed25519"
	bob   = "@bob=.ed25519"
	carol = "@carol=.ed25519"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st, _ := testutil.TempStore(t)
	return NewEngine(st, nil, nil), st
}

func f64(v float64) *float64 { return &v }

// post builds an index record for a root post at the given log sequence.
func post(seq int64, key, author string) store.IndexRecord {
	return store.IndexRecord{
		FlumeSeq:     seq,
		Key:          key,
		Seq:          1,
		ReceivedTime: float64(seq),
		AssertedTime: f64(float64(1_000_000 + seq)),
		Author:       author,
		ContentType:  "post",
		Content:      []byte(`{"type":"post","text":"t"}`),
	}
}

func mustIndex(t *testing.T, st *store.Store, recs ...store.IndexRecord) {
	t.Helper()
	for _, rec := range recs {
		require.NoError(t, st.IndexMessage(context.Background(), rec))
	}
}

func edgeKeys(edges []Edge) []string {
	keys := make([]string, len(edges))
	for i, e := range edges {
		keys[i] = e.Key
	}
	return keys
}

// seedThreads builds the shared thread fixture:
//
//	%ta  root by alice
//	%tb  root by bob, mentions carol twice
//	%tc  root by carol
//	     reply by bob in %ta
//	     reply by carol in %tc
func seedThreads(t *testing.T, st *store.Store) {
	rootB := post(100, "%tb=.sha256", bob)
	rootB.MentionAuthors = []string{carol, carol}

	replyA := post(300, "%ra=.sha256", bob)
	replyA.Root = "%ta=.sha256"

	replyC := post(400, "%rc=.sha256", carol)
	replyC.Root = "%tc=.sha256"

	mustIndex(t, st,
		post(0, "%ta=.sha256", alice),
		rootB,
		post(200, "%tc=.sha256", carol),
		replyA,
		replyC,
	)
}

func TestThreads_DefaultWindowNewestFirst(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	conn, err := e.Threads(context.Background(), ThreadsArgs{})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tc=.sha256", "%tb=.sha256", "%ta=.sha256"}, edgeKeys(conn.Edges))
}

func TestThreads_SelectorsAreUnioned(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	// Roots by alice: {ta}. Replies by carol: {tc}. Union, newest first.
	conn, err := e.Threads(context.Background(), ThreadsArgs{
		RootsAuthoredBy:      []string{alice},
		HasRepliesAuthoredBy: []string{carol},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tc=.sha256", "%ta=.sha256"}, edgeKeys(conn.Edges))
}

func TestThreads_MentionsSelectorIncludesRepliesByMentioned(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	// tb's root mentions carol; tc has a reply authored by carol.
	conn, err := e.Threads(context.Background(), ThreadsArgs{
		MentionsAuthors: []string{carol},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tc=.sha256", "%tb=.sha256"}, edgeKeys(conn.Edges))
}

func TestThreads_DuplicateMentionEdgesStayDistinct(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	conn, err := e.Threads(context.Background(), ThreadsArgs{
		MentionsAuthors: []string{carol},
		RootsAuthoredBy: []string{bob},
	})
	require.NoError(t, err)
	// tb matches through two mention edges plus the root selector, but
	// appears once.
	assert.Equal(t, []string{"%tc=.sha256", "%tb=.sha256"}, edgeKeys(conn.Edges))
}

func TestThreads_FollowedBySelector(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	contact := store.IndexRecord{
		FlumeSeq:     500,
		Key:          "%fc=.sha256",
		Seq:          2,
		ReceivedTime: 500,
		Author:       alice,
		ContentType:  "contact",
		Content:      []byte(`{"type":"contact"}`),
		Contact:      &store.ContactDelta{ContactAuthor: bob, State: 1},
	}
	mustIndex(t, st, contact)

	conn, err := e.Threads(context.Background(), ThreadsArgs{
		RootsAuthoredBySomeoneFollowedBy: []string{alice},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tb=.sha256"}, edgeKeys(conn.Edges))

	conn, err = e.Threads(context.Background(), ThreadsArgs{
		HasRepliesAuthoredBySomeoneFollowedBy: []string{alice},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%ta=.sha256"}, edgeKeys(conn.Edges))
}

func TestThreads_UnknownAuthorMatchesNothing(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	conn, err := e.Threads(context.Background(), ThreadsArgs{
		RootsAuthoredBy: []string{"@stranger=.ed25519"},
	})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.Nil(t, conn.PageInfo.StartCursor)
	assert.Nil(t, conn.PageInfo.EndCursor)
	assert.True(t, conn.PageInfo.HasNextPage)
	assert.True(t, conn.PageInfo.HasPrevPage)
}

func TestThreads_PrivacyScopes(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	private := post(600, "%tp=.sha256", alice)
	private.IsDecrypted = true
	mustIndex(t, st, private)

	pub, err := e.Threads(context.Background(), ThreadsArgs{Privacy: PrivacyPublic})
	require.NoError(t, err)
	assert.NotContains(t, edgeKeys(pub.Edges), "%tp=.sha256")

	priv, err := e.Threads(context.Background(), ThreadsArgs{Privacy: PrivacyPrivate})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tp=.sha256"}, edgeKeys(priv.Edges))

	all, err := e.Threads(context.Background(), ThreadsArgs{Privacy: PrivacyAll})
	require.NoError(t, err)
	assert.Len(t, all.Edges, 4)
}

func TestThreads_BackwardsPagination(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	first, err := e.Threads(context.Background(), ThreadsArgs{
		Page: PageArgs{Last: intPtr(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%tc=.sha256", "%tb=.sha256"}, edgeKeys(first.Edges))
	require.NotNil(t, first.PageInfo.StartCursor)
	require.NotNil(t, first.PageInfo.EndCursor)
	assert.Equal(t, cursor.Encode(200), *first.PageInfo.StartCursor)
	assert.Equal(t, cursor.Encode(100), *first.PageInfo.EndCursor)

	second, err := e.Threads(context.Background(), ThreadsArgs{
		Page: PageArgs{Before: first.PageInfo.EndCursor, Last: intPtr(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"%ta=.sha256"}, edgeKeys(second.Edges))
}

func TestThreads_AssertedOrdering(t *testing.T) {
	e, st := newTestEngine(t)

	// Asserted timestamps are inverted relative to arrival order.
	a := post(0, "%a=.sha256", alice)
	a.AssertedTime = f64(3000)
	b := post(100, "%b=.sha256", bob)
	b.AssertedTime = f64(1000)
	c := post(200, "%c=.sha256", carol)
	c.AssertedTime = f64(2000)
	mustIndex(t, st, a, b, c)

	conn, err := e.Threads(context.Background(), ThreadsArgs{OrderBy: OrderAsserted})
	require.NoError(t, err)
	assert.Equal(t, []string{"%a=.sha256", "%c=.sha256", "%b=.sha256"}, edgeKeys(conn.Edges))
	// Cursors track the asserted timestamp, not the log sequence.
	assert.Equal(t, cursor.Encode(3000), conn.Edges[0].Cursor)
}

func TestThreads_InvalidPagination(t *testing.T) {
	e, st := newTestEngine(t)
	seedThreads(t, st)

	before := cursor.Encode(5)
	after := cursor.Encode(1)
	_, err := e.Threads(context.Background(), ThreadsArgs{
		Page: PageArgs{Before: &before, After: &after},
	})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}
