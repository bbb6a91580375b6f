package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func postRecord(seq int64, key, author string) IndexRecord {
	return IndexRecord{
		FlumeSeq:     seq,
		Key:          key,
		Seq:          1,
		ReceivedTime: 1_500_000_000_000,
		AssertedTime: float64Ptr(1_500_000_000_000),
		Author:       author,
		ContentType:  "post",
		Content:      []byte(`{"type":"post","text":"hi"}`),
	}
}

func TestIndexMessage_RootAndReplyDerivation(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	root := postRecord(0, "%root=.sha256", "@alice=.ed25519")
	require.NoError(t, st.IndexMessage(ctx, root))

	reply := postRecord(100, "%reply=.sha256", "@bob=.ed25519")
	reply.Root = "%root=.sha256"
	require.NoError(t, st.IndexMessage(ctx, reply))

	var roots, replies int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM root_posts`).Scan(&roots))
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reply_posts`).Scan(&replies))
	assert.Equal(t, 1, roots)
	assert.Equal(t, 1, replies)

	// The reply row points at the root's key id.
	rootKeyID, ok, err := st.KeyID(ctx, "%root=.sha256")
	require.NoError(t, err)
	require.True(t, ok)
	var linked int64
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT root_post_id FROM reply_posts`).Scan(&linked))
	assert.Equal(t, rootKeyID, linked)
}

func TestIndexMessage_IdempotentPerSequence(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	rec := postRecord(0, "%root=.sha256", "@alice=.ed25519")
	require.NoError(t, st.IndexMessage(ctx, rec))
	require.NoError(t, st.IndexMessage(ctx, rec))

	var messages, roots int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages))
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM root_posts`).Scan(&roots))
	assert.Equal(t, 1, messages)
	assert.Equal(t, 1, roots)
}

func TestIndexMessage_ForwardReferenceResolvesToSameID(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	// The reply arrives before its root: the root key is minted with no
	// message behind it.
	reply := postRecord(0, "%reply=.sha256", "@bob=.ed25519")
	reply.Root = "%future=.sha256"
	require.NoError(t, st.IndexMessage(ctx, reply))

	mintedID, ok, err := st.KeyID(ctx, "%future=.sha256")
	require.NoError(t, err)
	require.True(t, ok)

	var msgCount int
	require.NoError(t, st.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE key_id = ?`, mintedID).Scan(&msgCount))
	assert.Equal(t, 0, msgCount)

	// When the root arrives it resolves to the minted id.
	root := postRecord(100, "%future=.sha256", "@alice=.ed25519")
	require.NoError(t, st.IndexMessage(ctx, root))

	resolvedID, ok, err := st.KeyID(ctx, "%future=.sha256")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, mintedID, resolvedID)
}

func TestIndexMessage_MentionsEdges(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	rec := postRecord(0, "%post=.sha256", "@alice=.ed25519")
	rec.MentionAuthors = []string{"@bob=.ed25519", "@carol=.ed25519"}
	require.NoError(t, st.IndexMessage(ctx, rec))

	var edges int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mentions`).Scan(&edges))
	assert.Equal(t, 2, edges)

	// Mentioned authors are registered even before publishing anything.
	ids, err := st.AuthorIDs(ctx, []string{"@bob=.ed25519", "@carol=.ed25519"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestIndexMessage_ContactStateUpserts(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	follow := IndexRecord{
		FlumeSeq:     0,
		Key:          "%c1=.sha256",
		Seq:          1,
		ReceivedTime: 1,
		Author:       "@alice=.ed25519",
		ContentType:  "contact",
		Content:      []byte(`{"type":"contact"}`),
		Contact:      &ContactDelta{ContactAuthor: "@bob=.ed25519", State: 1},
	}
	require.NoError(t, st.IndexMessage(ctx, follow))

	followed, err := st.FollowedAuthorIDs(ctx, []string{"@alice=.ed25519"})
	require.NoError(t, err)
	assert.Len(t, followed, 1)

	// A later contact message replaces the edge state in place.
	unfollow := follow
	unfollow.FlumeSeq = 100
	unfollow.Key = "%c2=.sha256"
	unfollow.Contact = &ContactDelta{ContactAuthor: "@bob=.ed25519", State: 0}
	require.NoError(t, st.IndexMessage(ctx, unfollow))

	followed, err = st.FollowedAuthorIDs(ctx, []string{"@alice=.ed25519"})
	require.NoError(t, err)
	assert.Empty(t, followed)

	var edges int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&edges))
	assert.Equal(t, 1, edges)
}

func TestIndexMessage_NonPostContentSkipsPostViews(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	rec := IndexRecord{
		FlumeSeq:     0,
		Key:          "%about=.sha256",
		Seq:          1,
		ReceivedTime: 1,
		Author:       "@alice=.ed25519",
		ContentType:  "about",
		Content:      []byte(`{"type":"about"}`),
	}
	require.NoError(t, st.IndexMessage(ctx, rec))

	var roots int
	require.NoError(t, st.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM root_posts`).Scan(&roots))
	assert.Equal(t, 0, roots)
}

func TestMaxSeq(t *testing.T) {
	st, _ := tempStore(t)
	ctx := context.Background()

	_, ok, err := st.MaxSeq(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.IndexMessage(ctx, postRecord(0, "%a=.sha256", "@a=.ed25519")))
	require.NoError(t, st.IndexMessage(ctx, postRecord(250, "%b=.sha256", "@a=.ed25519")))

	seq, ok, err := st.MaxSeq(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(250), seq)
}
