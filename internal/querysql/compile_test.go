package querysql

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// threadSearchSelect mirrors the shape the thread search compiles: an OR
// group of selectors and a trailing AND group for privacy plus the keyset
// window.
func threadSearchSelect() Select {
	selectors := &Group{Op: OpOr}
	selectors.Add(In("mentions.link_to_author_id", []int64{7}))
	selectors.Add(InSubquery(
		"root_posts.key_id",
		"SELECT root_post_id FROM reply_posts WHERE author_id IN (?)",
		int64(7),
	))

	trailing := &Group{Op: OpAnd}
	trailing.Add(Cmp("messages.is_decrypted", "=", 0))
	trailing.Add(Cmp("root_posts.flume_seq", "<", int64(42)))

	return Select{
		Columns: []string{
			"root_posts.key_id",
			"keys.key",
			"root_posts.flume_seq",
			"root_posts.asserted_timestamp",
		},
		From: "root_posts",
		Joins: []Join{
			{Kind: "JOIN", Table: "keys", On: "keys.id = root_posts.key_id"},
			{Kind: "JOIN", Table: "messages", On: "root_posts.key_id = messages.key_id"},
			{Kind: "LEFT JOIN", Table: "mentions", On: "mentions.link_from_key_id = messages.key_id"},
		},
		Where:    &Group{Op: OpAnd, Groups: []*Group{selectors, trailing}},
		Distinct: true,
		Order:    Order{Expr: "root_posts.flume_seq", Desc: true},
		Limit:    2,
	}
}

func TestCompile_ThreadSearchShape(t *testing.T) {
	sqlText, params, err := Compile(threadSearchSelect())
	require.NoError(t, err)

	assert.Equal(t, []any{int64(7), int64(7), 0, int64(42), 2}, params)
	golden(t).Assert(t, "thread_search", []byte(sqlText+"\n"))
}

func TestCompile_PostSearchShape(t *testing.T) {
	where := &Group{Op: OpAnd}
	where.Add(Cmp("messages.content_type", "=", "post"))
	where.Add(In("messages.key_id", []int64{3, 5}))
	where.Add(Cmp("messages.is_decrypted", "=", 0))
	where.Add(In("messages.author_id", []int64{9}))
	where.Add(Cmp("messages.flume_seq", ">", int64(0)))

	sqlText, params, err := Compile(Select{
		Columns: []string{
			"messages.key_id",
			"keys.key",
			"messages.flume_seq",
			"CAST(messages.asserted_time AS INTEGER)",
		},
		From: "messages",
		Joins: []Join{
			{Kind: "JOIN", Table: "keys", On: "keys.id = messages.key_id"},
			{Kind: "LEFT JOIN", Table: "mentions", On: "mentions.link_from_key_id = messages.key_id"},
		},
		Where:    where,
		Distinct: true,
		Order:    Order{Expr: "messages.flume_seq", Desc: false},
		Limit:    20,
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"post", int64(3), int64(5), 0, int64(9), int64(0), 20}, params)
	golden(t).Assert(t, "post_search", []byte(sqlText+"\n"))
}

func TestCompile_NoWhereWhenGroupEmpty(t *testing.T) {
	sqlText, params, err := Compile(Select{
		Columns: []string{"messages.key_id"},
		From:    "messages",
		Where:   &Group{Op: OpAnd, Groups: []*Group{{Op: OpOr}}},
		Order:   Order{Expr: "messages.flume_seq", Desc: true},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT messages.key_id FROM messages ORDER BY messages.flume_seq DESC LIMIT ?", sqlText)
	assert.Equal(t, []any{10}, params)
}

func TestCompile_NilWhere(t *testing.T) {
	sqlText, _, err := Compile(Select{
		Columns: []string{"id"},
		From:    "keys",
		Order:   Order{Expr: "id"},
		Limit:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM keys ORDER BY id ASC LIMIT ?", sqlText)
}

func TestCompile_EmptyNestedGroupsAreSkipped(t *testing.T) {
	where := (&Group{Op: OpAnd}).Add(Cmp("a", "=", 1))
	where.Groups = append(where.Groups, &Group{Op: OpOr})

	sqlText, params, err := Compile(Select{
		Columns: []string{"id"},
		From:    "t",
		Where:   where,
		Order:   Order{Expr: "id"},
		Limit:   5,
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE a = ? ORDER BY id ASC LIMIT ?", sqlText)
	assert.Equal(t, []any{1, 5}, params)
}

func TestCompile_Errors(t *testing.T) {
	valid := Select{
		Columns: []string{"id"},
		From:    "t",
		Order:   Order{Expr: "id"},
		Limit:   1,
	}

	noColumns := valid
	noColumns.Columns = nil
	_, _, err := Compile(noColumns)
	assert.Error(t, err)

	noTable := valid
	noTable.From = ""
	_, _, err = Compile(noTable)
	assert.Error(t, err)

	noOrder := valid
	noOrder.Order = Order{}
	_, _, err = Compile(noOrder)
	assert.Error(t, err)

	badLimit := valid
	badLimit.Limit = 0
	_, _, err = Compile(badLimit)
	assert.Error(t, err)
}

func TestIn_EmptyMatchesNothing(t *testing.T) {
	p := In("author_id", nil)
	assert.Equal(t, "1 = 0", p.SQL)
	assert.Empty(t, p.Args)
}

func TestIn_Placeholders(t *testing.T) {
	p := In("author_id", []int64{1, 2, 3})
	assert.Equal(t, "author_id IN (?,?,?)", p.SQL)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, p.Args)
}

func TestGroup_Empty(t *testing.T) {
	assert.True(t, (*Group)(nil).Empty())
	assert.True(t, (&Group{Op: OpOr}).Empty())
	assert.True(t, (&Group{Op: OpAnd, Groups: []*Group{{Op: OpOr}}}).Empty())
	assert.False(t, (&Group{Op: OpOr}).Add(Raw("1 = 0")).Empty())
}
