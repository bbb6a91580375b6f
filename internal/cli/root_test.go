package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/feedql/internal/store"
	"github.com/roach88/feedql/internal/testutil"
)

// execute runs the CLI with the given args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeResponse unmarshals the JSON envelope printed by a command.
func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "status", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIndexCommand_RequiresOffsetLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	_, err := execute(t, "index", "--db", dbPath, "--config", "/nonexistent.yml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIndexThenQuery_EndToEnd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")

	root := testutil.Message{
		Key:     "%root=.sha256",
		Author:  "@alice=.ed25519",
		Content: testutil.PostContent("first post"),
	}.JSON(t)
	other := testutil.Message{
		Key:     "%other=.sha256",
		Author:  "@bob=.ed25519",
		Content: testutil.PostContent("second post"),
	}.JSON(t)
	logPath := testutil.WriteOffsetLog(t, root, other)

	out, err := execute(t, "index",
		"--db", dbPath,
		"--log", logPath,
		"--pub-key", "@alice=.ed25519",
		"--format", "json",
		"--config", "/nonexistent.yml",
	)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), data["indexed"])
	assert.Equal(t, float64(0), data["skipped"])

	// Both messages are thread roots.
	out, err = execute(t, "threads", "--db", dbPath, "--format", "json", "--config", "/nonexistent.yml")
	require.NoError(t, err)
	resp = decodeResponse(t, out)
	data, ok = resp.Data.(map[string]any)
	require.True(t, ok)
	edges, ok := data["edges"].([]any)
	require.True(t, ok)
	assert.Len(t, edges, 2)

	// Status reports the identity and a non-empty cursor.
	out, err = execute(t, "status", "--db", dbPath, "--format", "json", "--config", "/nonexistent.yml")
	require.NoError(t, err)
	resp = decodeResponse(t, out)
	data, ok = resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "@alice=.ed25519", data["current_author"])
	assert.NotNil(t, data["cursor"])
}

func TestIndexCommand_ResumeIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	payload := testutil.Message{
		Key:     "%root=.sha256",
		Author:  "@alice=.ed25519",
		Content: testutil.PostContent("once"),
	}.JSON(t)
	logPath := testutil.WriteOffsetLog(t, payload)

	for i := 0; i < 2; i++ {
		_, err := execute(t, "index", "--db", dbPath, "--log", logPath, "--config", "/nonexistent.yml")
		require.NoError(t, err)
	}

	st, err := store.OpenReadOnly(dbPath)
	require.NoError(t, err)
	defer st.Close()

	var n int
	require.NoError(t, st.DB().QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestThreadsCommand_RejectsBadCursorPairing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, err = execute(t, "threads",
		"--db", dbPath,
		"--before", "AA==", "--after", "AA==",
		"--config", "/nonexistent.yml",
	)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
