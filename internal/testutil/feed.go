// Package testutil provides fixtures for building feed messages and offset
// logs in tests.
package testutil

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Message describes one test feed message. Zero values are filled with
// usable defaults by JSON.
type Message struct {
	Key      string
	Author   string
	Seq      int64
	Asserted float64 // author-claimed timestamp (epoch ms)
	Received float64 // local receipt timestamp (epoch ms)
	Content  any     // marshaled verbatim; a string becomes boxed content
}

// JSON renders the message as a raw envelope payload.
func (m Message) JSON(t *testing.T) []byte {
	t.Helper()

	if m.Key == "" {
		m.Key = "%testkey=.sha256"
	}
	if m.Author == "" {
		m.Author = "@testauthor=.ed25519"
	}
	if m.Seq == 0 {
		m.Seq = 1
	}
	if m.Asserted == 0 {
		m.Asserted = 1_500_000_000_000
	}
	if m.Received == 0 {
		m.Received = m.Asserted + 250
	}

	content, err := json.Marshal(m.Content)
	require.NoError(t, err)

	data, err := json.Marshal(map[string]any{
		"key": m.Key,
		"value": map[string]any{
			"previous":  nil,
			"author":    m.Author,
			"sequence":  m.Seq,
			"timestamp": m.Asserted,
			"hash":      "sha256",
			"content":   json.RawMessage(content),
			"signature": "sig.ed25519",
		},
		"timestamp": m.Received,
	})
	require.NoError(t, err)
	return data
}

// PostContent builds a minimal post content object.
func PostContent(text string) map[string]any {
	return map[string]any{"type": "post", "text": text}
}

// ReplyContent builds a post content object replying to a root message.
func ReplyContent(text, root string) map[string]any {
	return map[string]any{"type": "post", "text": text, "root": root}
}

// ContactContent builds a contact content object.
func ContactContent(contact string, following bool) map[string]any {
	return map[string]any{"type": "contact", "contact": contact, "following": following}
}

// WriteOffsetLog writes payloads to a fresh offset log file in a temp dir
// using the standard framing and returns its path.
func WriteOffsetLog(t *testing.T, payloads ...[]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "log.offset")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, p := range payloads {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(p)))
		_, err = f.Write(length[:])
		require.NoError(t, err)
		_, err = f.Write(p)
		require.NoError(t, err)
		_, err = f.Write(length[:])
		require.NoError(t, err)
	}
	require.NoError(t, f.Sync())
	return path
}
