package ssb

import (
	"encoding/json"
	"fmt"
)

// Envelope is one replicated log record as it appears in the offset log:
// the content-addressed message key, the signed message value, and the local
// receive timestamp.
type Envelope struct {
	Key       string       `json:"key"`
	Value     MessageValue `json:"value"`
	Timestamp float64      `json:"timestamp"`
}

// MessageValue is the author-signed portion of a message. Content is either a
// JSON object (public or already-unboxed private content) or a JSON string
// (boxed private content that could not be decrypted).
type MessageValue struct {
	Previous  *string         `json:"previous"`
	Author    string          `json:"author"`
	Sequence  int64           `json:"sequence"`
	Timestamp float64         `json:"timestamp"`
	Hash      string          `json:"hash"`
	Content   json.RawMessage `json:"content"`
	Signature string          `json:"signature"`
}

// ParseEnvelope decodes a raw log record payload.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Key == "" {
		return nil, fmt.Errorf("parse envelope: missing message key")
	}
	if env.Value.Author == "" {
		return nil, fmt.Errorf("parse envelope: missing author")
	}
	return &env, nil
}

// IsBoxed reports whether content is a boxed (undecryptable) payload, which
// the protocol represents as a base64 JSON string rather than an object.
func IsBoxed(content json.RawMessage) bool {
	for _, b := range content {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b == '"'
	}
	return false
}
