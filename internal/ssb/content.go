package ssb

import "encoding/json"

// Content is the lenient view of a decrypted message content object. Only the
// fields the index materializes are declared; everything else passes through
// untouched in the stored blob.
type Content struct {
	Type     string    `json:"type"`
	Root     string    `json:"root"`
	Fork     string    `json:"fork"`
	Text     string    `json:"text"`
	Mentions []Mention `json:"mentions"`

	// Contact-type fields.
	Contact   string `json:"contact"`
	Following *bool  `json:"following"`
	Blocking  *bool  `json:"blocking"`
}

// Mention is an embedded reference from a message to another feed entity.
// Links starting with '@' reference authors.
type Mention struct {
	Link string `json:"link"`
	Name string `json:"name"`
}

// ParseContent decodes the indexed fields out of a decrypted content object.
// Returns (nil, false) for boxed or non-object content; malformed field types
// inside an otherwise valid object surface as a decode error upstream.
func ParseContent(raw json.RawMessage) (*Content, bool) {
	if len(raw) == 0 || IsBoxed(raw) {
		return nil, false
	}
	var c Content
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	return &c, true
}

// IsAuthorLink reports whether a mention link references an author identity.
func IsAuthorLink(link string) bool {
	return len(link) > 0 && link[0] == '@'
}

// ContactState encodes the follow relationship carried by a contact message.
// Following wins over blocking when both are set, matching the js stack.
func (c *Content) ContactState() int {
	switch {
	case c.Following != nil && *c.Following:
		return ContactFollowing
	case c.Blocking != nil && *c.Blocking:
		return ContactBlocking
	default:
		return ContactNeutral
	}
}

// Contact edge states. ContactFollowing is the only state the
// "followed by" thread selectors resolve through.
const (
	ContactBlocking  = -1
	ContactNeutral   = 0
	ContactFollowing = 1
)
