// Package cursor implements the opaque pagination token codec.
//
// A cursor is the base64 form of an ordering-key integer (a log sequence or
// an asserted timestamp). Callers outside the query engine treat tokens as
// opaque; the only law is Decode(Encode(x)) == x for every representable
// non-negative x.
package cursor

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// ErrInvalid marks a token that does not decode to an ordering-key integer.
// The query engine surfaces it as an input error.
var ErrInvalid = fmt.Errorf("invalid cursor")

// Encode returns the opaque token for an ordering-key value.
func Encode(v int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(v, 10)))
}

// Decode reverses Encode. Fails with ErrInvalid for tokens that are not
// base64, or whose payload is not a decimal integer.
func Decode(token string) (int64, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not base64", ErrInvalid, token)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not carry an integer", ErrInvalid, token)
	}
	return v, nil
}
