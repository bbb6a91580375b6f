package ssb

import "golang.org/x/text/unicode/norm"

// NormalizeText NFC-normalizes free text before it enters the full-text
// index, so queries match regardless of the composition form the author's
// client produced.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
