package splitter

import (
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/words"

	"github.com/bububa/omniquery/components"
)

// TokenCounter defines the interface for counting tokens in a string.
type TokenCounter interface {
	Count(p []byte) int
}

// WordsTokenCounter counts UAX#29 word segments holding at least one letter or digit
type WordsTokenCounter struct{}

func (c WordsTokenCounter) Count(p []byte) int {
	var n int
	for _, seg := range words.SegmentAll(p) {
		if isWord(seg) {
			n++
		}
	}
	return n
}

func isWord(seg []byte) bool {
	for len(seg) > 0 {
		r, size := utf8.DecodeRune(seg)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
		seg = seg[size:]
	}
	return false
}

// TikTokenCounter counts model tokens with the shared tiktoken encoding
type TikTokenCounter struct{}

func (c TikTokenCounter) Count(p []byte) int {
	return components.CountTokens(string(p))
}
