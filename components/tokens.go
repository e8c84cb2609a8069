package components

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for token estimates
const DefaultEncoding = "cl100k_base"

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func loadEncoding() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		if tke, err := tiktoken.GetEncoding(DefaultEncoding); err == nil {
			encoding = tke
		}
	})
	return encoding
}

// CountTokens estimates the number of tokens in txt.
// Falls back to 4 characters per token when the encoding can not be loaded.
func CountTokens(txt string) int {
	if txt == "" {
		return 0
	}
	if tke := loadEncoding(); tke != nil {
		return len(tke.Encode(txt, nil, nil))
	}
	return max(1, len(txt)/4)
}

// EstimateUsage builds usage counters for providers which do not report them
func EstimateUsage(prompt string, completion string) *LLMUsage {
	return &LLMUsage{
		InputTokens:  int64(CountTokens(prompt)),
		OutputTokens: int64(CountTokens(completion)),
	}
}

// TruncateTokens cuts txt so that it holds at most limit tokens
func TruncateTokens(txt string, limit int) string {
	if limit <= 0 || txt == "" {
		return txt
	}
	if tke := loadEncoding(); tke != nil {
		ids := tke.Encode(txt, nil, nil)
		if len(ids) <= limit {
			return txt
		}
		return tke.Decode(ids[:limit])
	}
	runes := []rune(txt)
	if len(runes) <= limit*4 {
		return txt
	}
	return string(runes[:limit*4])
}
