package components

import "testing"

func TestCountTokens(t *testing.T) {
	if n := CountTokens(""); n != 0 {
		t.Errorf("expect 0 tokens for empty text, got %d", n)
	}
	if n := CountTokens("How many employees work in engineering?"); n <= 0 {
		t.Errorf("expect positive token count, got %d", n)
	}
}

func TestTruncateTokens(t *testing.T) {
	txt := "one two three four five six seven eight nine ten"
	if got := TruncateTokens(txt, 0); got != txt {
		t.Errorf("limit 0 must keep text, got %q", got)
	}
	got := TruncateTokens(txt, 2)
	if len(got) >= len(txt) {
		t.Errorf("expect truncated text, got %q", got)
	}
	if CountTokens(got) > 2 && len([]rune(got)) > 8 {
		t.Errorf("truncated text too long: %q", got)
	}
}

func TestLLMUsageMerge(t *testing.T) {
	u := LLMUsage{InputTokens: 1, OutputTokens: 2}
	u.Merge(nil)
	u.Merge(&LLMUsage{InputTokens: 10, OutputTokens: 20})
	if u.InputTokens != 11 || u.OutputTokens != 22 {
		t.Errorf("unexpected merge result %+v", u)
	}
	if u.Total() != 33 {
		t.Errorf("expect total 33, got %d", u.Total())
	}
}

func TestNewGenerateOptions(t *testing.T) {
	defaults := GenerateOptions{MaxTokens: 512}
	got := NewGenerateOptions(defaults, WithSystemPrompt("sys"), WithTemperature(0.2))
	if got.SystemPrompt != "sys" || got.MaxTokens != 512 {
		t.Errorf("unexpected options %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Errorf("expect temperature 0.2, got %v", got.Temperature)
	}
	if defaults.SystemPrompt != "" {
		t.Error("defaults must not be mutated")
	}
}
