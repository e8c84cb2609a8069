package gemini

import (
	"testing"

	gemini "github.com/google/generative-ai-go/genai"
)

func TestCandidateText(t *testing.T) {
	tests := []struct {
		name string
		resp *gemini.GenerateContentResponse
		want string
	}{
		{name: "nil", resp: nil, want: ""},
		{name: "no candidates", resp: &gemini.GenerateContentResponse{}, want: ""},
		{
			name: "text parts",
			resp: &gemini.GenerateContentResponse{
				Candidates: []*gemini.Candidate{
					{Content: &gemini.Content{Parts: []gemini.Part{gemini.Text("Hello, "), gemini.Text("world")}}},
				},
			},
			want: "Hello, world",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidateText(tt.resp); got != tt.want {
				t.Errorf("expect %q, got %q", tt.want, got)
			}
		})
	}
}
