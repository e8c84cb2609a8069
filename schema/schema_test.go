package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueryRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     QueryRequest
		wantErr bool
	}{
		{name: "valid", req: QueryRequest{Query: "how many employees?"}},
		{name: "blank", req: QueryRequest{Query: "   "}, wantErr: true},
		{name: "empty", req: QueryRequest{}, wantErr: true},
		{name: "too long", req: QueryRequest{Query: strings.Repeat("a", MaxQueryLength+1)}, wantErr: true},
		{name: "format", req: QueryRequest{Query: "q", OutputFormat: FormatHTML}},
		{name: "bad format", req: QueryRequest{Query: "q", OutputFormat: "pdf"}, wantErr: true},
		{name: "max sources", req: QueryRequest{Query: "q", MaxSources: 10}},
		{name: "max sources overflow", req: QueryRequest{Query: "q", MaxSources: 11}, wantErr: true},
		{name: "targets", req: QueryRequest{Query: "q", TargetAgents: []string{"DBAgent"}}},
		{name: "empty target", req: QueryRequest{Query: "q", TargetAgents: []string{""}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueryRequestNormalize(t *testing.T) {
	req := QueryRequest{Query: "q"}
	req.Normalize()
	if req.OutputFormat != FormatMarkdown || req.MaxSources != DefaultMaxSources {
		t.Errorf("unexpected defaults %+v", req)
	}
}

func TestMergeSources(t *testing.T) {
	a := []Source{
		{AgentName: "DBAgent", SourceType: SourceDatabase, SourceIdentifier: "employees"},
		{AgentName: "DocAgent", SourceType: SourceDocument, SourceIdentifier: "policy.md"},
	}
	b := []Source{
		{AgentName: "DocAgent", SourceType: SourceDocument, SourceIdentifier: "policy.md", RelevanceScore: 0.9},
		{AgentName: "WebAgent", SourceType: SourceWeb, SourceIdentifier: "https://example.com"},
	}
	got := MergeSources(a, nil, b)
	want := []Source{a[0], a[1], b[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeSources() mismatch (-want +got):\n%s", diff)
	}
}
