package orchestrator

import (
	"strings"
	"testing"

	"github.com/bububa/omniquery/schema"
)

func TestFormat(t *testing.T) {
	answer := "There are **42** employees.\n\n- Engineering\n- Sales"
	tests := []struct {
		format   schema.OutputFormat
		contains []string
		excludes []string
	}{
		{format: schema.FormatMarkdown, contains: []string{"**42**"}},
		{format: schema.FormatJSON, contains: []string{"**42**"}},
		{format: schema.FormatHTML, contains: []string{"<strong>42</strong>", "<li>Engineering</li>"}},
		{format: schema.FormatPlain, contains: []string{"There are 42 employees.", "Engineering", "Sales"}, excludes: []string{"**", "<"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Format(answer, tt.format)
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expect %q in %q", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("unexpected %q in %q", s, got)
				}
			}
		})
	}
}
