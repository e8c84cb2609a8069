package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bububa/omniquery/orchestrator"
	"github.com/bububa/omniquery/schema"
)

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question, or start an interactive session without arguments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())
			session, _ := cmd.Flags().GetString("session")
			format, _ := cmd.Flags().GetString("format")
			asJSON, _ := cmd.Flags().GetBool("json")
			targets, _ := cmd.Flags().GetStringSlice("agents")
			newRequest := func(q string) *schema.QueryRequest {
				return &schema.QueryRequest{
					Query:        q,
					SessionID:    session,
					OutputFormat: schema.OutputFormat(format),
					TargetAgents: targets,
				}
			}
			out := cmd.OutOrStdout()
			if len(args) > 0 {
				resp := a.Orchestrator.Process(cmd.Context(), newRequest(strings.Join(args, " ")))
				return printResponse(out, resp, asJSON)
			}
			return chat(cmd, a.Orchestrator, newRequest, asJSON)
		},
	}
	cmd.Flags().String("session", "", "session id, generated when empty")
	cmd.Flags().StringP("format", "f", "markdown", "answer format: markdown, html, plain or json")
	cmd.Flags().Bool("json", false, "print the full response as JSON")
	cmd.Flags().StringSlice("agents", nil, "restrict routing to these agents")
	return cmd
}

// chat reads questions from stdin until EOF, /exit or /quit
func chat(cmd *cobra.Command, o *orchestrator.Orchestrator, newRequest func(string) *schema.QueryRequest, asJSON bool) error {
	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "You: ")
		txt, err := reader.ReadString('\n')
		txt = strings.TrimSpace(txt)
		if txt == "/exit" || txt == "/quit" {
			return nil
		}
		if txt != "" {
			if perr := printResponse(out, o.Process(cmd.Context(), newRequest(txt)), asJSON); perr != nil {
				return perr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func printResponse(w io.Writer, resp *schema.QueryResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	fmt.Fprintf(w, "%s\n\n", resp.Answer)
	fmt.Fprintf(w, "confidence: %.2f  agents: %s  time: %dms\n", resp.Confidence, strings.Join(resp.AgentsUsed, ", "), resp.ExecutionTimeMS)
	for idx, src := range resp.Sources {
		fmt.Fprintf(w, "  [%d] %s %s (%s, %.2f)\n", idx+1, src.SourceType, src.SourceIdentifier, src.AgentName, src.RelevanceScore)
	}
	return nil
}
