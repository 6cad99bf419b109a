package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/server"
)

func newPromptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <request.json|->",
		Short: "Assemble a request's prompt without calling a backend",
		Long: `Resolve the request's connection, settings and character from the store,
assemble the prompt and print it with its stop sequences and budget.

Examples:
  loom prompt request.json
  cat request.json | loom prompt - --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readRequest(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			d, backends, err := opts.newDispatcher(st)
			if err != nil {
				return err
			}
			defer backends.Close()

			plan, err := d.Prepare(cmd.Context(), req)
			if err != nil {
				return cli.NewCommandError("prompt", err)
			}

			resp := server.NewPromptResponse(plan, len(req.Messages))
			if opts.format == cli.FormatJSON {
				return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), resp)
			}
			return cli.NewFormatter(cli.FormatText).FormatTo(cmd.OutOrStdout(), promptText(resp))
		},
	}
}

// promptText renders a prompt summary for terminals.
func promptText(resp server.PromptResponse) string {
	stops := make([]string, len(resp.Stop))
	for i, s := range resp.Stop {
		stops[i] = strconv.Quote(s)
	}

	var b strings.Builder
	b.WriteString(resp.Prompt)
	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "stop: [%s]\n", strings.Join(stops, ", "))
	fmt.Fprintf(&b, "model: %s (connection %s, settings %s)\n", resp.Model, resp.ConnectionID, resp.SettingsID)
	fmt.Fprintf(&b, "tokens: %d prompt, %d budget, %d/%d messages fitted",
		resp.PromptTokens, resp.Budget, resp.FittedMessages, resp.TotalMessages)
	return b.String()
}
