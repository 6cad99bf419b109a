package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/completion"
)

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "complete <request.json|->",
		Short: "Dispatch a request and print the completion",
		Long: `Assemble the request's prompt, send it to the backend for its connection
type and print the completion text. With --output json the backend's raw
response is printed instead.

Examples:
  loom complete request.json
  loom complete request.json --backend Mancer`,
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

			raw, err := d.TryCompleteWith(cmd.Context(), backend, req)
			if err != nil {
				return fmt.Errorf("%w: %w", cli.ErrNoCompletion, err)
			}

			out := cmd.OutOrStdout()
			if opts.format == cli.FormatJSON {
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "  "); err != nil {
					return fmt.Errorf("backend returned invalid JSON: %w", err)
				}
				buf.WriteByte('\n')
				_, err := buf.WriteTo(out)
				return err
			}

			text, ok := completion.Text(raw)
			if !ok {
				return fmt.Errorf("%w: response has no choices[0].text", cli.ErrNoCompletion)
			}
			return cli.NewFormatter(cli.FormatText).FormatTo(out, text)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "force the backend registered for this connection type (e.g. Mancer)")
	return cmd
}
