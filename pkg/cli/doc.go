/*
Package cli provides command-line helpers for the loom command: typed
errors that map to process exit codes, output formatters and signal
handling.

Errors:

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

ConfigError exits with ExitConfig, a failed completion with
ExitUnavailable and anything else with ExitError.

Output Formatting:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}
*/
package cli
