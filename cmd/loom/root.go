package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"construct-hq/loom/pkg/chat"
	"construct-hq/loom/pkg/cli"
	"construct-hq/loom/pkg/completion"
	"construct-hq/loom/pkg/config"
	"construct-hq/loom/pkg/processing/tokens"
	"construct-hq/loom/pkg/prompt"
	"construct-hq/loom/pkg/providers"
	"construct-hq/loom/pkg/secrets"
	"construct-hq/loom/pkg/store"
	"construct-hq/loom/pkg/telemetry/logging"
)

// rootOptions holds the global flags and the state loaded from them.
type rootOptions struct {
	configFile string
	logLevel   string
	output     string

	cfg    *config.Config
	logger *slog.Logger
	format cli.OutputFormat
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "loom",
		Short: "Loom - prompt assembly and completion dispatch for role-play chat",
		Long: `Loom turns a chat log, a character card and a generation preset into a
single text-completion prompt and sends it to the configured backend.

  - Instruct templates: None, Alpaca, Vicuna and Metharme
  - Context fitting against the preset's token budget
  - Generic OpenAI-compatible and hosted Mancer backends
  - Records from YAML/TOML files or SQLite`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "loom.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		newServeCmd(opts),
		newPromptCmd(opts),
		newCompleteCmd(opts),
		newStoreCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// load reads the configuration and installs the logger. A missing config
// file is only an error when --config was given explicitly.
func (o *rootOptions) load(cmd *cobra.Command) error {
	format, err := cli.ParseFormat(o.output)
	if err != nil {
		return err
	}
	o.format = format

	explicit := cmd.Flag("config") != nil && cmd.Flag("config").Changed
	cfg, err := config.LoadConfigWithEnvOverrides(o.configFile, !explicit)
	if err != nil {
		return cli.NewConfigError("", err)
	}
	if o.logLevel != "" {
		cfg.Telemetry.Logging.Level = o.logLevel
		if err := config.Validate(cfg); err != nil {
			return cli.NewConfigError("telemetry.logging.level", err)
		}
	}

	logger, err := logging.New(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err)
	}
	slog.SetDefault(logger)

	o.cfg = cfg
	o.logger = logger
	return nil
}

// newDispatcher wires the estimator, key resolver and backends configured
// in cfg, followed by extra. The caller closes the returned registry.
func (o *rootOptions) newDispatcher(st store.Store, extra ...completion.Option) (*completion.Dispatcher, *providers.Registry, error) {
	est, err := tokens.NewEstimator(&o.cfg.Processing.Tokens)
	if err != nil {
		return nil, nil, cli.NewConfigError("processing.tokens", err)
	}

	keys, err := o.newSecrets()
	if err != nil {
		return nil, nil, err
	}

	backends := completion.NewRegistry(o.cfg.Backends)
	opts := append([]completion.Option{
		completion.WithLogger(o.logger),
		completion.WithKeyResolver(keys),
		completion.WithAssemblerOptions(prompt.WithPlatformMarkupCleanup(o.cfg.Processing.CleanPlatformMarkup)),
	}, extra...)
	d := completion.NewDispatcher(st, backends, est, opts...)
	return d, backends, nil
}

// newSecrets builds the connection key resolver: the environment first,
// then the secrets directory when one is configured.
func (o *rootOptions) newSecrets() (*secrets.Manager, error) {
	sources := []secrets.Provider{secrets.NewEnvProvider(o.cfg.Secrets.EnvPrefix)}
	if o.cfg.Secrets.Dir != "" {
		fp, err := secrets.NewFileProvider(o.cfg.Secrets.Dir)
		if err != nil {
			return nil, cli.NewConfigError("secrets.dir", err)
		}
		sources = append(sources, fp)
	}
	return secrets.NewManager(sources,
		secrets.WithCacheTTL(o.cfg.Secrets.CacheTTL),
		secrets.WithLogger(o.logger),
	), nil
}

// openStore opens the configured record store.
func (o *rootOptions) openStore() (store.Store, error) {
	st, err := store.Open(o.cfg.Store, o.logger)
	if err != nil {
		return nil, cli.NewConfigError("store", err)
	}
	return st, nil
}

// readRequest decodes a completion request from path, or from stdin when
// path is "-".
func readRequest(path string, stdin io.Reader) (*chat.CompletionRequest, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req chat.CompletionRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode request %s: %w", path, err)
	}
	return &req, nil
}
