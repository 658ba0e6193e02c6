package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zoobzio/cloak"
	"github.com/zoobzio/cloak/config"
)

type options struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "cloak",
		Short: "Mask sensitive values",
		Long: `cloak applies masking strategies to single values and to structured bodies.

Settings come from an optional YAML file (--config) and CLOAK_* environment
variables.

Examples:
  # List the available strategies
  cloak strategies

  # Mask one value
  cloak apply BANK 6222021234567890123 4 4

  # Mask a JSON body read from stdin
  cat response.json | cloak body
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log masking warnings to stderr")

	root.AddCommand(newStrategiesCmd(opts))
	root.AddCommand(newApplyCmd(opts))
	root.AddCommand(newBodyCmd(opts))
	root.AddCommand(newConfigCmd())

	return root
}

// loadConfig reads the --config file, or the defaults plus environment
// overrides when no file is given.
func (o *options) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Load(nil)
	}
	return config.LoadFile(o.configPath)
}

func (o *options) engine(stderr io.Writer) (*cloak.Engine, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Engine(cloak.WithLogger(o.logger(stderr)))
}

func (o *options) logger(stderr io.Writer) *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(stderr), zapcore.DebugLevel))
}

func newStrategiesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List registered strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			r, err := cfg.Registry()
			if err != nil {
				return err
			}
			for _, name := range r.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newApplyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply NAME VALUE [ARGS...]",
		Short: "Apply one strategy to a value",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			r, err := cfg.Registry()
			if err != nil {
				return err
			}

			name := strings.ToUpper(args[0])
			s, ok := r.Get(name)
			if !ok {
				return fmt.Errorf("unknown strategy %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Apply(args[1], args[2:]))
			return nil
		},
	}
}

func newBodyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "body",
		Short: "Mask a structured body read from stdin",
		Long: `body reads a body from stdin and masks it the way a response body is masked.
Bodies that are not objects or arrays are written back unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.engine(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read body: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ProcessStringBody(cmd.Context(), strings.TrimRight(string(data), "\n")))
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration files",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: policy=%s codec=%s max_depth=%d\n", cfg.Policy, cfg.Codec, cfg.MaxDepth)
			return nil
		},
	})
	return configCmd
}
