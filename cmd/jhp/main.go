// Command jhp serves a JHP document root, or evaluates scripts
// interactively against it with the repl subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jhp/internal/config"
	"jhp/internal/logging"
)

var (
	flagVerbose   bool
	flagConfig    string
	flagDocroot   string
	flagExtDir    string
	flagBind      string
	flagExecutors int
)

// runtimeError marks an error that occurred after the CLI/config was
// successfully parsed (e.g. the HTTP listener failing, the REPL program
// erroring out). Every other error Execute can return, cobra's own flag
// parsing failures included, is a CLI/config parse error and exits 2; a
// runtimeError exits 1 instead.
type runtimeError struct{ err error }

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jhp:", err)
		if _, ok := err.(*runtimeError); ok {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "jhp",
		Short:         "JHP template engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(flagVerbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
		},
		// `jhp -S HOST:PORT -t DIR` with no subcommand serves, same as
		// `jhp serve`.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVarP(&flagDocroot, "docroot", "t", "", "document root (overrides config)")
	root.PersistentFlags().StringVarP(&flagExtDir, "extensions-dir", "e", "", "extensions directory (overrides config)")
	root.Flags().StringVarP(&flagBind, "serve", "S", "", "bind address HOST:PORT (overrides config)")
	root.Flags().IntVar(&flagExecutors, "executors", 0, "number of executor workers (overrides config)")

	root.AddCommand(serveCmd())
	root.AddCommand(replCmd())
	return root
}

func loadConfig() (*config.EngineConfig, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDocroot != "" {
		cfg.DocumentRoot = flagDocroot
	}
	if flagExtDir != "" {
		cfg.ExtensionsDir = flagExtDir
	}
	if flagExecutors > 0 {
		cfg.Executors = flagExecutors
	}
	if flagBind != "" {
		host, port, err := parseHostPort(flagBind)
		if err != nil {
			return nil, err
		}
		cfg.Host, cfg.Port = host, port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
