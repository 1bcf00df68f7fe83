// Package cli implements the sumoflow command line interface.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"sumoflow/internal/config"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := runOptions{}

	rootCmd := &cobra.Command{
		Use:           "sumoflow",
		Short:         "Extract Sumo Logic query results as typed record streams",
		Long: "sumoflow runs configured Sumo Logic search-job and metrics queries " +
			"and emits their results as Singer-style record streams, with schemas " +
			"inferred from the live API when not supplied.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Flags not set on the command line fall back to SUMOFLOW_* env vars.
			var bindErr error
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				if f.Changed {
					return
				}
				env := "SUMOFLOW_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
				if v := os.Getenv(env); v != "" {
					if err := f.Value.Set(v); err != nil && bindErr == nil {
						bindErr = fmt.Errorf("apply %s: %w", env, err)
					}
				}
			})
			return bindErr
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "sumoflow.yml", "path to the YAML configuration file")
	flags.StringVarP(&opts.outputPath, "output", "o", "-", "file for Singer messages, - for stdout")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "also materialize records into a SQLite file")
	flags.StringVar(&opts.schedule, "schedule", "", "cron expression to run the extraction on a schedule")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.BoolVar(&opts.discover, "discover", false, "resolve and emit schemas without extracting records")

	return rootCmd
}

// promptCredentials interactively asks for missing credentials when stdin is
// a terminal. The access key is read without echo.
func promptCredentials(cfg *config.Config) error {
	if cfg.AccessID != "" && cfg.AccessKey != "" {
		return nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	if cfg.AccessID == "" {
		fmt.Fprint(os.Stderr, "Sumo Logic access ID: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read access id: %w", err)
		}
		cfg.AccessID = strings.TrimSpace(line)
	}
	if cfg.AccessKey == "" {
		fmt.Fprint(os.Stderr, "Sumo Logic access key: ")
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read access key: %w", err)
		}
		cfg.AccessKey = strings.TrimSpace(string(secret))
	}
	return nil
}
