package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitParseError      = 2
	ExitConversionError = 3
	ExitHTTPServerError = 4
	ExitOutputError     = 5
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitCode(err)
	}
	return ExitSuccess
}

// exitCode maps a command error to the process exit code. Errors cobra raises
// for bad arguments or flags count as configuration errors.
func exitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitConfigError
}

// =============================================================================
// Root Command
// =============================================================================

// rootOptions carries the global flags and output streams shared by all
// subcommands.
type rootOptions struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "shipit",
		Short:         "Convert container.yml projects into OpenShift deployment templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")

	cmd.AddCommand(
		newConvertCmd(opts),
		newServeCmd(opts),
		newVersionCmd(opts),
	)
	return cmd
}

// load reads the configuration for a subcommand and builds its logger.
func (o *rootOptions) load(flags *pflag.FlagSet) (*Config, *slog.Logger, error) {
	cfg, err := LoadConfig(o.configPath, flags)
	if err != nil {
		return nil, nil, &CommandError{Op: "load config", Err: err, ExitCode: ExitConfigError}
	}
	return cfg, SetupLogger(cfg, o.stderr), nil
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(opts.stdout, "shipit %s (built %s)\n", Version, BuildTime)
		},
	}
}

// =============================================================================
// Command Error
// =============================================================================

// CommandError represents an error during command execution together with
// the exit code it maps to.
type CommandError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *CommandError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
