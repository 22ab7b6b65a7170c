// Package cli provides the command-line interface for slowserve.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hotafrika/slowserve"
	"github.com/hotafrika/slowserve/internal/config"
	"github.com/hotafrika/slowserve/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Execute runs the root command until it fails or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slowserve [options]",
		Short: "A simple HTTP static resource server with latency for testing purpose.",
		Long: `slowserve serves the files of a directory over HTTP and deliberately slows
the responses down: every interval it writes one chunk sized so that the
transfer runs at the configured speed.

Every option can also be set through an environment variable named after it,
e.g. SLOWSERVE_ROOT_DIR or SLOWSERVE_SPEED.

Examples:
  slowserve                          # 8 KB/s from the current directory on :8080
  slowserve -s 64 -i 250 -r ./public # 64 KB/s in chunks every 250ms
  slowserve -p 3000 --cors           # allow cross-origin requests`,
		Args:          noArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runServe,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	def := slowserve.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.Float64P("speed", "s", def.Speed, "transfer speed in KB per second")
	pf.IntP("interval", "i", def.IntervalMs, "delay between chunks in milliseconds")
	pf.IntP("port", "p", def.Port, "port to use")
	pf.StringP("root-dir", "r", def.RootDir, "root directory")
	pf.BoolP("cors", "c", def.CORS, "send permissive CORS headers")
	pf.String("host", def.Host, "host to bind to (default all interfaces)")
	pf.Float64("total-speed", def.TotalSpeed, "cap of all connections together in KB per second, 0 for none")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", config.FormatText, "log format: text or json")

	rootCmd.SetFlagErrorFunc(usageError)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// newVersionCmd shows version information.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return usageError(cmd, err)
	}
	logger := cfg.NewLogger(cmd.ErrOrStderr())

	server, err := slowserve.NewServer(cfg.Config, logger)
	if err != nil {
		return usageError(cmd, err)
	}
	if err := server.Listen(); err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	port := cfg.Port
	if addr, ok := server.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Listening %d. Root directory: %s.\n", port, cfg.RootDir)

	errc := make(chan error, 1)
	go func() { errc <- server.Serve() }()

	select {
	case err := <-errc:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("error during shutdown: %w", err)
	}
	return <-errc
}

// usageError prints the usage to stdout and passes err through.
func usageError(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.OutOrStdout(), cmd.UsageString())
	return err
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(cmd, fmt.Errorf("unknown argument %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}
