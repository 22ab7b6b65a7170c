package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hotafrika/slowserve/internal/config"
)

// newConfigCmd shows the configuration the server would run with.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Display the configuration resulting from the flags, the SLOWSERVE_*
environment variables and the defaults, together with the derived chunk size.`,
		Args: noArgs,
		RunE: runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return usageError(cmd, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, string(data))
	fmt.Fprintf(out, "# chunk size: %d bytes every %s\n", cfg.ChunkSize(), cfg.Interval())
	return nil
}
