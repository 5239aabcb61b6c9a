package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"f1stats/internal/shared/config"
	"f1stats/internal/shared/logger"
	"f1stats/internal/shared/types"
)

// DefaultConfigPath is read when --config is not given. A missing file means defaults.
const DefaultConfigPath = "configs/f1stats.ini"

var (
	configPath string
	cfg        *types.Config
)

var rootCmd = &cobra.Command{
	Use:           "f1stats",
	Short:         "f1stats scrapes Formula 1 testing and championship data into CSV files.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logger.Init(loaded.LogConf); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", DefaultConfigPath, "Path to the ini configuration file.")
}

// ExecuteContext runs the command line and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
