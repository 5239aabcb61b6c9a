package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"f1stats/internal/app"
	"f1stats/internal/pipeline"
)

var flushPrefix string

func init() {
	cacheFlushCmd.Flags().StringVar(&flushPrefix, "prefix", pipeline.ScrapedDataPrefix, "Cache namespace to remove.")
	cacheCmd.AddCommand(cacheFlushCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the on-disk page cache.",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush [--prefix <name>]",
	Short: "Removes every cached entry under a prefix.",
	RunE: func(cmd *cobra.Command, args []string) error {
		flushed, err := app.FlushCache(cfg, flushPrefix)
		if err != nil {
			return err
		}
		if flushed {
			fmt.Fprintf(cmd.OutOrStdout(), "flushed %s\n", flushPrefix)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "nothing cached under %s\n", flushPrefix)
		}
		return nil
	},
}
