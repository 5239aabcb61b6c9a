package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"f1stats/internal/app"
)

var (
	year  int
	year2 int
)

func init() {
	for _, c := range []*cobra.Command{testingCmd, pointsCmd, calendarCmd} {
		c.Flags().IntVar(&year, "year", 0, "Season to collect.")
		_ = c.MarkFlagRequired("year")
		rootCmd.AddCommand(c)
	}
	testingCmd.Flags().IntVar(&year2, "year2", 0, "Last season of a range starting at --year.")
}

var testingCmd = &cobra.Command{
	Use:   "testing --year <year> [--year2 <year>]",
	Short: "Collects pre-season testing results joined with team strength.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		path, err := a.Testing(cmd.Context(), year, year2)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var pointsCmd = &cobra.Command{
	Use:   "points --year <year>",
	Short: "Collects the constructors' championship standings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		path, err := a.TeamPoints(cmd.Context(), year)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar --year <year>",
	Short: "Collects the race calendar with track names and lap counts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		path, err := a.RaceCalendar(cmd.Context(), year)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
