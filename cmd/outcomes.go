package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	outCrimes  []string
	outRegion  string
	outOutcome string
	outExpand  bool
	outOut     outputFlags
)

var outcomesCmd = &cobra.Command{
	Use:   "outcomes [dir]",
	Short: "Share of crimes closed with no suspect identified, per crime type and force",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome := cfg.UnsolvedOutcome
		if cmd.Flags().Changed("outcome") {
			outcome = outOutcome
		}
		sess, err := newSession(cmd, &outOut)
		if err != nil {
			return err
		}
		f, regionName, err := scope(outRegion, outCrimes)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		t := analysis.OutcomeRate(f.Apply(res.Dataset), analysis.OutcomeOptions{Outcome: outcome, Expand: outExpand},
			analysis.DimCrimeType, analysis.DimForce)
		if err := sess.table(t); err != nil {
			return err
		}
		if len(t.Rows) > 0 {
			err = sess.chart(regionName, "unsolved", "", t.Name, func(path string) error {
				return render.GroupedBars(t, analysis.MeasureUnsolvedRate, "Unsolved rate (%)", path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(outcomesCmd)
	outcomesCmd.Flags().StringArrayVar(&outCrimes, "crime", nil, "crime types to compare (repeatable; default all)")
	outcomesCmd.Flags().StringVar(&outRegion, "region", "", "restrict to a configured region")
	outcomesCmd.Flags().StringVar(&outOutcome, "outcome", "", "outcome category counted as unsolved (default from config)")
	outcomesCmd.Flags().BoolVar(&outExpand, "expand", true, "list every crime type for every force, zero-filled")
	outOut.register(outcomesCmd)
}
