package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	rateScale  float64
	rateYears  int
	rateBy     []string
	rateCrimes []string
	rateStrict bool
	rateOut    outputFlags
)

var rateCmd = &cobra.Command{
	Use:   "rate [dir]",
	Short: "Annual crimes per resident for each force",
	Long: `Counts crimes per force (optionally split further with --by), divides by the configured
population and the observation span in years, and scales the result (per 1,000 by default).
Forces without a population entry are dropped with a note unless --strict is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rateScale <= 0 {
			return fmt.Errorf("--scale must be positive, got %g", rateScale)
		}
		years := cfg.ObservationYears
		if cmd.Flags().Changed("years") {
			years = rateYears
		}
		if years <= 0 {
			return fmt.Errorf("--years must be positive, got %d", years)
		}
		var extra []analysis.Dimension
		for _, s := range rateBy {
			d, err := analysis.ParseDimension(s)
			if err != nil {
				return err
			}
			extra = append(extra, d)
		}
		sess, err := newSession(cmd, &rateOut)
		if err != nil {
			return err
		}
		f, _, err := scope("", rateCrimes)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		t, err := analysis.AnnualRate(f.Apply(res.Dataset), population(), rateScale, years, rateStrict, extra...)
		if err != nil {
			return err
		}
		if err := sess.table(t); err != nil {
			return err
		}
		rateName := t.Measures[len(t.Measures)-1]
		if len(t.Dimensions) <= 2 && len(t.Rows) > 0 {
			err = sess.chart("all", "rate", "", t.Name, func(path string) error {
				return render.GroupedBars(t, rateName, fmt.Sprintf("Annual crimes per %s residents", analysis.FormatValue(rateScale)), path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(rateCmd)
	rateCmd.Flags().Float64Var(&rateScale, "scale", 1000, "express rates per this many residents")
	rateCmd.Flags().IntVar(&rateYears, "years", 2, "observation span in years (default from config observation_years)")
	rateCmd.Flags().StringSliceVar(&rateBy, "by", nil, "extra dimensions besides force, e.g. crime-type")
	rateCmd.Flags().StringArrayVar(&rateCrimes, "crime", nil, "restrict to these crime types (repeatable)")
	rateCmd.Flags().BoolVar(&rateStrict, "strict", false, "fail when a force has no configured population")
	rateOut.register(rateCmd)
}
