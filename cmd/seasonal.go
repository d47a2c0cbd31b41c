package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	seaCrimes []string
	seaScale  float64
	seaRegion string
	seaStrict bool
	seaOut    outputFlags
)

var seasonalCmd = &cobra.Command{
	Use:   "seasonal [dir]",
	Short: "Average monthly crime rate per calendar month",
	Long: `Counts crimes per force, crime type, year and month, averages each calendar month over the
years in which it was observed, and normalises by population (per 100,000 by default).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if seaScale <= 0 {
			return fmt.Errorf("--scale must be positive, got %g", seaScale)
		}
		sess, err := newSession(cmd, &seaOut)
		if err != nil {
			return err
		}
		f, regionName, err := scope(seaRegion, seaCrimes)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		t, err := analysis.SeasonalRate(f.Apply(res.Dataset), population(), seaScale, seaStrict)
		if err != nil {
			return err
		}
		if err := sess.table(t); err != nil {
			return err
		}
		rateName := t.Measures[len(t.Measures)-1]
		for _, ct := range t.Distinct(analysis.DimCrimeType) {
			sub := t.Where(analysis.DimCrimeType, ct)
			title := fmt.Sprintf("%s: average monthly rate per %s", ct, analysis.FormatValue(seaScale))
			err := sess.chart(regionName, "seasonal", ct, title, func(path string) error {
				return render.SeasonalLines(sub, analysis.DimForce, rateName, title, path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(seasonalCmd)
	seasonalCmd.Flags().StringArrayVar(&seaCrimes, "crime", nil, "crime types to include (repeatable; default all)")
	seasonalCmd.Flags().Float64Var(&seaScale, "scale", 100000, "express rates per this many residents")
	seasonalCmd.Flags().StringVar(&seaRegion, "region", "", "restrict to a configured region")
	seasonalCmd.Flags().BoolVar(&seaStrict, "strict", false, "fail when a force has no configured population")
	seaOut.register(seasonalCmd)
}
