package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	cntBy     []string
	cntRegion string
	cntCrimes []string
	cntOut    outputFlags
)

var countsCmd = &cobra.Command{
	Use:   "counts [dir]",
	Short: "Count records per force, crime type, outcome or month",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dims := make([]analysis.Dimension, 0, len(cntBy))
		for _, s := range cntBy {
			d, err := analysis.ParseDimension(s)
			if err != nil {
				return err
			}
			dims = append(dims, d)
		}
		sess, err := newSession(cmd, &cntOut)
		if err != nil {
			return err
		}
		f, regionName, err := scope(cntRegion, cntCrimes)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		t := analysis.Count(f.Apply(res.Dataset), dims...)
		t.SortBy(analysis.MeasureCount, true)
		if err := sess.table(t); err != nil {
			return err
		}
		if len(dims) >= 1 && len(dims) <= 2 && len(t.Rows) > 0 {
			err = sess.chart(regionName, "counts", "", t.Name, func(path string) error {
				return render.GroupedBars(t, analysis.MeasureCount, "Crime counts", path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

// scope builds the filter shared by analysis commands: an optional named
// region and an optional crime-type list.
func scope(region string, crimes []string) (geo.Filter, string, error) {
	var f geo.Filter
	name := "all"
	if region != "" {
		r, err := cfg.Region(region)
		if err != nil {
			return f, "", err
		}
		f = geo.ForRegion(r)
		name = r.Name
	}
	if len(crimes) > 0 {
		f = f.WithCrimeTypes(crimes...)
	}
	return f, name, nil
}

func init() {
	rootCmd.AddCommand(countsCmd)
	countsCmd.Flags().StringSliceVar(&cntBy, "by", []string{"force"}, "dimensions to group by: force|crime-type|outcome|month|year|month-num")
	countsCmd.Flags().StringVar(&cntRegion, "region", "", "restrict to a configured region")
	countsCmd.Flags().StringArrayVar(&cntCrimes, "crime", nil, "restrict to these crime types (repeatable)")
	cntOut.register(countsCmd)
}
