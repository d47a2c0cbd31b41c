package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	hotRegion string
	hotCrimes []string
	hotTheft  bool
	hotCols   int
	hotRows   int
	hotSigma  float64
	hotTop    int
	hotOut    outputFlags
)

// hotspotGroup is one map: a label and the crime types it covers (nil = all).
type hotspotGroup struct {
	label  string
	crimes []string
}

func hotspotGroups() []hotspotGroup {
	switch {
	case hotTheft:
		return []hotspotGroup{{label: "theft", crimes: analysis.TheftTypes}}
	case len(hotCrimes) > 0:
		groups := make([]hotspotGroup, len(hotCrimes))
		for i, c := range hotCrimes {
			groups[i] = hotspotGroup{label: c, crimes: []string{c}}
		}
		return groups
	default:
		return []hotspotGroup{{label: "all crime"}}
	}
}

var hotspotCmd = &cobra.Command{
	Use:   "hotspot [dir]",
	Short: "Bin a region's crime locations into a density grid",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if hotTheft && len(hotCrimes) > 0 {
			return fmt.Errorf("--theft and --crime are mutually exclusive")
		}
		sess, err := newSession(cmd, &hotOut)
		if err != nil {
			return err
		}
		region, err := cfg.Region(hotRegion)
		if err != nil {
			return err
		}
		base, _, err := scope(hotRegion, nil)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}

		combined := &analysis.Table{
			Name:       fmt.Sprintf("hotspots in %s (%dx%d grid)", region.Name, hotCols, hotRows),
			Dimensions: []analysis.Dimension{analysis.DimCrimeType, analysis.DimCellLon, analysis.DimCellLat},
			Measures:   []string{analysis.MeasureCount},
		}
		for _, g := range hotspotGroups() {
			f := base
			if len(g.crimes) > 0 {
				f = f.WithCrimeTypes(g.crimes...)
			}
			grid, err := analysis.Hotspot(f.Apply(res.Dataset), region.Bounds, hotCols, hotRows)
			if err != nil {
				return err
			}
			cells := grid.Table().Head(hotTop)
			for _, r := range cells.Rows {
				combined.Rows = append(combined.Rows, analysis.Row{
					Keys:   append([]string{g.label}, r.Keys...),
					Values: r.Values,
				})
			}
			if grid.Total == 0 {
				combined.Warnings = append(combined.Warnings, fmt.Sprintf("%s: no records inside %s", g.label, region.Bounds))
				continue
			}
			lon, lat, peak := grid.Peak()
			combined.Warnings = append(combined.Warnings,
				fmt.Sprintf("%s: %d records, busiest cell %.4f,%.4f with %s", g.label, grid.Total, lon, lat, analysis.FormatValue(peak)))

			title := fmt.Sprintf("%s hotspots: %s", region.Name, g.label)
			err = sess.chart(region.Name, "hotspot", g.label, title, func(path string) error {
				return render.Heatmap(grid.Smooth(hotSigma), title, path)
			})
			if err != nil {
				return err
			}
		}
		if err := sess.table(combined); err != nil {
			return err
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(hotspotCmd)
	hotspotCmd.Flags().StringVar(&hotRegion, "region", "oxford", "configured region to map")
	hotspotCmd.Flags().StringArrayVar(&hotCrimes, "crime", nil, "one map per crime type (repeatable; default all crime)")
	hotspotCmd.Flags().BoolVar(&hotTheft, "theft", false, "one map for the theft group ("+fmt.Sprint(len(analysis.TheftTypes))+" crime types)")
	hotspotCmd.Flags().IntVar(&hotCols, "cols", 40, "grid columns (longitude bins)")
	hotspotCmd.Flags().IntVar(&hotRows, "rows", 40, "grid rows (latitude bins)")
	hotspotCmd.Flags().Float64Var(&hotSigma, "sigma", 1.5, "Gaussian smoothing in cells for charts (0 = raw counts)")
	hotspotCmd.Flags().IntVar(&hotTop, "top", 10, "busiest cells listed per map (0 = all)")
	hotOut.register(hotspotCmd)
}
