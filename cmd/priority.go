package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	priRegion string
	priOut    outputFlags
)

var priorityCmd = &cobra.Command{
	Use:   "priority [dir]",
	Short: "Place each crime type on a volume vs unsolved-rate matrix for a region",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := newSession(cmd, &priOut)
		if err != nil {
			return err
		}
		f, regionName, err := scope(priRegion, nil)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		m, err := analysis.CrimePriority(f.Apply(res.Dataset), cfg.UnsolvedOutcome)
		if err != nil {
			return err
		}
		t := m.Table(analysis.DimCrimeType, analysis.MeasureTotal, analysis.MeasureUnsolvedRate)
		t.Name = fmt.Sprintf("priority matrix for %s", regionName)
		t.SortBy(analysis.MeasureTotal, true)
		if err := sess.table(t); err != nil {
			return err
		}
		if len(m.Points) > 0 {
			err = sess.chart(regionName, "priority", "", t.Name, func(path string) error {
				return render.PriorityScatter(m, fmt.Sprintf("Crime priority matrix: %s", regionName), path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(priorityCmd)
	priorityCmd.Flags().StringVar(&priRegion, "region", "oxford", "configured region to analyse")
	priOut.register(priorityCmd)
}
