package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
)

var (
	profTop      int
	profTieBreak string
	profRegion   string
	profOut      outputFlags
)

var profileCmd = &cobra.Command{
	Use:   "profile [dir]",
	Short: "Compare forces on the union of their most frequent crime types",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		top := cfg.TopN
		if cmd.Flags().Changed("top") {
			top = profTop
		}
		if top <= 0 {
			return fmt.Errorf("--top must be positive, got %d", top)
		}
		tieName := cfg.TopNTieBreak
		if cmd.Flags().Changed("tie-break") {
			tieName = profTieBreak
		}
		tie, err := analysis.ParseTieBreak(tieName)
		if err != nil {
			return err
		}
		sess, err := newSession(cmd, &profOut)
		if err != nil {
			return err
		}
		f, regionName, err := scope(profRegion, nil)
		if err != nil {
			return err
		}
		res, err := prepare(cmd, args)
		if err != nil {
			return err
		}
		t, sel := analysis.Profile(f.Apply(res.Dataset), top, tie)
		for _, g := range sel.Groups {
			t.Warnings = append(t.Warnings, fmt.Sprintf("%s top %d: %v", g, top, sel.PerGroup[g]))
		}
		if err := sess.table(t); err != nil {
			return err
		}
		if len(t.Rows) > 0 {
			err = sess.chart(regionName, "profile", "", t.Name, func(path string) error {
				return render.GroupedBars(t, analysis.MeasureCount, fmt.Sprintf("Top %d crime types per force", top), path)
			})
			if err != nil {
				return err
			}
		}
		return sess.close()
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().IntVar(&profTop, "top", 5, "crime types kept per force (default from config top_n)")
	profileCmd.Flags().StringVar(&profTieBreak, "tie-break", "first-seen", "order for equal counts: first-seen|lexical (default from config)")
	profileCmd.Flags().StringVar(&profRegion, "region", "", "restrict to a configured region")
	profOut.register(profileCmd)
}
