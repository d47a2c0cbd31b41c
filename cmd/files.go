package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/ingest"
)

var filesCmd = &cobra.Command{
	Use:   "files [dir]",
	Short: "List the data files that would be loaded",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}
		paths, err := ingest.Discover(root, cfg.Extensions)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ %d file(s) under %s\n", len(paths), root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
}
