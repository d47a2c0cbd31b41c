package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/KaramelBytes/crimescope-cli/internal/config"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
)

var cfgInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set crimescope configuration",
	// Config editing must work even when the stored file fails validation.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		setupLogging(cmd, c.Logging)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			p, err := cfgpkg.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !cfgInitForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := cfgpkg.Save(cfgpkg.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default config to %s\n", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a config value and save to disk.

Scalar keys: root_path, output_dir, xlsx_sheet, extensions (comma separated),
unsolved_outcome, top_n, top_n_tie_break, observation_years, tolerate_missing_columns,
logging.level, logging.format.

Map keys:
  population.<force> <residents>       e.g. population."Kent Police" 1900000
  region.<name> <force>,<lon_min>,<lon_max>,<lat_min>,<lat_max>`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applySetting(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	switch {
	case strings.HasPrefix(key, "population."):
		force := strings.Trim(strings.TrimPrefix(key, "population."), `"`)
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid population for %s: %v", force, val)
		}
		if c.PopulationTable == nil {
			c.PopulationTable = map[string]int{}
		}
		c.PopulationTable[force] = n
		return nil
	case strings.HasPrefix(key, "region."):
		name := strings.TrimPrefix(key, "region.")
		parts := strings.Split(val, ",")
		if len(parts) != 5 {
			return fmt.Errorf("region value must be force,lon_min,lon_max,lat_min,lat_max")
		}
		nums := make([]float64, 4)
		for i, p := range parts[1:] {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate %q: %w", p, err)
			}
			nums[i] = f
		}
		if c.RegionBounds == nil {
			c.RegionBounds = map[string]geo.Region{}
		}
		c.RegionBounds[name] = geo.Region{
			Name:   name,
			Force:  strings.TrimSpace(parts[0]),
			Bounds: geo.Bounds{LonMin: nums[0], LonMax: nums[1], LatMin: nums[2], LatMax: nums[3]},
		}
		return nil
	}

	switch key {
	case "root_path":
		c.RootPath = val
	case "output_dir":
		c.OutputDir = val
	case "xlsx_sheet":
		c.XLSXSheet = val
	case "extensions":
		var exts []string
		for _, e := range strings.Split(val, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		c.Extensions = exts
	case "unsolved_outcome":
		c.UnsolvedOutcome = val
	case "top_n":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for top_n: %w", err)
		}
		c.TopN = i
	case "top_n_tie_break":
		c.TopNTieBreak = val
	case "observation_years":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for observation_years: %w", err)
		}
		c.ObservationYears = i
	case "tolerate_missing_columns":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for tolerate_missing_columns: %w", err)
		}
		c.TolerateMissingColumns = b
	case "logging.level":
		c.Logging.Level = val
	case "logging.format":
		c.Logging.Format = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&cfgInitForce, "force", false, "overwrite an existing config file")
}
