package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
	"github.com/KaramelBytes/crimescope-cli/internal/geo"
)

// Logging configures the slog handler.
type Logging struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// Global configuration structure.
type Global struct {
	RootPath   string   `mapstructure:"root_path" yaml:"root_path"`
	Extensions []string `mapstructure:"extensions" yaml:"extensions" validate:"min=1,dive,startswith=."`
	XLSXSheet  string   `mapstructure:"xlsx_sheet" yaml:"xlsx_sheet,omitempty"`
	OutputDir  string   `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`

	PopulationTable map[string]int        `mapstructure:"population_table" yaml:"population_table" validate:"dive,gt=0"`
	RegionBounds    map[string]geo.Region `mapstructure:"region_bounds" yaml:"region_bounds" validate:"dive"`

	UnsolvedOutcome        string `mapstructure:"unsolved_outcome" yaml:"unsolved_outcome" validate:"required"`
	TopN                   int    `mapstructure:"top_n" yaml:"top_n" validate:"gte=1"`
	TopNTieBreak           string `mapstructure:"top_n_tie_break" yaml:"top_n_tie_break" validate:"oneof=first-seen lexical"`
	ObservationYears       int    `mapstructure:"observation_years" yaml:"observation_years" validate:"gte=1"`
	TolerateMissingColumns bool   `mapstructure:"tolerate_missing_columns" yaml:"tolerate_missing_columns"`

	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Defaults for a fresh install.
var (
	DefaultPopulation = map[string]int{
		"Thames Valley Police":        2340000,
		"Cambridgeshire Constabulary": 678600,
		"Metropolitan Police Service": 9000000,
	}
	DefaultRegions = map[string]geo.Region{
		"oxford": {
			Force:  "Thames Valley Police",
			Bounds: geo.Bounds{LonMin: -1.32, LonMax: -1.18, LatMin: 51.72, LatMax: 51.79},
		},
	}
)

const (
	envPrefix     = "CRIMESCOPE"
	dirName       = ".crimescope"
	defaultOutDir = "./crimescope-out"
)

// Default returns the built-in configuration.
func Default() *Global {
	pop := make(map[string]int, len(DefaultPopulation))
	for k, v := range DefaultPopulation {
		pop[k] = v
	}
	regions := make(map[string]geo.Region, len(DefaultRegions))
	for k, v := range DefaultRegions {
		regions[k] = v
	}
	return &Global{
		Extensions:             []string{".csv"},
		OutputDir:              defaultOutDir,
		PopulationTable:        pop,
		RegionBounds:           regions,
		UnsolvedOutcome:        "Investigation complete; no suspect identified",
		TopN:                   5,
		TopNTieBreak:           "first-seen",
		ObservationYears:       2,
		TolerateMissingColumns: true,
		Logging:                Logging{Level: "info", Format: "text"},
	}
}

// DefaultPath is ~/.crimescope/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.crimescope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A missing default config file is not an error; an explicit cfgFile must exist.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("root_path", d.RootPath)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("xlsx_sheet", "")
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("population_table", d.PopulationTable)
	v.SetDefault("region_bounds", regionDefaults(d.RegionBounds))
	v.SetDefault("unsolved_outcome", d.UnsolvedOutcome)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("top_n_tie_break", d.TopNTieBreak)
	v.SetDefault("observation_years", d.ObservationYears)
	v.SetDefault("tolerate_missing_columns", d.TolerateMissingColumns)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &crime.ConfigurationError{Path: cfgFile, Err: err}
		}
	} else {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(path))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, &crime.ConfigurationError{Path: path, Err: err}
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	for name, r := range c.RegionBounds {
		r.Name = name
		c.RegionBounds[name] = r
	}
	return &c, nil
}

func regionDefaults(in map[string]geo.Region) map[string]any {
	out := make(map[string]any, len(in))
	for name, r := range in {
		out[name] = map[string]any{
			"force":   r.Force,
			"lon_min": r.LonMin,
			"lon_max": r.LonMax,
			"lat_min": r.LatMin,
			"lat_max": r.LatMax,
		}
	}
	return out
}

// Validate checks struct constraints and returns a readable error listing every violation.
func (c *Global) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Region returns the named region.
func (c *Global) Region(name string) (geo.Region, error) {
	if r, ok := c.RegionBounds[name]; ok {
		r.Name = name
		return r, nil
	}
	for k, r := range c.RegionBounds {
		if strings.EqualFold(k, name) {
			r.Name = k
			return r, nil
		}
	}
	return geo.Region{}, fmt.Errorf("unknown region %q (configured: %s)", name, strings.Join(c.RegionNames(), ", "))
}

// RegionNames lists configured regions alphabetically.
func (c *Global) RegionNames() []string {
	names := make([]string, 0, len(c.RegionBounds))
	for k := range c.RegionBounds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
