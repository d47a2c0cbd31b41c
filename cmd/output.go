package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/crimescope-cli/internal/analysis"
	"github.com/KaramelBytes/crimescope-cli/internal/clean"
	"github.com/KaramelBytes/crimescope-cli/internal/crime"
	"github.com/KaramelBytes/crimescope-cli/internal/pipeline"
	"github.com/KaramelBytes/crimescope-cli/internal/render"
	"github.com/KaramelBytes/crimescope-cli/internal/report"
	"github.com/KaramelBytes/crimescope-cli/internal/utils"
)

// outputFlags are shared by every analysis command.
type outputFlags struct {
	format string
	output string
	chart  bool
}

func (o *outputFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&o.format, "format", "f", "table", "output format: table|markdown|csv|json")
	c.Flags().StringVarP(&o.output, "output", "o", "", "optional path to also write the table (format from --format)")
	c.Flags().BoolVar(&o.chart, "chart", false, "render PNG charts into output_dir")
}

// session writes a command's tables and charts and records them in the manifest.
type session struct {
	cmd      *cobra.Command
	flags    *outputFlags
	format   render.Format
	manifest *report.Manifest
	run      *report.Run
}

func newSession(cmd *cobra.Command, flags *outputFlags) (*session, error) {
	f, err := render.ParseFormat(flags.format)
	if err != nil {
		return nil, err
	}
	return &session{cmd: cmd, flags: flags, format: f}, nil
}

func (s *session) ensureRun() (*report.Run, error) {
	if s.run != nil {
		return s.run, nil
	}
	if err := utils.EnsureDir(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	m, err := report.Open(cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	s.manifest = m
	s.run = m.NewRun(s.cmd.Name())
	return s.run, nil
}

// table prints t to stdout and, with --output, writes it to disk.
func (s *session) table(t *analysis.Table) error {
	if err := render.Write(s.cmd.OutOrStdout(), t, s.format); err != nil {
		return err
	}
	if s.flags.output == "" {
		return nil
	}
	var buf bytes.Buffer
	var err error
	if s.format == render.FormatTable {
		err = render.Plain(&buf, t)
	} else {
		err = render.Write(&buf, t, s.format)
	}
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(s.flags.output, buf.Bytes()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	run, err := s.ensureRun()
	if err != nil {
		return err
	}
	run.Record("table", t.Name, s.flags.output, string(s.format), len(t.Rows))
	fmt.Fprintf(s.cmd.ErrOrStderr(), "✓ Wrote %s to %s\n", t.Name, s.flags.output)
	return nil
}

// chart renders an image named by region, artifact and crime type when --chart is set.
func (s *session) chart(region, artifact, crimeType, title string, draw func(path string) error) error {
	if !s.flags.chart {
		return nil
	}
	run, err := s.ensureRun()
	if err != nil {
		return err
	}
	path := run.Path(render.ImageName(region, artifact, crimeType))
	if err := draw(path); err != nil {
		return err
	}
	run.Record("chart", title, path, "png", 0)
	fmt.Fprintf(s.cmd.ErrOrStderr(), "✓ Wrote chart %s\n", path)
	return nil
}

// close persists the manifest if anything was written.
func (s *session) close() error {
	if s.manifest == nil {
		return nil
	}
	return s.manifest.Save()
}

// rootArg resolves the directory to scan: positional argument, then root_path.
func rootArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.RootPath != "" {
		return cfg.RootPath, nil
	}
	return "", &crime.ConfigurationError{Path: "root_path", Err: fmt.Errorf("no input directory given; pass one or set root_path")}
}

// prepare runs discovery, loading and cleaning with the loaded configuration.
func prepare(cmd *cobra.Command, args []string) (*pipeline.Result, error) {
	root, err := rootArg(args)
	if err != nil {
		return nil, err
	}
	opts := clean.DefaultOptions()
	opts.TolerateMissing = cfg.TolerateMissingColumns

	var progress io.Writer
	if !noProgress {
		progress = cmd.ErrOrStderr()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return pipeline.Prepare(ctx, pipeline.Options{
		Root:       root,
		Extensions: cfg.Extensions,
		Sheet:      cfg.XLSXSheet,
		Clean:      opts,
		Progress:   progress,
	})
}

func population() analysis.Population { return analysis.Population(cfg.PopulationTable) }
