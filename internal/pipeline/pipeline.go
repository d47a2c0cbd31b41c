// Package pipeline runs the shared discover, load and clean stages every
// analysis command starts from.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/KaramelBytes/crimescope-cli/internal/clean"
	"github.com/KaramelBytes/crimescope-cli/internal/crime"
	"github.com/KaramelBytes/crimescope-cli/internal/ingest"
)

// Options for Prepare.
type Options struct {
	Root       string
	Extensions []string
	Sheet      string
	Clean      clean.Options
	// Progress receives a file progress bar; nil disables it.
	Progress io.Writer
	Logger   *slog.Logger
}

// Result is the prepared dataset plus what each stage saw.
type Result struct {
	Files   []string
	Dataset *crime.Dataset
	Report  clean.Report
}

// Prepare discovers input files under opt.Root, loads them and cleans the result.
func Prepare(ctx context.Context, opt Options) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	exts := opt.Extensions
	if len(exts) == 0 {
		exts = ingest.DefaultExtensions
	}

	files, err := ingest.Discover(opt.Root, exts)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	log.Info("discovered input files", "root", opt.Root, "files", len(files))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opt.Progress != nil {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(opt.Progress),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Loading files..."),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(opt.Progress) }),
		)
	}
	raw, err := ingest.Load(files, ingest.Options{
		Sheet: opt.Sheet,
		OnFile: func(path string, rows int) {
			log.Debug("loaded file", "file", filepath.Base(path), "rows", rows)
			if bar != nil {
				if err := bar.Add(1); err != nil {
					log.Warn("failed to update progress bar", "error", err)
				}
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	log.Info("loaded records", "records", raw.Len(), "columns", len(raw.Columns))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, rep, err := clean.Clean(raw, opt.Clean)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	log.Info("cleaned dataset",
		"records", rep.Output,
		"dropped_rows", rep.DroppedRows,
		"dropped_columns", rep.DroppedColumns)
	return &Result{Files: files, Dataset: ds, Report: rep}, nil
}
