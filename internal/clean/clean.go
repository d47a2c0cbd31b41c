// Package clean normalizes a loaded crime dataset before aggregation.
package clean

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Options controls the cleaning steps.
type Options struct {
	// DropColumns are removed from the dataset before anything else.
	DropColumns []string
	// TolerateMissing allows DropColumns entries that are not present. When false a missing
	// column is reported as *crime.MissingColumnError, unless the input was already cleaned.
	TolerateMissing bool
}

// DefaultOptions drops the identifier and free-text context columns, tolerating their absence.
func DefaultOptions() Options {
	return Options{
		DropColumns:     []string{crime.ColContext, crime.ColCrimeID},
		TolerateMissing: true,
	}
}

// Report summarizes what a Clean call removed.
type Report struct {
	Input          int
	DroppedColumns []string
	DroppedRows    int
	Output         int
}

// Clean returns a new dataset with the configured columns dropped, records lacking a
// longitude or latitude removed, and every month parsed from "YYYY-MM". The input is not
// modified. Running Clean on its own output yields an equal dataset.
func Clean(ds *crime.Dataset, opt Options) (*crime.Dataset, Report, error) {
	rep := Report{Input: ds.Len()}
	if ds == nil {
		return &crime.Dataset{Cleaned: true}, rep, nil
	}

	drop := map[string]bool{}
	for _, col := range opt.DropColumns {
		if !ds.HasColumn(col) {
			if !opt.TolerateMissing && !ds.Cleaned {
				return nil, rep, &crime.MissingColumnError{Column: col}
			}
			continue
		}
		drop[col] = true
		rep.DroppedColumns = append(rep.DroppedColumns, col)
	}

	out := &crime.Dataset{Cleaned: true}
	for _, c := range ds.Columns {
		if !drop[c] {
			out.Columns = append(out.Columns, c)
		}
	}

	for i, r := range ds.Records {
		if !r.Longitude.Valid || !r.Latitude.Valid {
			rep.DroppedRows++
			continue
		}
		rec := r.Clone()
		for col := range drop {
			delete(rec.Fields, col)
		}
		if !rec.Month.Parsed() {
			m, err := crime.ParseMonth(rec.Month.Raw)
			if err != nil {
				var fe *crime.FormatError
				if errors.As(err, &fe) {
					fe.Row = i
				}
				return nil, rep, fmt.Errorf("clean month: %w", err)
			}
			rec.Month = m
		}
		out.Records = append(out.Records, rec)
	}
	rep.Output = out.Len()
	return out, rep, nil
}
