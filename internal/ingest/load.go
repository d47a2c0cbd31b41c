package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// Options controls how files are loaded.
type Options struct {
	// Sheet selects the worksheet for workbook inputs; empty means the first sheet.
	Sheet string
	// OnFile, if set, is called after each file is read with its row count.
	OnFile func(path string, rows int)
}

// Load reads every path and concatenates the rows into one dataset. The dataset's columns
// are the union of all headers in first-seen order. The first unreadable file aborts the
// load with a *crime.ParseError naming it.
func Load(paths []string, opt Options) (*crime.Dataset, error) {
	if len(paths) == 0 {
		return nil, errors.New("load: no input files")
	}
	ds := &crime.Dataset{}
	seen := map[string]bool{}
	for _, path := range paths {
		rd, err := readerFor(path)
		if err != nil {
			return nil, &crime.ParseError{File: path, Err: err}
		}
		t, err := rd.Read(path, opt)
		if err != nil {
			return nil, &crime.ParseError{File: path, Line: lineOf(err), Err: err}
		}
		for _, h := range t.Header {
			if h != "" && !seen[h] {
				seen[h] = true
				ds.Columns = append(ds.Columns, h)
			}
		}
		for i, row := range t.Rows {
			rec, err := decodeRow(t.Header, row)
			if err != nil {
				line := 0
				if i < len(t.Lines) {
					line = t.Lines[i]
				}
				return nil, &crime.ParseError{File: path, Line: line, Err: err}
			}
			ds.Records = append(ds.Records, rec)
		}
		if opt.OnFile != nil {
			opt.OnFile(path, len(t.Rows))
		}
	}
	return ds, nil
}

// decodeRow maps one raw row onto a Record. Empty cells are nulls.
func decodeRow(header, row []string) (crime.Record, error) {
	var rec crime.Record
	for j, name := range header {
		if name == "" || j >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[j])
		if v == "" {
			continue
		}
		switch name {
		case crime.ColMonth:
			rec.Month = crime.Month{Raw: v}
		case crime.ColForce:
			rec.Force = v
		case crime.ColCrimeType:
			rec.CrimeType = v
		case crime.ColOutcome:
			rec.Outcome = v
		case crime.ColLongitude:
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return rec, fmt.Errorf("%s %q is not a number", name, v)
			}
			rec.Longitude = crime.Some(x)
		case crime.ColLatitude:
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return rec, fmt.Errorf("%s %q is not a number", name, v)
			}
			rec.Latitude = crime.Some(x)
		default:
			if rec.Fields == nil {
				rec.Fields = make(map[string]string)
			}
			rec.Fields[name] = v
		}
	}
	return rec, nil
}

func lineOf(err error) int {
	var we *rowWidthError
	if errors.As(err, &we) {
		return we.line
	}
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return ce.Line
	}
	return 0
}
