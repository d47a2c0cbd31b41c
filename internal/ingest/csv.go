package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".csv")
}

// Read parses a comma-separated file with a header row. Rows wider than the header are
// rejected; shorter rows are padded with empty (null) cells.
func (csvReader) Read(path string, _ Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	ncol := len(header)

	t := &Table{Header: header}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		line, _ := r.FieldPos(0)
		if len(rec) > ncol {
			return nil, &rowWidthError{line: line, got: len(rec), want: ncol}
		}
		if len(rec) < ncol {
			tmp := make([]string, ncol)
			copy(tmp, rec)
			rec = tmp
		}
		t.Rows = append(t.Rows, rec)
		t.Lines = append(t.Lines, line)
	}
	return t, nil
}

type rowWidthError struct {
	line      int
	got, want int
}

func (e *rowWidthError) Error() string {
	return fmt.Sprintf("line %d: expected %d fields, saw %d", e.line, e.want, e.got)
}
