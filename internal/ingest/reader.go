// Package ingest discovers crime data files on disk and loads them into a single dataset.
package ingest

import "errors"

// Table is the raw content of one file: a header row and its data rows.
type Table struct {
	Header []string
	Rows   [][]string
	// Lines maps each row to its 1-based source line, when the format has lines.
	Lines []int
}

// Reader decodes one tabular file format.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*Table, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// readerFor selects a registered reader for path.
func readerFor(path string) (Reader, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r, nil
		}
	}
	return nil, ErrUnsupported
}

// ErrUnsupported indicates no registered reader handles a file's extension.
var ErrUnsupported = errors.New("unsupported data file format")

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
