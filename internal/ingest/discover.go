package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KaramelBytes/crimescope-cli/internal/crime"
)

// DefaultExtensions are matched when no extension list is configured.
var DefaultExtensions = []string{".csv"}

// Discover walks root recursively and returns the sorted paths of files whose name ends in
// one of exts. A missing root yields *crime.ConfigurationError; a root without matches
// yields *crime.EmptyInputError.
func Discover(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, &crime.ConfigurationError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &crime.ConfigurationError{Path: root, Err: errors.New("not a directory")}
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if hasExtension(d.Name(), exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &crime.ConfigurationError{Path: root, Err: fmt.Errorf("walk: %w", err)}
	}
	if len(files) == 0 {
		return nil, &crime.EmptyInputError{Root: root, Extensions: exts}
	}
	sort.Strings(files)
	return files, nil
}

func hasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
