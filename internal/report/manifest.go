// Package report records the artifacts a run writes to the output directory.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/crimescope-cli/internal/utils"
)

const manifestFileName = "manifest.json"

// Artifact is one file written by a command.
type Artifact struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Command   string    `json:"command"`
	Kind      string    `json:"kind"` // table or chart
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Format    string    `json:"format,omitempty"`
	Rows      int       `json:"rows,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Manifest lists every artifact in an output directory across runs.
type Manifest struct {
	Artifacts []*Artifact `json:"artifacts"`
	UpdatedAt time.Time   `json:"updated_at"`

	dir string
}

// Run groups the artifacts of one command invocation.
type Run struct {
	ID      string
	Command string
	m       *Manifest
}

// Open loads manifest.json from dir, or starts an empty one if absent.
func Open(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Manifest{dir: dir}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	m.dir = dir
	return &m, nil
}

// Dir returns the output directory.
func (m *Manifest) Dir() string { return m.dir }

// NewRun starts a run with a fresh id.
func (m *Manifest) NewRun(command string) *Run {
	return &Run{ID: uuid.NewString(), Command: command, m: m}
}

// Path resolves a file name inside the output directory.
func (r *Run) Path(name string) string { return filepath.Join(r.m.dir, name) }

// Record adds an artifact written at path. A previous entry for the same
// path is replaced.
func (r *Run) Record(kind, name, path, format string, rows int) *Artifact {
	rel, err := filepath.Rel(r.m.dir, path)
	if err != nil {
		rel = path
	}
	a := &Artifact{
		ID:        uuid.NewString(),
		RunID:     r.ID,
		Command:   r.Command,
		Kind:      kind,
		Name:      name,
		Path:      filepath.ToSlash(rel),
		Format:    format,
		Rows:      rows,
		CreatedAt: time.Now().UTC(),
	}
	kept := r.m.Artifacts[:0]
	for _, x := range r.m.Artifacts {
		if x.Path != a.Path {
			kept = append(kept, x)
		}
	}
	r.m.Artifacts = append(kept, a)
	return a
}

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.dir == "" {
		return errors.New("manifest directory not set")
	}
	sort.SliceStable(m.Artifacts, func(i, j int) bool { return m.Artifacts[i].CreatedAt.Before(m.Artifacts[j].CreatedAt) })
	m.UpdatedAt = time.Now().UTC()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.dir, manifestFileName), data)
}

// ByRun returns the artifacts of one run in write order.
func (m *Manifest) ByRun(runID string) []*Artifact {
	var out []*Artifact
	for _, a := range m.Artifacts {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out
}
