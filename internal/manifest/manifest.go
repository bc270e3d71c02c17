// Package manifest records what a pipeline run read and wrote.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/glycoscope/internal/utils"
	"github.com/google/uuid"
)

// FileName is the manifest file written into the output directory.
const FileName = "manifest.json"

// Artifact kinds.
const (
	KindData  = "data"
	KindChart = "chart"
)

// Manifest describes one pipeline run persisted on disk.
type Manifest struct {
	RunID      string      `json:"run_id"`
	Input      string      `json:"input"`
	Target     string      `json:"target"`
	TopK       int         `json:"top_k"`
	Rows       RowCounts   `json:"rows"`
	Outliers   Outliers    `json:"outliers"`
	Ranking    []Correlate `json:"ranking,omitempty"`
	Artifacts  []Artifact  `json:"artifacts"`
	Warnings   []string    `json:"warnings,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

// RowCounts tracks the table size after each stage.
type RowCounts struct {
	Loaded   int `json:"loaded"`
	Cleaned  int `json:"cleaned"`
	Filtered int `json:"filtered"`
}

// Outliers holds the per-column violation counts.
type Outliers struct {
	IQR   map[string]int `json:"iqr"`
	Range map[string]int `json:"range"`
}

// Correlate is one entry of the correlation ranking.
type Correlate struct {
	Column string  `json:"column"`
	R      float64 `json:"r"`
}

// Artifact is a file written by the run.
type Artifact struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// New constructs an in-memory manifest for a run writing into dir. Call Save to persist.
func New(input, dir string) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Input:     input,
		StartedAt: time.Now(),
		rootDir:   dir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the directory holding the manifest.
func (m *Manifest) RootDir() string { return m.rootDir }

// AddArtifact records a written file.
func (m *Manifest) AddArtifact(kind, path string) {
	name := filepath.Base(path)
	m.Artifacts = append(m.Artifacts, Artifact{ID: uuid.NewString(), Kind: kind, Name: name, Path: path})
}

// Paths returns every artifact path sorted.
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.Artifacts))
	for _, a := range m.Artifacts {
		out = append(out, a.Path)
	}
	sort.Strings(out)
	return out
}

// Save writes manifest.json using atomic write and returns its path.
func (m *Manifest) Save() (string, error) {
	if m.rootDir == "" {
		return "", errors.New("manifest directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return "", fmt.Errorf("ensure dir: %w", err)
	}
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.rootDir, FileName)
	return path, utils.SafeWriteFile(path, data)
}
