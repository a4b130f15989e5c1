// Package manifest records which outputs a build produced and their content
// fingerprints.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mipbuild/pkg/builder"
	"mipbuild/pkg/fileinfo"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Entry describes one written destination.
type Entry struct {
	Output      string `yaml:"output"`
	Source      string `yaml:"source"`
	Encoding    string `yaml:"encoding,omitempty"`
	Size        int    `yaml:"size"`
	Fingerprint string `yaml:"fingerprint"`
}

// Manifest is the YAML document written after a build.
type Manifest struct {
	BuildID     string    `yaml:"build_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Entries     []Entry   `yaml:"entries"`
}

// FromFiles lists every destination of files, in output order.
func FromFiles(buildID string, files []*fileinfo.FileInfo) *Manifest {
	m := &Manifest{
		BuildID:     buildID,
		GeneratedAt: time.Now().UTC(),
		Entries:     []Entry{},
	}
	for _, f := range files {
		dests := builder.Destinations(f)
		if len(dests) == 0 {
			continue
		}
		size := len(f.Bytes())
		for _, dest := range dests {
			m.Entries = append(m.Entries, Entry{
				Output:      dest,
				Source:      f.RelativePath(),
				Encoding:    f.Encoding(),
				Size:        size,
				Fingerprint: f.Fingerprint(),
			})
		}
	}
	return m
}

// Marshal renders m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores m at path on fsys, creating parent directories.
func Write(fsys afero.Fs, path string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest previously written by Write.
func Read(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}
