package fixtures

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samvad-hq/samvad-title-fetcher/internal/domain"
)

// Package fixtures resolves logical fixture names to bundled response bodies.

//go:embed manifest.yaml data/*.json
var bundled embed.FS

// ManifestFile is the optional index at the root of a fixtures filesystem.
const ManifestFile = "manifest.yaml"

// Entry is one manifest record.
type Entry struct {
	Name        string `yaml:"name"`
	File        string `yaml:"file"`
	Description string `yaml:"description"`
}

type manifest struct {
	Fixtures []Entry `yaml:"fixtures"`
}

// Store resolves fixture names against a filesystem. Only the manifest index
// is held in memory; fixture bodies are read on every Resolve.
type Store struct {
	fsys  fs.FS
	index map[string]string
}

// Bundled returns a Store over the fixtures compiled into the binary.
func Bundled() *Store {
	st, err := New(bundled)
	if err != nil {
		panic(fmt.Sprintf("bundled fixtures manifest: %v", err))
	}
	return st
}

// New builds a Store over fsys. When fsys has no manifest, name n maps to n.json.
func New(fsys fs.FS) (*Store, error) {
	if fsys == nil {
		return nil, errors.New("fixtures filesystem is nil")
	}

	raw, err := fs.ReadFile(fsys, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return &Store{fsys: fsys}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read fixtures manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode fixtures manifest: %w", err)
	}

	index := make(map[string]string, len(m.Fixtures))
	for i, e := range m.Fixtures {
		name := strings.TrimSpace(e.Name)
		file := strings.TrimSpace(e.File)
		if !validName(name) {
			return nil, fmt.Errorf("fixtures[%d]: invalid name %q", i, e.Name)
		}
		if file == "" || !fs.ValidPath(path.Clean(file)) {
			return nil, fmt.Errorf("fixtures[%d]: invalid file %q", i, e.File)
		}
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("duplicate fixture name %q", name)
		}
		index[name] = path.Clean(file)
	}

	return &Store{fsys: fsys, index: index}, nil
}

// Resolve returns the bytes of the named fixture. An unknown name or missing
// file is domain.NotFound; any other read failure is domain.Unreadable.
func (s *Store) Resolve(name string) ([]byte, error) {
	file, ok := s.lookup(name)
	if !ok {
		return nil, domain.NewFetchError(domain.NotFound, name, errors.New("no such fixture"))
	}

	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewFetchError(domain.NotFound, name, err)
		}
		return nil, domain.NewFetchError(domain.Unreadable, name, err)
	}
	return data, nil
}

// Names lists the fixtures known to the manifest, if any.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.index))
	for name := range s.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Store) lookup(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if !validName(name) {
		return "", false
	}
	if s.index != nil {
		file, ok := s.index[name]
		return file, ok
	}
	return name + ".json", true
}

// validName rejects anything that looks like a path rather than a key.
func validName(name string) bool {
	if name == "" || name == "." || strings.Contains(name, "..") {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
