package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	forgeerrors "github.com/kchia/component-forge/internal/errors"
)

// Library is an immutable snapshot of the loaded pattern corpus.
// Never mutate a Library after construction; build a new one instead.
type Library struct {
	patterns []Pattern
	byID     map[string]*Pattern
}

// libraryFile matches the on-disk format: either a bare JSON array of
// patterns or an object with a "patterns" key.
type libraryFile struct {
	Patterns []Pattern `json:"patterns"`
}

// NewLibrary builds a snapshot from a pattern slice, validating each
// pattern and rejecting duplicate ids. Patterns are stored sorted by id
// so iteration order is deterministic.
func NewLibrary(patterns []Pattern) (*Library, error) {
	sorted := make([]Pattern, len(patterns))
	copy(sorted, patterns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[string]*Pattern, len(sorted))
	for i := range sorted {
		p := &sorted[i]
		if err := p.Validate(); err != nil {
			return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusInvalid, "invalid pattern in library", err)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusInvalid,
				fmt.Sprintf("duplicate pattern id %q", p.ID), nil)
		}
		byID[p.ID] = p
	}

	return &Library{patterns: sorted, byID: byID}, nil
}

// LoadFile loads a pattern library from a JSON file, or from every .json
// file in a directory.
func LoadFile(path string) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusNotFound,
			fmt.Sprintf("pattern library not found at %s", path), err).
			WithSuggestion("check corpus.path in the config file")
	}

	if info.IsDir() {
		return loadDir(path)
	}

	patterns, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	return NewLibrary(patterns)
}

func loadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusNotFound, "failed to read pattern directory", err)
	}

	var patterns []Pattern
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ps, err := parseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, ps...)
	}
	return NewLibrary(patterns)
}

func parseFile(path string) ([]Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusNotFound,
			fmt.Sprintf("failed to read %s", path), err)
	}

	// Bare array form first, then the wrapped object form.
	var patterns []Pattern
	if err := json.Unmarshal(data, &patterns); err == nil {
		return patterns, nil
	}

	var file libraryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, forgeerrors.New(forgeerrors.ErrCodeCorpusInvalid,
			fmt.Sprintf("failed to parse %s", path), err).
			WithSuggestion("the library must be a JSON array of patterns or {\"patterns\": [...]}")
	}
	return file.Patterns, nil
}

// Len returns the number of patterns in the snapshot.
func (l *Library) Len() int {
	return len(l.patterns)
}

// Patterns returns the snapshot's patterns in id order. Callers must not
// modify the returned slice.
func (l *Library) Patterns() []Pattern {
	return l.patterns
}

// Get looks up a pattern by id.
func (l *Library) Get(id string) (*Pattern, bool) {
	p, ok := l.byID[id]
	return p, ok
}
