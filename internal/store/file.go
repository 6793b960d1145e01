package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Read when the backing file does not exist.
var ErrNotFound = fmt.Errorf("stats document: %w", fs.ErrNotExist)

// File is a Stats document stored as one JSON file. Reads and writes are
// whole-document; nothing is locked and writes are not atomic.
type File struct {
	path string
}

// NewFile returns a File backed by path. Nothing is touched on disk.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Read loads and decodes the whole document. A missing file yields
// ErrNotFound; Read never creates it.
func (f *File) Read() (Stats, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	stats := make(Stats)
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}
	for name, rec := range stats {
		if rec == nil {
			delete(stats, name)
			continue
		}
		normalize(rec)
	}
	return stats, nil
}

// Write creates the parent directory if needed and overwrites the file with
// the encoded document.
func (f *File) Write(stats Stats) error {
	if stats == nil {
		stats = Stats{}
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}
	return os.WriteFile(f.path, data, 0o644)
}

// LoadOrInit reads the document, writing an empty one first if the file
// does not exist yet.
func (f *File) LoadOrInit() (Stats, error) {
	stats, err := f.Read()
	if errors.Is(err, ErrNotFound) {
		if err := f.Write(Stats{}); err != nil {
			return nil, fmt.Errorf("initializing %s: %w", f.path, err)
		}
		return f.Read()
	}
	return stats, err
}

// normalize repairs fields that older documents may carry in legacy shapes.
func normalize(rec *UserStatRecord) {
	if rec.LastActive != nil && rec.LastActive.IsZero() {
		rec.LastActive = nil
	}
	if rec.History == nil {
		rec.History = make(map[Day]HistoryEntry)
	}
}
