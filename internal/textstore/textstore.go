// Package textstore persists the raw text of each ingested book as one
// flat file addressed by normalized title. The context extractor reads
// these files back for raw-line windows and whole-book content.
package textstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes per-book raw text files under a single
// directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("text directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create text directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the file path a book's raw text is stored at.
func (s *Store) Path(title string) string {
	return filepath.Join(s.dir, strings.ToLower(title)+".txt")
}

// Write stores a book's raw text, replacing any previous content.
func (s *Store) Write(title, text string) error {
	if err := os.WriteFile(s.Path(title), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write raw text for %q: %w", title, err)
	}
	return nil
}

// Read returns a book's full raw text. os.IsNotExist distinguishes a
// missing file from other IO failures.
func (s *Store) Read(title string) (string, error) {
	data, err := os.ReadFile(s.Path(title))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadLines returns a book's raw text split into lines.
func (s *Store) ReadLines(title string) ([]string, error) {
	text, err := s.Read(title)
	if err != nil {
		return nil, err
	}
	return strings.Split(text, "\n"), nil
}

// Remove deletes a book's raw text file. A missing file is not an
// error; the book may have been ingested before its text was
// persisted.
func (s *Store) Remove(title string) error {
	err := os.Remove(s.Path(title))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove raw text for %q: %w", title, err)
	}
	return nil
}
