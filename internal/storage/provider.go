// Package storage gives read and atomic write access to a directory of notes.
package storage

import "time"

// File describes one Markdown note on disk.
type File struct {
	Path     string // relative to the root, slash separated
	Checksum string
	ModTime  time.Time
}

// Provider is the interface for note directory operations.
type Provider interface {
	// Root returns the absolute directory all paths are relative to.
	Root() string
	// List returns every .md file under dir in lexical path order.
	List(dir string) ([]File, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
}
