package ds

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// File is the storage backend DS writes telemetry to. Tests substitute
// an in-memory fake; the hosted build uses StdFile.
type File interface {
	// Filename returns the name of the currently open file, or "" if none is open.
	Filename() string
	Write(buf []byte) (int, error)
	Flush() error
	Close()
}

// StdFile lazily creates a timestamped file under dir on first write,
// named "<prefix>_<YYYY-MM-DD>_<HH-MM-SS>.dat" where prefix is the
// last path element of dir.
type StdFile struct {
	dir    string
	prefix string
	f      *os.File
	name   string
}

// NewStdFile builds a StdFile that will create files under dir. dir is
// not created here — DS's caller is responsible for the directory
// existing.
func NewStdFile(dir string) *StdFile {
	prefix := filepath.Base(dir)
	if prefix == "" || prefix == "." || prefix == string(filepath.Separator) {
		prefix = "unnamed"
	}
	return &StdFile{dir: dir, prefix: prefix}
}

func (s *StdFile) Filename() string {
	if s.f == nil {
		return ""
	}
	return s.name
}

func (s *StdFile) open() error {
	name := fmt.Sprintf("%s_%s.dat", s.prefix, time.Now().UTC().Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create ds file at %s: %w", path, err)
	}
	s.f = f
	s.name = name
	return nil
}

func (s *StdFile) Write(buf []byte) (int, error) {
	if s.f == nil {
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	return s.f.Write(buf)
}

func (s *StdFile) Flush() error {
	if s.f == nil {
		return nil
	}
	return s.f.Sync()
}

func (s *StdFile) Close() {
	if s.f == nil {
		return
	}
	s.f.Close()
	s.f = nil
}
