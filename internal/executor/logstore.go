package executor

import (
	"os"
	"path/filepath"
)

// DefaultLogDir is where step logs are written when nothing else is configured.
const DefaultLogDir = ".legl-dev/logs"

// LogStore maps log targets to append-only files under one directory.
type LogStore struct {
	dir string
}

// NewLogStore creates a store rooted at dir. The directory is created lazily.
func NewLogStore(dir string) *LogStore {
	if dir == "" {
		dir = DefaultLogDir
	}
	return &LogStore{dir: dir}
}

// Dir returns the root directory of the store.
func (s *LogStore) Dir() string {
	return s.dir
}

// Path returns the file a target writes to.
func (s *LogStore) Path(target string) string {
	return filepath.Join(s.dir, target+".log")
}

// Open creates the log directory if needed and opens the target's file for
// appending, creating it when absent.
func (s *LogStore) Open(target string) (*os.File, error) {
	path := s.Path(target)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, &LogError{Target: target, Path: path, OriginalError: err}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &LogError{Target: target, Path: path, OriginalError: err}
	}
	return f, nil
}
