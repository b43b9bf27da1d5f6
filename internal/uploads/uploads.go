// Package uploads retains raw uploaded files on disk under
// collision-resistant names so a bad ingestion run can be replayed.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Store writes raw uploads into a single directory
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a store
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create upload directory")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are written to
func (s *Store) Dir() string {
	return s.dir
}

// Save persists the contents of r under a millisecond-timestamp-prefixed
// version of the original filename and returns the full path
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitizeName(originalName))
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to create upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", errors.Wrap(err, "failed to write upload file")
	}

	return path, nil
}

// sanitizeName strips path components and replaces characters that are
// awkward in filenames
func sanitizeName(name string) string {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "upload"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
