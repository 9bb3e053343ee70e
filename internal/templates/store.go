package templates

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/jmreicha/aws-login/internal/core"
)

// Store reads and writes the templates file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for the templates file at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{path: path, logger: logger}
}

// Path returns the location of the templates file.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the templates file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Templates reads the templates file. A missing file is an empty collection.
func (s *Store) Templates() (Templates, error) {
	s.logger.Debug("reading templates", "path", s.path)

	// #nosec G304 -- templates path is from configuration or flags
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Templates{}, nil
		}
		return nil, core.WithContextf(err, "Could not open the templates file, %s.", s.path)
	}
	defer func() { _ = file.Close() }()

	templates, err := Parse(file)
	if err != nil {
		return nil, core.WithContextf(err, "Could not parse the templates file, %s.", s.path)
	}

	return templates, nil
}

// Save writes the collection to the templates file, replacing it atomically.
func (s *Store) Save(templates Templates) error {
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return core.WithContextf(err, "Could not encode the templates for, %s.", s.path)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return core.WithContextf(err, "Could not create the directory for, %s.", s.path)
	}

	if err := renameio.WriteFile(s.path, data, 0o600); err != nil {
		return core.WithContextf(err, "Could not write the templates file, %s.", s.path)
	}

	s.logger.Debug("wrote templates", "path", s.path, "count", len(templates))

	return nil
}

// Profiles reads the templates file and resolves every enabled template.
func (s *Store) Profiles() (Profiles, error) {
	templates, err := s.Templates()
	if err != nil {
		return nil, err
	}

	profiles, err := templates.Profiles()
	if err != nil {
		return nil, core.WithContextf(err, "Could not process the templates in, %s.", s.path)
	}

	s.logger.Debug("resolved profiles", "count", len(profiles))

	return profiles, nil
}
