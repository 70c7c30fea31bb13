package filesystem

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/catalog-imager/internal/entity"
)

// StoreImpl implements repository.FileStore on a local directory.
type StoreImpl struct {
	dir         string
	mappingFile string
}

// NewStore creates a store rooted at dir that writes its artifact to
// dir/mappingFile.
func NewStore(dir, mappingFile string) *StoreImpl {
	return &StoreImpl{dir: dir, mappingFile: mappingFile}
}

// Prepare creates the output directory if it does not exist.
func (s *StoreImpl) Prepare(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}
	return nil
}

// SaveImage writes data to dir/name, replacing an existing file.
func (s *StoreImpl) SaveImage(ctx context.Context, name string, data []byte) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid image file name %q", name)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
		return fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return nil
}

// WriteMapping replaces the artifact with mapping, rendered as indented JSON.
// A nil item list is written as an empty array.
func (s *StoreImpl) WriteMapping(ctx context.Context, mapping *entity.Mapping) error {
	out := *mapping
	if out.Items == nil {
		out.Items = []entity.MappingEntry{}
	}
	raw, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	raw = append(raw, '\n')
	if err := writeFileAtomic(s.MappingPath(), raw); err != nil {
		return fmt.Errorf("failed to write mapping %s: %w", s.MappingPath(), err)
	}
	return nil
}

// MappingPath reports where the artifact is written.
func (s *StoreImpl) MappingPath() string {
	return filepath.Join(s.dir, s.mappingFile)
}

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over path, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
