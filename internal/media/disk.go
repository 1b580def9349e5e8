package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStorage stores uploads on the local filesystem and serves them from
// a static route.
type DiskStorage struct {
	dir     string
	baseURL string
}

func NewDisk(dir, baseURL string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStorage) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	_ = ctx
	ext := filepath.Ext(name)
	filename := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", err
	}
	return s.baseURL + "/" + filename, nil
}

func (s *DiskStorage) Delete(ctx context.Context, url string) error {
	_ = ctx
	filename := path.Base(url)
	if filename == "." || filename == "/" || filename == "" {
		return fmt.Errorf("invalid media url %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *DiskStorage) Dir() string { return s.dir }
