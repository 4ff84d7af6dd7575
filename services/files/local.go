package filesvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Mithesh23/kmit-club-sub001/core"
)

var errOutsideRoot = errors.New("file is outside the media root")

// localStorage stores files under a root directory, served under a base URL.
type localStorage struct {
	root    string
	baseURL string
}

var _ core.FileStorage = (*localStorage)(nil) // interface compliance check

func NewLocalStorage(conf *core.Config) core.FileStorage {
	return &localStorage{
		root:    conf.Media.Root,
		baseURL: strings.TrimSuffix(conf.Media.URL, "/"),
	}
}

func (s *localStorage) Save(_ context.Context, dir, filename string, r io.Reader) (string, error) {
	rel := path.Join(path.Clean("/"+dir), path.Base(filename))
	fp := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media directory")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "writing file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing file")
	}
	return s.baseURL + rel, nil
}

// Delete removes the file served at url. Missing files are ignored.
func (s *localStorage) Delete(_ context.Context, url string) error {
	rel := strings.TrimPrefix(url, s.baseURL)
	if rel == url || path.Clean(rel) != rel || !strings.HasPrefix(rel, "/") {
		return errOutsideRoot
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting file")
	}
	return nil
}
