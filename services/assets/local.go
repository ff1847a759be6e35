package assetsvc

import (
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	appfs "github.com/trezcool/agenda/fs"
)

const bundledImagesDir = "assets/images"

// LocalStore keeps uploaded images in the documents directory and falls back to the images bundled
// in the binary when a name is not found there.
type LocalStore struct {
	dir     string
	bundled fs.FS
}

var _ core.AssetStore = (*LocalStore)(nil)

func NewLocalStore(conf *core.Config) *LocalStore {
	return &LocalStore{dir: conf.DocumentsDir, bundled: appfs.FS}
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, core.ErrAssetNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err == nil {
		return f, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "opening asset")
	}

	bf, err := s.bundled.Open(path.Join(bundledImagesDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.ErrAssetNotFound
		}
		return nil, errors.Wrap(err, "opening bundled asset")
	}
	return bf, nil
}

// Save writes r to a new file named after a random UUID and ext.
func (s *LocalStore) Save(ext string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating documents directory")
	}

	name := uuid.New().String() + strings.ToLower(ext)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "creating asset")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", errors.Wrap(err, "writing asset")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing asset")
	}
	return name, nil
}
