package core

import (
	"errors"
	"io"
)

var ErrAssetNotFound = errors.New("asset not found")

// AssetStore is any service that can keep and serve image files by name.
type AssetStore interface {
	// Open returns the named asset or ErrAssetNotFound.
	Open(name string) (io.ReadCloser, error)
	// Save stores the content under a generated name with the given extension and returns the name.
	Save(ext string, r io.Reader) (string, error)
}
