package assetsvc

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/agenda/core"
)

func newTestStore(t *testing.T) *LocalStore {
	conf := core.NewTestConfig()
	conf.DocumentsDir = t.TempDir()
	return NewLocalStore(conf)
}

func readAsset(t *testing.T, s *LocalStore, name string) []byte {
	rc, err := s.Open(name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := ioutil.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestLocalStore_Open(t *testing.T) {
	s := newTestStore(t)

	t.Run("bundled fallback", func(t *testing.T) {
		data := readAsset(t, s, "foto1.png")
		assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))
	})

	t.Run("documents directory first", func(t *testing.T) {
		require.NoError(t, ioutil.WriteFile(filepath.Join(s.dir, "foto1.png"), []byte("local"), 0o644))
		assert.Equal(t, "local", string(readAsset(t, s, "foto1.png")))
	})

	t.Run("not found", func(t *testing.T) {
		for _, name := range []string{"missing.png", "", "..", "../fs.go", "images/foto1.png"} {
			_, err := s.Open(name)
			assert.Equal(t, core.ErrAssetNotFound, err, name)
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	s := newTestStore(t)
	s.dir = filepath.Join(s.dir, "nested") // created on demand

	name, err := s.Save(".PNG", strings.NewReader("image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, "image bytes", string(readAsset(t, s, name)))

	other, err := s.Save(".png", strings.NewReader("other"))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	_, err = os.Stat(filepath.Join(s.dir, other))
	assert.NoError(t, err)
}
