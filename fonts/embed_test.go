package fonts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestLoadBuiltinWeights(t *testing.T) {
	regular, err := Load("go", 400)
	require.NoError(t, err)
	assert.Equal(t, goregular.TTF, regular)

	bold, err := Load("embed:go", 700)
	require.NoError(t, err)
	assert.Equal(t, gobold.TTF, bold)

	for _, family := range Families() {
		data, err := Load(family, 700)
		require.NoError(t, err, family)
		assert.NotEmpty(t, data, family)
	}
}

func TestLoadUnknownFamily(t *testing.T) {
	_, err := Load("Montserrat", 400)
	assert.ErrorIs(t, err, ErrUnknownFamily)
}

func TestLoadSetPrefersFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom-bold.ttf")
	require.NoError(t, os.WriteFile(path, []byte("fake-ttf"), 0o644))

	set, err := LoadSet(Source{Family: "go", Bold: path})
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-ttf"), set.ForWeight(700))
	assert.Equal(t, goregular.TTF, set.ForWeight(400))
}

func TestLoadSetMissingFile(t *testing.T) {
	_, err := LoadSet(Source{Regular: filepath.Join(t.TempDir(), "nope.ttf")})
	assert.Error(t, err)
}

func TestLoaderResolvesGate(t *testing.T) {
	l := LoadAsync(Source{})
	select {
	case <-l.Gate().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("字体加载超时")
	}
	set, err := l.Wait()
	require.NoError(t, err)
	assert.Equal(t, "go", set.Name)
}

func TestLoaderFailureKeepsGateClosed(t *testing.T) {
	l := LoadAsync(Source{Family: "unknown"})
	_, err := l.Wait()
	assert.ErrorIs(t, err, ErrUnknownFamily)
	assert.False(t, l.Gate().Ready())
}
