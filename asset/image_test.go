package asset

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return path
}

func TestLoadImageAsync(t *testing.T) {
	path := writePNG(t, 8, 4)
	im := LoadImageAsync(path, func(err error) { t.Errorf("unexpected error: %v", err) })

	select {
	case <-im.Gate().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("图片加载超时")
	}
	require.True(t, im.Loaded())
	assert.Equal(t, image.Rect(0, 0, 8, 4), im.Image().Bounds())
}

func TestLoadImageAsyncFailureStaysUnloaded(t *testing.T) {
	errs := make(chan error, 1)
	im := LoadImageAsync(filepath.Join(t.TempDir(), "missing.jpg"), func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("未收到加载错误")
	}
	assert.False(t, im.Loaded())
	assert.Nil(t, im.Image())
	assert.False(t, im.Gate().Ready())
}

func TestNilImageIsNotLoaded(t *testing.T) {
	var im *Image
	assert.False(t, im.Loaded())
	assert.Nil(t, im.Image())
	assert.False(t, NewImage(nil).Loaded())
}

func TestDecodeImageBytesRejectsGarbage(t *testing.T) {
	_, err := DecodeImageBytes([]byte("not an image"))
	assert.Error(t, err)
}
