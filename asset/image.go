package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"sync/atomic"

	_ "golang.org/x/image/webp"
)

// Image 是异步加载、只加载一次的背景图。
// Loaded 只会从 false 变为 true；加载失败时保持 false。
type Image struct {
	gate   Gate
	loaded atomic.Bool
	img    image.Image
}

// NewImage 包装一张已解码的图片，直接处于已加载状态。
func NewImage(img image.Image) *Image {
	im := &Image{}
	if img != nil {
		im.set(img)
	}
	return im
}

// LoadImageAsync 在后台 goroutine 中读取并解码 path。
// 失败时调用 onErr（可为 nil），图片保持未加载，不重试。
func LoadImageAsync(path string, onErr func(error)) *Image {
	im := &Image{}
	go func() {
		img, err := LoadImage(path)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		im.set(img)
	}()
	return im
}

func (im *Image) set(img image.Image) {
	im.img = img
	im.loaded.Store(true)
	im.gate.Resolve()
}

// Loaded reports whether the image finished decoding.
func (im *Image) Loaded() bool { return im != nil && im.loaded.Load() }

// Image 返回已解码的图片；未加载时返回 nil。
func (im *Image) Image() image.Image {
	if !im.Loaded() {
		return nil
	}
	return im.img
}

// Gate 返回加载完成信号。
func (im *Image) Gate() *Gate { return &im.gate }

// LoadImage 同步读取并解码图片文件（JPEG/PNG/GIF/WebP）。
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	defer file.Close()
	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", path, err)
	}
	return img, nil
}

// DecodeImage 从 r 解码图片。
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("图片尺寸无效: %dx%d", b.Dx(), b.Dy())
	}
	return img, nil
}

// DecodeImageBytes 是 DecodeImage 的字节切片版本。
func DecodeImageBytes(data []byte) (image.Image, error) {
	return DecodeImage(bytes.NewReader(data))
}
