package renderer

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"
)

// 导出参数。
const (
	FileName       = "quote-image.jpg"
	DefaultQuality = 90
)

// EncodeJPEG 以给定质量（1-100）将 img 编码为 JPEG。
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if img == nil {
		return fmt.Errorf("没有可导出的图像")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("编码 JPEG 失败: %w", err)
	}
	return nil
}

// Thumbnail 将 img 等比缩放到宽度 width，用于预览。
func Thumbnail(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width >= b.Dx() {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
