package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ByLCY/qacard/fonts"
	"github.com/ByLCY/qacard/layout"
	"github.com/ByLCY/qacard/renderer"
)

// Surface draws onto a fixed-size raster via github.com/tdewolff/canvas.
//
// 位图操作（填充、贴图）直接写入底图；文本先记录在 canvas 矢量层，
// 在下一次位图操作或导出前栅格化并叠加到底图上，保证绘制顺序。
type Surface struct {
	width  int
	height int

	// Interpolator 用于背景缩放，默认 CatmullRom。
	Interpolator draw.Interpolator

	base  *image.RGBA
	vec   *canvas.Canvas
	ctx   *canvas.Context
	dirty bool

	fontSet        *fonts.Set
	fontMu         sync.Mutex
	family         *canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Surface  = (*Surface)(nil)
	_ renderer.Exporter = (*Surface)(nil)
	_ layout.Typesetter = (*Surface)(nil)
)

// NewSurface creates a width×height surface that draws text with the given font set.
// A nil set falls back to the built-in Go fonts.
func NewSurface(width, height int, set *fonts.Set) *Surface {
	s := &Surface{
		width:        width,
		height:       height,
		Interpolator: draw.CatmullRom,
		base:         image.NewRGBA(image.Rect(0, 0, width, height)),
		fontSet:      set,
	}
	s.resetVector()
	return s
}

// Size 实现 renderer.Surface。
func (s *Surface) Size() (int, int) { return s.width, s.height }

// Clear 将底图清为透明并丢弃未落地的文本。
func (s *Surface) Clear() {
	draw.Draw(s.base, s.base.Bounds(), image.Transparent, image.Point{}, draw.Src)
	s.resetVector()
}

// FillRect 用纯色覆盖矩形区域。
func (s *Surface) FillRect(r layout.Rect, c layout.Color) {
	s.flush()
	draw.Draw(s.base, pixelRect(r), image.NewUniform(toRGBA(c)), image.Point{}, draw.Src)
}

// DrawImageRegion 将 img 的 src 区域（相对图片左上角）拉伸绘制到 dst。
func (s *Surface) DrawImageRegion(img image.Image, src, dst layout.Rect) {
	if img == nil || src.Empty() || dst.Empty() {
		return
	}
	s.flush()

	b := img.Bounds()
	sx := dst.W / src.W
	sy := dst.H / src.H
	// s2d 将图片坐标映射到画布坐标。
	s2d := f64.Aff3{
		sx, 0, dst.X - (float64(b.Min.X)+src.X)*sx,
		0, sy, dst.Y - (float64(b.Min.Y)+src.Y)*sy,
	}
	sr := image.Rect(
		b.Min.X+int(math.Floor(src.X)), b.Min.Y+int(math.Floor(src.Y)),
		b.Min.X+int(math.Ceil(src.X+src.W)), b.Min.Y+int(math.Ceil(src.Y+src.H)),
	).Intersect(b)

	target, ok := s.base.SubImage(pixelRect(dst)).(*image.RGBA)
	if !ok || target.Bounds().Empty() {
		return
	}
	interp := s.Interpolator
	if interp == nil {
		interp = draw.CatmullRom
	}
	interp.Transform(target, s2d, img, sr, draw.Over, nil)
}

// DrawText 在矢量层上以居中对齐绘制一行文本，p.Y 为基线。
func (s *Surface) DrawText(p layout.Placement, weight int, fontSize float64, c layout.Color) error {
	if p.Text == "" {
		return nil
	}
	face, err := s.fontFace(weight, fontSize, c)
	if err != nil {
		return err
	}
	s.ctx.DrawText(p.X, p.Y, canvas.NewTextLine(face, p.Text, canvas.Center))
	s.dirty = true
	return nil
}

// MeasureFunc 实现 layout.Typesetter：返回指定字重与字号（像素）下的测宽函数。
func (s *Surface) MeasureFunc(weight int, fontSize float64) (layout.MeasureFunc, error) {
	face, err := s.fontFace(weight, fontSize, layout.Color{})
	if err != nil {
		return nil, err
	}
	return face.TextWidth, nil
}

// Image 实现 renderer.Exporter，返回当前画面。
// 返回的位图在下一次绘制前有效。
func (s *Surface) Image() image.Image {
	s.flush()
	return s.base
}

func (s *Surface) resetVector() {
	s.vec = canvas.New(float64(s.width), float64(s.height))
	s.ctx = canvas.NewContext(s.vec)
	s.ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	s.dirty = false
}

// flush 把矢量层栅格化（1 像素/单位）后叠加到底图。
func (s *Surface) flush() {
	if !s.dirty {
		return
	}
	layer := rasterizer.Draw(s.vec, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	draw.Draw(s.base, s.base.Bounds(), layer, layer.Bounds().Min, draw.Over)
	s.resetVector()
}

// 字号以像素传入；canvas 的字体面使用 pt，这里做一次 px→pt。
func (s *Surface) fontFace(weight int, fontSize float64, c layout.Color) (*canvas.FontFace, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字号必须为正数，实际 %g", fontSize)
	}
	family, err := s.ensureFontFamily()
	if err != nil {
		return nil, err
	}
	return family.Face(layout.PxToPt(fontSize), toRGBA(c), fontStyle(weight), canvas.FontNormal), nil
}

func (s *Surface) ensureFontFamily() (*canvas.FontFamily, error) {
	s.fontMu.Lock()
	defer s.fontMu.Unlock()

	if s.family != nil {
		return s.family, nil
	}
	if s.fontSet != nil {
		family := canvas.NewFontFamily(s.fontSet.Name)
		if err := loadSetIntoFamily(family, s.fontSet); err == nil {
			s.family = family
			return family, nil
		}
	}
	fallback, err := s.fallback()
	if err != nil {
		return nil, err
	}
	s.family = fallback
	return fallback, nil
}

func (s *Surface) fallback() (*canvas.FontFamily, error) {
	if s.fallbackFamily != nil {
		return s.fallbackFamily, nil
	}
	set, err := fonts.LoadSet(fonts.Source{Family: "go"})
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("qacard-fallback")
	if err := loadSetIntoFamily(family, set); err != nil {
		return nil, fmt.Errorf("加载后备字体失败: %w", err)
	}
	s.fallbackFamily = family
	return family, nil
}

func loadSetIntoFamily(family *canvas.FontFamily, set *fonts.Set) error {
	if err := family.LoadFont(set.Regular, 0, canvas.FontRegular); err != nil {
		return fmt.Errorf("加载字体 %s 常规字重失败: %w", set.Name, err)
	}
	if err := family.LoadFont(set.Bold, 0, canvas.FontBold); err != nil {
		return fmt.Errorf("加载字体 %s 粗体失败: %w", set.Name, err)
	}
	return nil
}

func fontStyle(weight int) canvas.FontStyle {
	if fonts.IsBold(weight) {
		return canvas.FontBold
	}
	return canvas.FontRegular
}

func toRGBA(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

// pixelRect 将浮点矩形向外取整为像素矩形。
func pixelRect(r layout.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
}
