package renderer

import (
	"image"

	"github.com/ByLCY/qacard/layout"
)

// Surface 是固定尺寸的栅格画布，合成器只通过它完成全部绘制。
// 坐标以像素为单位，原点位于左上角。
type Surface interface {
	layout.Typesetter

	// Size 返回画布宽高，创建后不再改变。
	Size() (width, height int)
	// Clear 将整个画布清为透明。
	Clear()
	// FillRect 用纯色填充矩形。
	FillRect(r layout.Rect, c layout.Color)
	// DrawImageRegion 将 img 中的 src 区域拉伸绘制到 dst 区域。
	DrawImageRegion(img image.Image, src, dst layout.Rect)
	// DrawText 以 p.X 为水平中心、p.Y 为基线绘制一行文本。
	DrawText(p layout.Placement, weight int, fontSize float64, c layout.Color) error
}

// Exporter 由可以导出最终位图的 Surface 实现。
type Exporter interface {
	Image() image.Image
}
