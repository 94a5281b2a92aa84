package layout

import "math"

// nearTie 用于判断第一次放大后比例是否仍为 1（即宽度方向已满足）。
const nearTie = 1e-14

// CoverRect 计算 object-fit: cover 语义下的源图裁剪矩形：
// 将返回的源区域拉伸到 destW×destH 后可以完全覆盖目标区域，且保持源图宽高比。
// anchorX/anchorY 选择保留裁剪区域的哪一部分（0=左/上，0.5=居中，1=右/下），
// 超出 [0,1] 的值会先被钳制。
//
// 尺寸必须为正；否则返回空矩形。
func CoverRect(srcW, srcH, destW, destH, anchorX, anchorY float64) Rect {
	if !(srcW > 0 && srcH > 0 && destW > 0 && destH > 0) {
		return Rect{}
	}
	anchorX = clamp01(anchorX)
	anchorY = clamp01(anchorY)

	// 先求“完全放入”的比例，再补足放大倍数直到两个方向都不小于目标。
	r := math.Min(destW/srcW, destH/srcH)
	nw := srcW * r
	nh := srcH * r
	ar := 1.0
	if nw < destW {
		ar = destW / nw
	}
	if math.Abs(ar-1) < nearTie && nh < destH {
		ar = destH / nh
	}
	nw *= ar
	nh *= ar

	cw := srcW / (nw / destW)
	ch := srcH / (nh / destH)
	cx := (srcW - cw) * anchorX
	cy := (srcH - ch) * anchorY

	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	if cw > srcW {
		cw = srcW
	}
	if ch > srcH {
		ch = srcH
	}
	return Rect{X: cx, Y: cy, W: cw, H: ch}
}

// CoverScale 返回 cover 语义下源图到目标的缩放倍数。
func CoverScale(srcW, srcH, destW, destH float64) float64 {
	if !(srcW > 0 && srcH > 0) {
		return 0
	}
	return math.Max(destW/srcW, destH/srcH)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
