package layout

import (
	"math"
	"testing"
)

// TestPxPtRoundTrip 验证 px↔pt 换算的往返精度（允许极小的浮点误差）。
func TestPxPtRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 95, 120, 144, 1000}
	for _, px := range samples {
		pt := PxToPt(px)
		back := PtToPx(pt)
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx pt=%g back=%g diff=%g", px, pt, back, diff)
		}
	}
}

// TestPxToPtKnownValues 覆盖 72pt = 1in = 25.4 单位。
func TestPxToPtKnownValues(t *testing.T) {
	if got := PxToPt(25.4); math.Abs(got-72) > 1e-9 {
		t.Fatalf("25.4px 转 pt 期望 72，实际 %g", got)
	}
	if got := PtToPx(72); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("72pt 转 px 期望 25.4，实际 %g", got)
	}
}
