package layout

// tdewolff/canvas 以毫米为长度单位、以点为字号单位。
// 本项目令 1 个画布单位对应 1 像素（栅格化分辨率为 1 像素/单位），
// 因此像素字号在创建字体面之前需要按 mm→pt 换算。

// Conversion constants between pt and canvas units.
const (
	PtToMm = 25.4 / 72
	MmToPt = 1.0 / PtToMm
)

// PxToPt converts a pixel font size to the point size canvas expects.
func PxToPt(px float64) float64 { return px * MmToPt }

// PtToPx converts a point size back to pixels.
func PtToPx(pt float64) float64 { return pt * PtToMm }
