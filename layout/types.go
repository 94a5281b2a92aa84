package layout

// 该文件定义布局阶段的输入输出类型，供合成器、渲染器与测试共用。
// 所有坐标与尺寸均以像素为单位，原点位于画布左上角。

// Rect 是一个浮点矩形（源图裁剪区域或目标区域）。
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// 字重常量，与 CSS font-weight 数值一致。
const (
	WeightRegular = 400
	WeightBold    = 700
)

// TextBlockSpec 描述一次渲染中的一个文本块（问题或答案）。
// Text 可以包含显式换行符。
// FontWeight 用于绘制，MeasureWeight 用于折行测宽，为 0 时退回 FontWeight。
type TextBlockSpec struct {
	Text          string  `json:"text"`
	FontWeight    int     `json:"fontWeight"`
	MeasureWeight int     `json:"measureWeight,omitempty"`
	FontSize      float64 `json:"fontSize"`
	LineHeight    float64 `json:"lineHeight"`
	AnchorY       float64 `json:"anchorY"`
	Color         Color   `json:"color"`
}

// MeasureFunc 返回字符串在当前字体配置下的绘制宽度（像素）。
// 对同一字体配置必须是确定且无副作用的。
type MeasureFunc func(s string) float64

// Block 是已折行的文本块及其纵向锚点。
type Block struct {
	Lines      []string `json:"lines"`
	LineHeight float64  `json:"lineHeight"`
	AnchorY    float64  `json:"anchorY"`
}

// Placement 是一行文本的绘制指令：X 为水平中心，Y 为基线。
type Placement struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}
