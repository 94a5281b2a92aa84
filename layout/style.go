package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 画布与文本样式的固定常量。
const (
	CanvasWidth  = 2700
	CanvasHeight = 3375
	Padding      = 200
	BlockSpacing = 150
)

// Style 汇总一次渲染所需的全部样式参数。
type Style struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Padding  float64 `json:"padding"`
	Spacing  float64 `json:"spacing"` // 问答块间距，仅保留数值，当前定位不使用
	Fallback Color   `json:"fallback"`

	// 背景裁剪锚点，0.5 表示居中裁剪。
	AnchorX float64 `json:"anchorX"`
	AnchorY float64 `json:"anchorY"`

	Question BlockStyle `json:"question"`
	Answer   BlockStyle `json:"answer"`
}

// BlockStyle 描述单个文本块的字体与定位。
// Weight 为绘制字重；MeasureWeight 为折行测宽字重，为 0 时与 Weight 相同。
type BlockStyle struct {
	Weight        int     `json:"weight"`
	MeasureWeight int     `json:"measureWeight,omitempty"`
	FontSize      float64 `json:"fontSize"`
	LineHeight    float64 `json:"lineHeight"`
	AnchorY       float64 `json:"anchorY"`
	Color         Color   `json:"color"`
}

// DefaultStyle 返回 2700×3375 问答卡片的默认样式。
// 答案块以常规字重测宽折行、以粗体绘制，与现有输出保持一致。
func DefaultStyle() Style {
	return Style{
		Width:      CanvasWidth,
		Height:     CanvasHeight,
		Padding:    Padding,
		Spacing:    BlockSpacing,
		Fallback:   MustParseColor("#333"),
		AnchorX:    0.5,
		AnchorY:    0.5,
		Question: BlockStyle{
			Weight:     WeightBold,
			FontSize:   120,
			LineHeight: 120,
			AnchorY:    1100,
			Color:      MustParseColor("#0F52BA"),
		},
		Answer: BlockStyle{
			Weight:        WeightBold,
			MeasureWeight: WeightRegular,
			FontSize:      95,
			LineHeight:    120,
			AnchorY:       1500,
			Color:         MustParseColor("#333333"),
		},
	}
}

// MaxWidth 返回文本可用的最大行宽。
func (s Style) MaxWidth() float64 { return s.Width - s.Padding*2 }

// Validate 检查尺寸类参数是否可用。
func (s Style) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("画布尺寸无效: %gx%g", s.Width, s.Height)
	}
	if s.MaxWidth() <= 0 {
		return fmt.Errorf("边距 %g 超出画布宽度 %g", s.Padding, s.Width)
	}
	for name, b := range map[string]BlockStyle{"question": s.Question, "answer": s.Answer} {
		if b.FontSize <= 0 {
			return fmt.Errorf("%s 字号必须为正数，实际 %g", name, b.FontSize)
		}
		if b.LineHeight <= 0 {
			return fmt.Errorf("%s 行高必须为正数，实际 %g", name, b.LineHeight)
		}
	}
	return nil
}

// Spec 将文本与块样式组合为一次渲染的 TextBlockSpec。
func (b BlockStyle) Spec(text string) TextBlockSpec {
	measure := b.MeasureWeight
	if measure == 0 {
		measure = b.Weight
	}
	return TextBlockSpec{
		Text:          text,
		FontWeight:    b.Weight,
		MeasureWeight: measure,
		FontSize:      b.FontSize,
		LineHeight:    b.LineHeight,
		AnchorY:       b.AnchorY,
		Color:         b.Color,
	}
}

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略透明度）形式的颜色。
func ParseColor(value string) (Color, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(raw) {
	case 3:
		raw = strings.Repeat(raw[0:1], 2) + strings.Repeat(raw[1:2], 2) + strings.Repeat(raw[2:3], 2)
	case 6, 8:
		raw = raw[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// MustParseColor 与 ParseColor 相同，但解析失败时 panic，仅用于常量。
func MustParseColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex 返回 #RRGGBB 形式。
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R&0xff, c.G&0xff, c.B&0xff)
}
