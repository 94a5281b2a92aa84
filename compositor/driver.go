package compositor

import (
	"fmt"

	"github.com/ByLCY/qacard/asset"
	"github.com/ByLCY/qacard/layout"
	"github.com/ByLCY/qacard/renderer"
)

// Input 是一次渲染的不可变输入。空字符串表示“无文本”，同样合法。
type Input struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Driver 串联背景绘制、排版与文本绘制，是唯一执行绘制的组件。
type Driver struct {
	Style layout.Style
}

// NewDriver returns a driver using style.
func NewDriver(style layout.Style) *Driver { return &Driver{Style: style} }

// Specs 根据当前样式生成问题与答案的文本块规格。
func (d *Driver) Specs(in Input) (layout.TextBlockSpec, layout.TextBlockSpec) {
	return d.Style.Question.Spec(in.Question), d.Style.Answer.Spec(in.Answer)
}

// Render 完整覆盖 surface 的内容：
// 清空 → 背景（cover 裁剪，未加载时使用后备纯色）→ 问题块 → 答案块。
// 相同输入重复调用得到相同画面。
func (d *Driver) Render(surface renderer.Surface, bg *asset.Image, question, answer layout.TextBlockSpec) (*layout.Result, error) {
	if surface == nil {
		return nil, fmt.Errorf("画布为空")
	}
	w, h := surface.Size()
	style := d.Style
	style.Width, style.Height = float64(w), float64(h)
	if err := style.Validate(); err != nil {
		return nil, err
	}
	full := layout.Rect{W: style.Width, H: style.Height}

	surface.Clear()
	if img := bg.Image(); img != nil {
		b := img.Bounds()
		crop := layout.CoverRect(float64(b.Dx()), float64(b.Dy()), full.W, full.H, style.AnchorX, style.AnchorY)
		surface.DrawImageRegion(img, crop, full)
	} else {
		surface.FillRect(full, style.Fallback)
	}

	res, err := layout.BuildSpecs(style, question, answer, layout.BuildOptions{Typesetter: surface})
	if err != nil {
		return nil, err
	}
	for _, block := range []layout.BlockResult{res.Question, res.Answer} {
		for _, p := range block.Lines {
			if err := surface.DrawText(p, block.Spec.FontWeight, block.Spec.FontSize, block.Spec.Color); err != nil {
				return nil, fmt.Errorf("绘制文本 %q 失败: %w", p.Text, err)
			}
		}
	}
	return res, nil
}
