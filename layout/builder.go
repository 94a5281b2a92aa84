package layout

import "fmt"

// Result 保存一次布局的全部绘制指令。
type Result struct {
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	MaxWidth float64     `json:"maxWidth"`
	Question BlockResult `json:"question"`
	Answer   BlockResult `json:"answer"`
}

// BlockResult 是单个文本块的规格与逐行位置。
type BlockResult struct {
	Spec  TextBlockSpec `json:"spec"`
	Lines []Placement   `json:"lines"`
}

// Build 根据样式与问答文本完成折行与定位，不做任何绘制。
func Build(style Style, question, answer string, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}
	return BuildSpecs(style, style.Question.Spec(question), style.Answer.Spec(answer), opts)
}

// BuildSpecs 与 Build 相同，但直接接收两个文本块规格。
func BuildSpecs(style Style, question, answer TextBlockSpec, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	maxWidth := style.MaxWidth()

	qBlock, err := wrapBlock(question, maxWidth, opts.Typesetter)
	if err != nil {
		return nil, fmt.Errorf("问题文本排版失败: %w", err)
	}
	aBlock, err := wrapBlock(answer, maxWidth, opts.Typesetter)
	if err != nil {
		return nil, fmt.Errorf("答案文本排版失败: %w", err)
	}

	qLines, aLines := LayoutTwoBlocks(qBlock, aBlock, style.Width)
	return &Result{
		Width:    style.Width,
		Height:   style.Height,
		MaxWidth: maxWidth,
		Question: BlockResult{Spec: question, Lines: qLines},
		Answer:   BlockResult{Spec: answer, Lines: aLines},
	}, nil
}

func wrapBlock(spec TextBlockSpec, maxWidth float64, ts Typesetter) (Block, error) {
	weight := spec.MeasureWeight
	if weight == 0 {
		weight = spec.FontWeight
	}
	measure, err := ts.MeasureFunc(weight, spec.FontSize)
	if err != nil {
		return Block{}, err
	}
	return Block{
		Lines:      WrapText(spec.Text, maxWidth, measure),
		LineHeight: spec.LineHeight,
		AnchorY:    spec.AnchorY,
	}, nil
}
