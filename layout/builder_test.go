package layout

import (
	"errors"
	"reflect"
	"testing"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 宽度按字符数 × 字号 × 0.5 估算；boldFactor 非 0 时粗体改用该系数。
type stubTypesetter struct {
	calls      []int
	err        error
	boldFactor float64
}

func (s *stubTypesetter) MeasureFunc(weight int, fontSize float64) (MeasureFunc, error) {
	s.calls = append(s.calls, weight)
	if s.err != nil {
		return nil, s.err
	}
	factor := 0.5
	if weight >= WeightBold && s.boldFactor != 0 {
		factor = s.boldFactor
	}
	return func(text string) float64 {
		return float64(len([]rune(text))) * fontSize * factor
	}, nil
}

func TestLayoutTwoBlocksFixedAnchors(t *testing.T) {
	q := Block{Lines: []string{"q1", "q2"}, LineHeight: 120, AnchorY: 1100}
	a := Block{Lines: []string{"a1", "a2", "a3"}, LineHeight: 120, AnchorY: 1500}
	qp, ap := LayoutTwoBlocks(q, a, 2700)

	if len(qp) != 2 || len(ap) != 3 {
		t.Fatalf("expected 2+3 placements, got %d+%d", len(qp), len(ap))
	}
	if qp[0] != (Placement{Text: "q1", X: 1350, Y: 1100}) {
		t.Fatalf("unexpected first question line %+v", qp[0])
	}
	if qp[1] != (Placement{Text: "q2", X: 1350, Y: 1220}) {
		t.Fatalf("unexpected second question line %+v", qp[1])
	}
	if ap[2] != (Placement{Text: "a3", X: 1350, Y: 1740}) {
		t.Fatalf("unexpected last answer line %+v", ap[2])
	}
}

func TestLayoutTwoBlocksIndependentOfLineCount(t *testing.T) {
	a := Block{Lines: []string{"a"}, LineHeight: 120, AnchorY: 1500}
	short := Block{Lines: []string{"q"}, LineHeight: 120, AnchorY: 1100}
	long := Block{Lines: []string{"q", "q", "q", "q", "q"}, LineHeight: 120, AnchorY: 1100}

	_, a1 := LayoutTwoBlocks(short, a, 2700)
	_, a2 := LayoutTwoBlocks(long, a, 2700)
	if !reflect.DeepEqual(a1, a2) {
		t.Fatalf("answer placement depends on question length: %+v vs %+v", a1, a2)
	}
}

func TestLayoutBlocksEmptyBlock(t *testing.T) {
	out := LayoutBlocks(100, Block{}, Block{Lines: []string{""}, AnchorY: 5})
	if len(out) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out))
	}
	if len(out[0]) != 0 {
		t.Fatalf("empty block should have no placements, got %+v", out[0])
	}
	if !reflect.DeepEqual(out[1], []Placement{{Text: "", X: 50, Y: 5}}) {
		t.Fatalf("unexpected placements %+v", out[1])
	}
}

func TestBuildDefaultStyle(t *testing.T) {
	ts := &stubTypesetter{}
	res, err := Build(DefaultStyle(), "What is the meaning of design?",
		"Design is not just what it looks like and feels like. Design is how it works.",
		BuildOptions{Typesetter: ts})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if res.MaxWidth != 2300 {
		t.Fatalf("expected max width 2300, got %g", res.MaxWidth)
	}
	// 问题以粗体测宽，答案以常规字重测宽。
	if !reflect.DeepEqual(ts.calls, []int{WeightBold, WeightRegular}) {
		t.Fatalf("unexpected measure weights %v", ts.calls)
	}
	if n := len(res.Question.Lines); n == 0 || n > 2 {
		t.Fatalf("expected 1-2 question lines, got %d", n)
	}
	if n := len(res.Answer.Lines); n == 0 || n > 3 {
		t.Fatalf("expected 1-3 answer lines, got %d", n)
	}
	for i, p := range res.Question.Lines {
		if p.Y != 1100+float64(i)*120 || p.X != 1350 {
			t.Fatalf("question line %d at %g,%g", i, p.X, p.Y)
		}
	}
	for i, p := range res.Answer.Lines {
		if p.Y != 1500+float64(i)*120 {
			t.Fatalf("answer line %d at y=%g", i, p.Y)
		}
	}
	if res.Question.Spec.Color != MustParseColor("#0F52BA") {
		t.Fatalf("unexpected question color %+v", res.Question.Spec.Color)
	}
	if res.Answer.Spec.FontSize != 95 || res.Answer.Spec.FontWeight != WeightBold {
		t.Fatalf("answer should be drawn bold at 95px, got %+v", res.Answer.Spec)
	}
}

func TestBuildWrapsAnswerWithRegularWeight(t *testing.T) {
	// 45 个字符：常规字重 45×95×0.5=2137.5 < 2300，粗体 45×95×0.6=2565 超宽。
	answer := "aaaaaaaaaa bbbbbbbbbb cccccccccc dddddddddd e"
	ts := &stubTypesetter{boldFactor: 0.6}
	res, err := Build(DefaultStyle(), "", answer, BuildOptions{Typesetter: ts})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(res.Answer.Lines) != 1 || res.Answer.Lines[0].Text != answer {
		t.Fatalf("answer should fit one regular-weight line, got %+v", res.Answer.Lines)
	}

	// 同一文本若以绘制字重测宽则会折成两行。
	bold := DefaultStyle()
	bold.Answer.MeasureWeight = WeightBold
	res, err = Build(bold, "", answer, BuildOptions{Typesetter: &stubTypesetter{boldFactor: 0.6}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(res.Answer.Lines) != 2 {
		t.Fatalf("bold measuring should wrap into 2 lines, got %+v", res.Answer.Lines)
	}
}

func TestBlockStyleSpecMeasureWeightDefaultsToWeight(t *testing.T) {
	spec := BlockStyle{Weight: WeightBold, FontSize: 10, LineHeight: 10}.Spec("x")
	if spec.MeasureWeight != WeightBold {
		t.Fatalf("measure weight should fall back to draw weight, got %d", spec.MeasureWeight)
	}
}

func TestBuildRequiresTypesetter(t *testing.T) {
	if _, err := Build(DefaultStyle(), "q", "a", BuildOptions{}); err == nil {
		t.Fatalf("expected error without typesetter")
	}
}

func TestBuildPropagatesMeasureError(t *testing.T) {
	boom := errors.New("no font")
	_, err := Build(DefaultStyle(), "q", "a", BuildOptions{Typesetter: &stubTypesetter{err: boom}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped measure error, got %v", err)
	}
}

func TestStyleValidate(t *testing.T) {
	s := DefaultStyle()
	if err := s.Validate(); err != nil {
		t.Fatalf("default style invalid: %v", err)
	}

	s.Padding = 1400
	if s.Validate() == nil {
		t.Fatalf("expected error for padding wider than canvas")
	}

	s = DefaultStyle()
	s.Answer.LineHeight = 0
	if s.Validate() == nil {
		t.Fatalf("expected error for zero line height")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#333":      {R: 0x33, G: 0x33, B: 0x33},
		"0F52BA":    {R: 0x0F, G: 0x52, B: 0xBA},
		"#11223344": {R: 0x11, G: 0x22, B: 0x33},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil {
			t.Fatalf("ParseColor(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", in, got, want)
		}
	}
	if MustParseColor("0F52BA").Hex() != "#0F52BA" {
		t.Fatalf("Hex round trip failed")
	}
	for _, bad := range []string{"#12", "#GGHHII"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
}
