package layout

// LayoutTwoBlocks 计算问题块与答案块的逐行绘制位置。
// 两个块各自使用固定的纵向锚点，互不影响；水平方向始终居中于 destW。
func LayoutTwoBlocks(question, answer Block, destW float64) ([]Placement, []Placement) {
	out := LayoutBlocks(destW, question, answer)
	return out[0], out[1]
}

// LayoutBlocks 是 LayoutTwoBlocks 的多块形式。
// 第 i 行位于 AnchorY + i*LineHeight（基线），X 为 destW 的中点。
func LayoutBlocks(destW float64, blocks ...Block) [][]Placement {
	centerX := destW / 2
	out := make([][]Placement, len(blocks))
	for b, block := range blocks {
		placements := make([]Placement, len(block.Lines))
		for i, line := range block.Lines {
			placements[i] = Placement{
				Text: line,
				X:    centerX,
				Y:    block.AnchorY + float64(i)*block.LineHeight,
			}
		}
		out[b] = placements
	}
	return out
}
