package layout

import "strings"

// WrapText 使用贪心算法按段落折行：
//   - 以换行符切分段落，段落顺序保持不变；
//   - 空段落输出且仅输出一行空行，保留段落间距；
//   - 非空段落按单个空格切词，追加 " "+word 后宽度严格小于 maxWidth 才并入当前行，
//     否则当前行结束，新行以该词开头。
//
// 不做连字符拆分：单个超宽的词独占一行并原样输出（允许溢出）。
func WrapText(text string, maxWidth float64, measure MeasureFunc) []string {
	paragraphs := strings.Split(text, "\n")
	lines := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSuffix(paragraph, "\r")
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}

		words := strings.Split(paragraph, " ")
		current := words[0]
		for _, word := range words[1:] {
			candidate := current + " " + word
			if measure(candidate) < maxWidth {
				current = candidate
				continue
			}
			lines = append(lines, current)
			current = word
		}
		lines = append(lines, current)
	}
	return lines
}
