package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// debugBlock 在布局结果之外附带便于人工核对的字段。
type debugBlock struct {
	BlockResult
	Color     string  `json:"colorHex"`
	LineCount int     `json:"lineCount"`
	Bottom    float64 `json:"lastBaseline"`
}

type debugDoc struct {
	Width    float64    `json:"width"`
	Height   float64    `json:"height"`
	MaxWidth float64    `json:"maxWidth"`
	Question debugBlock `json:"question"`
	Answer   debugBlock `json:"answer"`
}

func newDebugBlock(b BlockResult) debugBlock {
	out := debugBlock{BlockResult: b, Color: b.Spec.Color.Hex(), LineCount: len(b.Lines)}
	if n := len(b.Lines); n > 0 {
		out.Bottom = b.Lines[n-1].Y
	}
	return out
}

// EncodeDebugJSON 将布局结果以缩进 JSON 写入 w。res 为 nil 时不写任何内容。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(debugDoc{
		Width:    res.Width,
		Height:   res.Height,
		MaxWidth: res.MaxWidth,
		Question: newDebugBlock(res.Question),
		Answer:   newDebugBlock(res.Answer),
	})
}

// WriteDebugJSON 将布局结果输出为 JSON 文件，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(file, res); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
