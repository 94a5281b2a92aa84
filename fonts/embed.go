package fonts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrUnknownFamily 表示请求了未内置的字体族。
var ErrUnknownFamily = errors.New("未知的内置字体")

// boldThreshold 及以上的字重使用粗体字形。
const boldThreshold = 600

type builtin struct {
	regular []byte
	bold    []byte
}

var builtins = map[string]builtin{
	"go":           {regular: goregular.TTF, bold: gobold.TTF},
	"latin-modern": {regular: lmsans10regular.TTF, bold: lmsans10bold.TTF},
}

// Families 返回全部内置字体族名称。
func Families() []string { return []string{"go", "latin-modern"} }

// Load 返回内置字体的字节数据，family 可写为 "embed:go" 或直接 "go"。
func Load(family string, weight int) ([]byte, error) {
	name := strings.ToLower(strings.TrimPrefix(family, "embed:"))
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: %w", family, ErrUnknownFamily)
	}
	if IsBold(weight) {
		return b.bold, nil
	}
	return b.regular, nil
}

// IsBold reports whether weight selects the bold face.
func IsBold(weight int) bool { return weight >= boldThreshold }

// Source 描述字体来源：内置字体族，或分别指定常规/粗体字体文件。
// 文件路径优先于内置字体族。
type Source struct {
	Family  string `json:"family" toml:"family"`
	Regular string `json:"regular,omitempty" toml:"regular,omitempty"`
	Bold    string `json:"bold,omitempty" toml:"bold,omitempty"`
}

// Set 保存一个字体族两种字重的原始字节。
type Set struct {
	Name    string
	Regular []byte
	Bold    []byte
}

// ForWeight 返回 weight 对应的字体数据。
func (s *Set) ForWeight(weight int) []byte {
	if IsBold(weight) {
		return s.Bold
	}
	return s.Regular
}

// LoadSet 按 Source 读取两种字重的字体。
func LoadSet(src Source) (*Set, error) {
	family := src.Family
	if family == "" {
		family = "go"
	}
	regular, err := loadOne(family, src.Regular, 400)
	if err != nil {
		return nil, err
	}
	bold, err := loadOne(family, src.Bold, 700)
	if err != nil {
		return nil, err
	}
	return &Set{Name: family, Regular: regular, Bold: bold}, nil
}

func loadOne(family, path string, weight int) ([]byte, error) {
	if path == "" {
		return Load(family, weight)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体文件 %s 失败: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("字体文件 %s 为空", path)
	}
	return data, nil
}
