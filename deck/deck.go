package deck

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/ByLCY/qacard/binding"
)

// Card 是一张问答卡片。
type Card struct {
	Name       string `json:"name"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Background string `json:"background,omitempty"`
	Line       int    `json:"-"`
}

// Deck 是编译后的卡组。
type Deck struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	// Style 与 Background 为卡组级设置，路径相对卡组文件。
	Style      string `json:"style,omitempty"`
	Background string `json:"background,omitempty"`
	Cards      []Card `json:"cards"`
}

// 卡片名用作输出文件名，不允许出现路径分隔符等字符。
var cardNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// Parse 解析并校验卡组。
func Parse(r io.Reader) (*Deck, error) {
	doc, err := ParseDocument("", r)
	if err != nil {
		return nil, fmt.Errorf("解析卡组失败: %w", err)
	}
	return Compile(doc)
}

// ParseString 与 Parse 相同，输入为字符串。
func ParseString(input string) (*Deck, error) {
	doc, err := ParseDocumentString(input)
	if err != nil {
		return nil, fmt.Errorf("解析卡组失败: %w", err)
	}
	return Compile(doc)
}

// ParseFile 读取并解析 path 指定的卡组文件。
func ParseFile(path string) (*Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开卡组文件 %s: %w", path, err)
	}
	defer file.Close()

	doc, err := ParseDocument(path, file)
	if err != nil {
		return nil, fmt.Errorf("解析卡组失败: %w", err)
	}
	return Compile(doc)
}

// Compile 将语法树转换为 Deck，检查未知字段与重复卡片名。
func Compile(doc *Document) (*Deck, error) {
	if doc == nil {
		return nil, fmt.Errorf("卡组为空")
	}
	d := &Deck{Name: doc.Name, Version: doc.Version}
	seen := make(map[string]int)
	for _, entry := range doc.Entries {
		switch {
		case entry.Setting != nil:
			if err := d.applySetting(entry.Setting); err != nil {
				return nil, err
			}
		case entry.Card != nil:
			card, err := compileCard(entry.Card)
			if err != nil {
				return nil, err
			}
			if line, dup := seen[card.Name]; dup {
				return nil, fmt.Errorf("第 %d 行: 卡片 %q 与第 %d 行重名", card.Line, card.Name, line)
			}
			seen[card.Name] = card.Line
			d.Cards = append(d.Cards, card)
		}
	}
	return d, nil
}

func (d *Deck) applySetting(a *Assignment) error {
	switch a.Key {
	case "style":
		d.Style = a.Value.Text()
	case "background":
		d.Background = a.Value.Text()
	default:
		return fmt.Errorf("第 %d 行: 未知的卡组设置 %q", a.Pos.Line, a.Key)
	}
	return nil
}

func compileCard(node *CardNode) (Card, error) {
	card := Card{Name: node.Name, Line: node.Pos.Line}
	if !cardNamePattern.MatchString(card.Name) {
		return Card{}, fmt.Errorf("第 %d 行: 卡片名 %q 不能用作文件名", card.Line, card.Name)
	}
	for _, field := range node.Fields {
		switch field.Key {
		case "question", "q":
			card.Question = field.Value.Text()
		case "answer", "a":
			card.Answer = field.Value.Text()
		case "background", "bg":
			card.Background = field.Value.Text()
		default:
			return Card{}, fmt.Errorf("第 %d 行: 卡片 %s 含未知字段 %q", field.Pos.Line, card.Name, field.Key)
		}
	}
	return card, nil
}

// Bind 返回一份副本，其中问题、答案与背景路径中的 ${path} 占位符以 data 填充。
func (d *Deck) Bind(data any) *Deck {
	out := *d
	out.Cards = make([]Card, len(d.Cards))
	for i, c := range d.Cards {
		c.Question = binding.Interpolate(c.Question, data)
		c.Answer = binding.Interpolate(c.Answer, data)
		c.Background = binding.Interpolate(c.Background, data)
		out.Cards[i] = c
	}
	return &out
}

// FileName 返回卡片的输出文件名。
func (c Card) FileName() string {
	return c.Name + ".jpg"
}
