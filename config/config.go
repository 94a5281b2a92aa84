package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ByLCY/qacard/fonts"
	"github.com/ByLCY/qacard/layout"
)

// File 是样式文件（TOML）的结构。所有字段都是可选的，未设置的字段沿用默认样式。
//
//	width = 2700
//	height = 3375
//	padding = 200
//	fallback = "#333"
//	background = "brain-buzz-lp.jpg"
//	anchor = [0.5, 0.5]
//	quality = 90
//
//	[font]
//	family = "go"
//	bold = "fonts/Montserrat-Bold.ttf"
//
//	[question]
//	size = 120
//	line-height = 120
//	y = 1100
//	color = "#0F52BA"
//	weight = 700
type File struct {
	Width      *float64     `toml:"width"`
	Height     *float64     `toml:"height"`
	Padding    *float64     `toml:"padding"`
	Spacing    *float64     `toml:"spacing"`
	Fallback   string       `toml:"fallback"`
	Background string       `toml:"background"`
	Anchor     []float64    `toml:"anchor"`
	Quality    int          `toml:"quality"`
	Font       fonts.Source `toml:"font"`
	Question   BlockFile    `toml:"question"`
	Answer     BlockFile    `toml:"answer"`
}

// BlockFile 对应 [question] 与 [answer] 表。
type BlockFile struct {
	Size       *float64 `toml:"size"`
	LineHeight *float64 `toml:"line-height"`
	Y          *float64 `toml:"y"`
	Color      string   `toml:"color"`
	Weight     *int     `toml:"weight"`

	// MeasureWeight 为折行测宽所用的字重，未设置时沿用默认样式。
	MeasureWeight *int `toml:"measure-weight"`
}

// Config 是解析并合并默认值之后的最终配置。
type Config struct {
	Style      layout.Style
	Font       fonts.Source
	Background string
	Quality    int
}

// Default 返回不读取任何文件时的配置。
func Default() Config {
	return Config{
		Style:   layout.DefaultStyle(),
		Font:    fonts.Source{Family: "go"},
		Quality: 90,
	}
}

// Load 读取 path 指定的样式文件；path 为空时返回默认配置。
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取样式文件 %s 失败: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("解析样式文件 %s 失败: %w", path, err)
	}
	// 字体文件与背景一样相对样式文件所在目录。
	dir := filepath.Dir(path)
	cfg.Font.Regular = resolvePath(dir, cfg.Font.Regular)
	cfg.Font.Bold = resolvePath(dir, cfg.Font.Bold)
	return cfg, nil
}

// Parse 解析 TOML 样式并叠加到默认配置上。未知字段视为错误。
func Parse(r io.Reader) (Config, error) {
	var f File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Config{}, err
	}
	return f.apply(Default())
}

func (f File) apply(cfg Config) (Config, error) {
	s := &cfg.Style
	setFloat(&s.Width, f.Width)
	setFloat(&s.Height, f.Height)
	setFloat(&s.Padding, f.Padding)
	setFloat(&s.Spacing, f.Spacing)
	if f.Fallback != "" {
		c, err := layout.ParseColor(f.Fallback)
		if err != nil {
			return Config{}, fmt.Errorf("fallback: %w", err)
		}
		s.Fallback = c
	}
	switch len(f.Anchor) {
	case 0:
	case 2:
		s.AnchorX, s.AnchorY = f.Anchor[0], f.Anchor[1]
	default:
		return Config{}, fmt.Errorf("anchor 需要两个数值，实际 %d 个", len(f.Anchor))
	}
	if f.Quality != 0 {
		if f.Quality < 1 || f.Quality > 100 {
			return Config{}, fmt.Errorf("quality 必须在 1-100 之间，实际 %d", f.Quality)
		}
		cfg.Quality = f.Quality
	}
	if f.Font.Family != "" || f.Font.Regular != "" || f.Font.Bold != "" {
		cfg.Font = f.Font
	}
	cfg.Background = f.Background

	var err error
	if s.Question, err = f.Question.apply(s.Question); err != nil {
		return Config{}, fmt.Errorf("question: %w", err)
	}
	if s.Answer, err = f.Answer.apply(s.Answer); err != nil {
		return Config{}, fmt.Errorf("answer: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (b BlockFile) apply(style layout.BlockStyle) (layout.BlockStyle, error) {
	setFloat(&style.FontSize, b.Size)
	setFloat(&style.LineHeight, b.LineHeight)
	setFloat(&style.AnchorY, b.Y)
	if b.Weight != nil {
		style.Weight = *b.Weight
	}
	if b.MeasureWeight != nil {
		style.MeasureWeight = *b.MeasureWeight
	}
	if b.Color != "" {
		c, err := layout.ParseColor(b.Color)
		if err != nil {
			return style, err
		}
		style.Color = c
	}
	return style, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
