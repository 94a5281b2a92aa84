package layout

// BuildOptions 配置布局阶段所需的依赖，例如测宽后端。
type BuildOptions struct {
	Typesetter Typesetter
}

// Typesetter 为给定字重与字号（像素）提供测宽函数。
type Typesetter interface {
	MeasureFunc(weight int, fontSize float64) (MeasureFunc, error)
}
