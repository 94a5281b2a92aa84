package compositor

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ByLCY/qacard/asset"
	"github.com/ByLCY/qacard/layout"
	"github.com/ByLCY/qacard/renderer"
)

// ErrNotReady 表示字体尚未就绪，本次渲染被整体跳过。
var ErrNotReady = errors.New("字体尚未就绪")

// SurfaceFactory 在首次渲染时创建画布；此时字体已经就绪。
type SurfaceFactory func() (renderer.Surface, error)

// SessionOptions 配置一个渲染会话。
type SessionOptions struct {
	Driver     *Driver
	NewSurface SurfaceFactory
	// Background 可为 nil，表示始终使用后备纯色。
	Background *asset.Image
	// Fonts 为字体就绪信号；nil 表示字体已可用。
	Fonts *asset.Gate
	// Quality 为 JPEG 导出质量，<=0 时使用默认值。
	Quality int
	// OnRender 在每次成功渲染后调用（持有会话锁）。
	OnRender func(*layout.Result)
}

// Session 持有唯一的画布与当前输入，按输入变化与资源就绪触发重绘。
// 渲染互斥执行：一次渲染结束之前不会开始下一次。
type Session struct {
	opts SessionOptions
	// 就绪信号，Fonts 为 nil 时为一个已就绪的 Gate。
	fonts *asset.Gate

	// 撤销就绪回调，由 Close 调用。
	cancels []func()

	mu      sync.Mutex
	closed  bool
	surface renderer.Surface
	input   Input
	last    *layout.Result
}

// NewSession 创建会话，并登记字体与背景的就绪回调，各触发恰好一次重绘。
// 回调在解除信号的 goroutine 上执行，与 SetInput 通过会话锁互斥。
// 短生命周期的会话必须调用 Close，否则共享的信号会一直持有它。
func NewSession(opts SessionOptions) (*Session, error) {
	if opts.Driver == nil {
		return nil, fmt.Errorf("会话缺少 Driver")
	}
	if opts.NewSurface == nil {
		return nil, fmt.Errorf("会话缺少画布工厂")
	}
	s := &Session{opts: opts, fonts: opts.Fonts}
	if s.fonts == nil {
		s.fonts = asset.Resolved()
	}
	// 已就绪的信号没有状态变化可观察，不再登记。
	if !s.fonts.Ready() {
		s.cancels = append(s.cancels, s.fonts.Subscribe(func() { s.rerender("fonts") }))
	}
	if bg := opts.Background; bg != nil && !bg.Loaded() {
		s.cancels = append(s.cancels, bg.Gate().Subscribe(func() { s.rerender("background") }))
	}
	return s, nil
}

// Close 撤销就绪回调并释放画布。之后的渲染与导出都是空操作。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.surface = nil
	s.last = nil
}

// SetInput 替换当前输入；字体就绪时同步重绘，否则仅保存输入。
func (s *Session) SetInput(in Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = in
	if s.closed {
		return nil
	}
	if !s.fonts.Ready() {
		Logger().Debug("render suppressed: fonts not ready")
		return nil
	}
	return s.renderLocked()
}

// Input 返回当前输入。
func (s *Session) Input() Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// RenderNow 以当前输入立即渲染；字体未就绪时返回 ErrNotReady 且不做任何绘制。
func (s *Session) RenderNow() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if !s.fonts.Ready() {
		return ErrNotReady
	}
	return s.renderLocked()
}

// Rendered reports whether at least one render pass completed.
func (s *Session) Rendered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last != nil
}

// Result 返回最近一次渲染的布局结果，未渲染时为 nil。
func (s *Session) Result() *layout.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Export 将当前画面编码为 JPEG 写入 w。
// 画布尚未创建或从未渲染时不做任何事并返回 nil。
func (s *Session) Export(w io.Writer) error {
	return s.withImage(func(exp renderer.Exporter) error {
		if err := renderer.EncodeJPEG(w, exp.Image(), s.opts.Quality); err != nil {
			return err
		}
		Logger().Info("exported image", "file", renderer.FileName)
		return nil
	})
}

// Preview 与 Export 相同，但先缩放到给定宽度。
func (s *Session) Preview(w io.Writer, width int) error {
	return s.withImage(func(exp renderer.Exporter) error {
		return renderer.EncodeJPEG(w, renderer.Thumbnail(exp.Image(), width), s.opts.Quality)
	})
}

func (s *Session) withImage(fn func(renderer.Exporter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.surface == nil || s.last == nil {
		Logger().Debug("export skipped: no surface realized")
		return nil
	}
	exp, ok := s.surface.(renderer.Exporter)
	if !ok {
		return fmt.Errorf("画布不支持导出")
	}
	return fn(exp)
}

func (s *Session) rerender(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !s.fonts.Ready() {
		Logger().Debug("render suppressed: fonts not ready", "trigger", reason)
		return
	}
	if err := s.renderLocked(); err != nil {
		Logger().Warn("render failed", "trigger", reason, "err", err)
	}
}

func (s *Session) renderLocked() error {
	if s.surface == nil {
		surface, err := s.opts.NewSurface()
		if err != nil {
			return fmt.Errorf("创建画布失败: %w", err)
		}
		s.surface = surface
	}
	q, a := s.opts.Driver.Specs(s.input)
	res, err := s.opts.Driver.Render(s.surface, s.opts.Background, q, a)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	s.last = res
	Logger().Debug("rendered",
		"questionLines", len(res.Question.Lines),
		"answerLines", len(res.Answer.Lines),
		"background", s.opts.Background.Loaded())
	if s.opts.OnRender != nil {
		s.opts.OnRender(res)
	}
	return nil
}
