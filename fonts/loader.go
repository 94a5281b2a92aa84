package fonts

import "github.com/ByLCY/qacard/asset"

// Loader 在后台加载字体，完成后解除 Gate（“字体就绪”信号）。
type Loader struct {
	gate asset.Gate
	done chan struct{}
	set  *Set
	err  error
}

// LoadAsync 在新的 goroutine 中加载 src。
// 加载失败时 Gate 永远不会就绪，错误可通过 Wait 读取。
func LoadAsync(src Source) *Loader {
	l := &Loader{done: make(chan struct{})}
	go func() {
		set, err := LoadSet(src)
		l.set, l.err = set, err
		close(l.done)
		if err == nil {
			l.gate.Resolve()
		}
	}()
	return l
}

// Gate 返回字体就绪信号。
func (l *Loader) Gate() *asset.Gate { return &l.gate }

// Wait 阻塞直到加载结束，返回结果。
func (l *Loader) Wait() (*Set, error) {
	<-l.done
	return l.set, l.err
}
