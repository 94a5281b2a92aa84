package asset

import "sync"

// Gate 是一次性的就绪信号：只能从未就绪变为就绪，不会回退。
// 零值可以直接使用。
type Gate struct {
	once sync.Once
	mu   sync.Mutex
	done chan struct{}
	subs []*subscription
}

type subscription struct{ fn func() }

func (g *Gate) init() {
	g.mu.Lock()
	if g.done == nil {
		g.done = make(chan struct{})
	}
	g.mu.Unlock()
}

// Resolve 将 Gate 置为就绪并依次调用已登记的回调。多次调用只生效一次。
func (g *Gate) Resolve() {
	g.init()
	g.once.Do(func() {
		g.mu.Lock()
		close(g.done)
		subs := g.subs
		g.subs = nil
		g.mu.Unlock()
		for _, sub := range subs {
			sub.fn()
		}
	})
}

// Done 返回在就绪时关闭的 channel。
func (g *Gate) Done() <-chan struct{} {
	g.init()
	return g.done
}

// Ready reports whether Resolve has been called.
func (g *Gate) Ready() bool {
	select {
	case <-g.Done():
		return true
	default:
		return false
	}
}

// Subscribe 登记一个在就绪后恰好执行一次的回调，返回的函数用于撤销登记。
// 若 Gate 已就绪，回调在新的 goroutine 中立即执行，撤销函数为空操作。
func (g *Gate) Subscribe(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	g.init()
	g.mu.Lock()
	select {
	case <-g.done:
		g.mu.Unlock()
		go fn()
		return func() {}
	default:
	}
	sub := &subscription{fn: fn}
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
	return func() { g.unsubscribe(sub) }
}

func (g *Gate) unsubscribe(sub *subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, s := range g.subs {
		if s == sub {
			g.subs = append(g.subs[:i], g.subs[i+1:]...)
			return
		}
	}
}

// Subscribers 返回尚未执行也未撤销的回调数量。
func (g *Gate) Subscribers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

// Resolved 返回一个已经就绪的 Gate。
func Resolved() *Gate {
	g := &Gate{}
	g.Resolve()
	return g
}
