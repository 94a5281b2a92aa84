package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ByLCY/qacard/compositor"
)

// DefaultDebounce 合并编辑器保存时产生的连续事件。
const DefaultDebounce = 150 * time.Millisecond

// Watcher 监听一组文件的写入，去抖后交给单一消费者处理。
// 监听的是文件所在目录，以覆盖“写临时文件再改名”的保存方式。
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// New 创建监听 paths 的 Watcher。debounce<=0 时使用 DefaultDebounce。
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("没有需要监听的文件")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	w := &Watcher{fw: fw, files: make(map[string]struct{}), debounce: debounce}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("解析路径 %s 失败: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("监听目录 %s 失败: %w", dir, err)
		}
	}
	return w, nil
}

// Run 阻塞直到 ctx 结束或监听器关闭。每批变化调用一次 fn，调用之间不会重叠。
// fn 返回的错误只记录日志，不会中止监听。
func (w *Watcher) Run(ctx context.Context, fn func(changed []string) error) error {
	log := compositor.Logger()
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			abs, _ := filepath.Abs(event.Name)
			pending[abs] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			sort.Strings(changed)
			log.Info("files changed", "files", changed)
			if err := fn(changed); err != nil {
				log.Warn("re-render failed", "err", err)
			}
		}
	}
}

// Close 停止监听，Run 随之返回。
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
