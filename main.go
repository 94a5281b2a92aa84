package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ByLCY/qacard/asset"
	"github.com/ByLCY/qacard/binding"
	"github.com/ByLCY/qacard/compositor"
	"github.com/ByLCY/qacard/config"
	"github.com/ByLCY/qacard/deck"
	"github.com/ByLCY/qacard/fonts"
	"github.com/ByLCY/qacard/layout"
	"github.com/ByLCY/qacard/renderer"
	canvasrenderer "github.com/ByLCY/qacard/renderer/canvas"
	"github.com/ByLCY/qacard/server"
	"github.com/ByLCY/qacard/watch"
)

// options 汇总命令行参数。
type options struct {
	Question   string
	Answer     string
	Background string
	Output     string
	StylePath  string
	DeckPath   string
	DebugPath  string
	Data       any
	Watch      bool
	Serve      string
}

func main() {
	question := flag.String("q", "", "问题文本")
	answer := flag.String("a", "", "答案文本")
	background := flag.String("bg", "", "背景图片路径（JPEG/PNG/GIF/WebP）")
	output := flag.String("out", filepath.Join("output", renderer.FileName), "输出路径；卡组模式下为输出目录")
	stylePath := flag.String("style", "", "样式文件（TOML）路径")
	deckPath := flag.String("deck", "", "卡组文件路径，批量生成每张卡片")
	dataJSON := flag.String("data", "", "绑定到卡组与文本的 JSON 数据")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径；卡组模式下为目录")
	watchFiles := flag.Bool("watch", false, "监听卡组与样式文件，变化后重新生成")
	serve := flag.String("serve", "", "以 HTTP 服务运行，例如 :8080")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	compositor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		Question:   *question,
		Answer:     *answer,
		Background: *background,
		Output:     *output,
		StylePath:  *stylePath,
		DeckPath:   *deckPath,
		DebugPath:  *debug,
		Data:       inputData,
		Watch:      *watchFiles,
		Serve:      *serve,
	}
	if err := run(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("生成图片失败: %v", err)
	}
}

// run 按参数选择服务、卡组或单张模式。
func run(ctx context.Context, opts options) error {
	switch {
	case opts.Serve != "":
		return serveHTTP(ctx, opts)
	case opts.Watch:
		if err := generate(opts); err != nil {
			compositor.Logger().Warn("initial render failed", "err", err)
		}
		return watchAndGenerate(ctx, opts)
	default:
		return generate(opts)
	}
}

// generate 完成一次生成：读取样式与卡组，渲染并写出 JPEG。
func generate(opts options) error {
	var d *deck.Deck
	stylePath := opts.StylePath
	if opts.DeckPath != "" {
		var err error
		if d, err = deck.ParseFile(opts.DeckPath); err != nil {
			return err
		}
		d = d.Bind(opts.Data)
		if stylePath == "" && d.Style != "" {
			stylePath = relativeTo(opts.DeckPath, d.Style)
		}
	}

	cfg, err := config.Load(stylePath)
	if err != nil {
		return err
	}
	set, err := fonts.LoadAsync(cfg.Font).Wait()
	if err != nil {
		return fmt.Errorf("加载字体失败: %w", err)
	}
	defaultBg := opts.Background
	if defaultBg == "" && cfg.Background != "" {
		defaultBg = relativeTo(stylePath, cfg.Background)
	}

	if d == nil {
		in := compositor.Input{Question: opts.Question, Answer: opts.Answer}
		if opts.Data != nil {
			in = bindInput(in, opts.Data)
		}
		return renderOne(cfg, set, in, defaultBg, opts.Output, opts.DebugPath)
	}

	if d.Background != "" && opts.Background == "" {
		defaultBg = relativeTo(opts.DeckPath, d.Background)
	}
	for _, card := range d.Cards {
		bg := defaultBg
		if card.Background != "" {
			bg = relativeTo(opts.DeckPath, card.Background)
		}
		debugPath := ""
		if opts.DebugPath != "" {
			debugPath = filepath.Join(opts.DebugPath, card.Name+".json")
		}
		if missing := binding.Unresolved(card.Question+"\n"+card.Answer, opts.Data); len(missing) > 0 {
			compositor.Logger().Warn("unresolved placeholders", "card", card.Name, "placeholders", missing)
		}
		in := compositor.Input{Question: card.Question, Answer: card.Answer}
		if err := renderOne(cfg, set, in, bg, filepath.Join(opts.Output, card.FileName()), debugPath); err != nil {
			return fmt.Errorf("卡片 %s: %w", card.Name, err)
		}
	}
	compositor.Logger().Info("deck rendered", "deck", d.Name, "cards", len(d.Cards), "dir", opts.Output)
	return nil
}

func renderOne(cfg config.Config, set *fonts.Set, in compositor.Input, bgPath, outputPath, debugPath string) error {
	var bg *asset.Image
	if bgPath != "" {
		img, err := asset.LoadImage(bgPath)
		if err != nil {
			// 背景不可用时使用后备纯色，不中止生成。
			compositor.Logger().Debug("background unavailable, using fallback color", "path", bgPath, "err", err)
		} else {
			bg = asset.NewImage(img)
		}
	}

	style := cfg.Style
	sess, err := compositor.NewSession(compositor.SessionOptions{
		Driver: compositor.NewDriver(style),
		NewSurface: func() (renderer.Surface, error) {
			return canvasrenderer.NewSurface(int(style.Width), int(style.Height), set), nil
		},
		Background: bg,
		Quality:    cfg.Quality,
	})
	if err != nil {
		return err
	}
	if err := sess.SetInput(in); err != nil {
		return err
	}

	if debugPath != "" {
		if err := writeDebug(sess.Result(), debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if err := sess.Export(file); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("写入图片文件失败: %w", err)
	}
	fmt.Printf("已生成图片：%s\n", outputPath)
	return nil
}

func watchAndGenerate(ctx context.Context, opts options) error {
	var paths []string
	if opts.DeckPath != "" {
		paths = append(paths, opts.DeckPath)
		// 卡组内引用的样式文件同样需要监听。
		if d, err := deck.ParseFile(opts.DeckPath); err == nil && d.Style != "" && opts.StylePath == "" {
			paths = append(paths, relativeTo(opts.DeckPath, d.Style))
		}
	}
	if opts.StylePath != "" {
		paths = append(paths, opts.StylePath)
	}
	w, err := watch.New(paths, 0)
	if err != nil {
		return err
	}
	defer w.Close()
	compositor.Logger().Info("watching", "files", paths)
	return w.Run(ctx, func([]string) error { return generate(opts) })
}

func serveHTTP(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.StylePath)
	if err != nil {
		return err
	}
	loader := fonts.LoadAsync(cfg.Font)

	var bg *asset.Image
	bgPath := opts.Background
	if bgPath == "" && cfg.Background != "" {
		bgPath = relativeTo(opts.StylePath, cfg.Background)
	}
	if bgPath != "" {
		bg = asset.LoadImageAsync(bgPath, func(err error) {
			compositor.Logger().Debug("background unavailable, using fallback color", "path", bgPath, "err", err)
		})
	}

	style := cfg.Style
	srv, err := server.New(server.Options{
		Driver: compositor.NewDriver(style),
		NewSurface: func() (renderer.Surface, error) {
			set, err := loader.Wait()
			if err != nil {
				return nil, err
			}
			return canvasrenderer.NewSurface(int(style.Width), int(style.Height), set), nil
		},
		Background:  bg,
		Fonts:       loader.Gate(),
		Quality:     cfg.Quality,
		FontTimeout: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: opts.Serve, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	compositor.Logger().Info("serving", "addr", opts.Serve)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("启动服务失败: %w", err)
	}
	return nil
}

func bindInput(in compositor.Input, data any) compositor.Input {
	return compositor.Input{
		Question: binding.Interpolate(in.Question, data),
		Answer:   binding.Interpolate(in.Answer, data),
	}
}

// relativeTo 将 ref 解析为相对 base 所在目录的路径；绝对路径原样返回。
func relativeTo(base, ref string) string {
	if ref == "" || filepath.IsAbs(ref) || base == "" {
		return ref
	}
	return filepath.Join(filepath.Dir(base), ref)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
