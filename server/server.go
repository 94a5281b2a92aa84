package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ByLCY/qacard/asset"
	"github.com/ByLCY/qacard/compositor"
	"github.com/ByLCY/qacard/renderer"
)

// DefaultPreviewWidth 是 websocket 预览图的宽度。
const DefaultPreviewWidth = 540

// Options 配置 HTTP 服务。
type Options struct {
	Driver     *compositor.Driver
	NewSurface compositor.SurfaceFactory
	Background *asset.Image
	// Fonts 为 nil 时视为字体已就绪。
	Fonts        *asset.Gate
	Quality      int
	PreviewWidth int
	// FontTimeout 限制请求等待字体就绪的时间，<=0 时只受请求上下文约束。
	FontTimeout time.Duration
}

// Server 提供表单页面、JPEG 下载与 websocket 实时预览。
// 每个请求或连接使用独立的渲染会话。
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New 校验参数并注册路由。
func New(opts Options) (*Server, error) {
	if opts.Driver == nil || opts.NewSurface == nil {
		return nil, fmt.Errorf("服务缺少 Driver 或画布工厂")
	}
	if opts.Fonts == nil {
		opts.Fonts = asset.Resolved()
	}
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = DefaultPreviewWidth
	}
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /download", s.handleDownload)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) newSession() (*compositor.Session, error) {
	return compositor.NewSession(compositor.SessionOptions{
		Driver:     s.opts.Driver,
		NewSurface: s.opts.NewSurface,
		Background: s.opts.Background,
		Fonts:      s.opts.Fonts,
		Quality:    s.opts.Quality,
	})
}

// waitFonts 阻塞到字体就绪或 ctx 结束。
func (s *Server) waitFonts(ctx context.Context) error {
	if s.opts.FontTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FontTimeout)
		defer cancel()
	}
	select {
	case <-s.opts.Fonts.Done():
		return nil
	case <-ctx.Done():
		return compositor.ErrNotReady
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{PreviewWidth: s.opts.PreviewWidth}); err != nil {
		compositor.Logger().Warn("render index failed", "err", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.waitFonts(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	sess, err := s.newSession()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer sess.Close()
	var buf bytes.Buffer
	if err := render(sess, in, func() error { return sess.Export(&buf) }); err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", renderer.FileName))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		compositor.Logger().Warn("write download failed", "err", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		compositor.Logger().Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	log := compositor.Logger().With(slog.String("conn", uuid.NewString()))
	log.Info("preview connected", "remote", r.RemoteAddr)
	defer log.Info("preview disconnected")

	sess, err := s.newSession()
	if err != nil {
		writeError(conn, err)
		return
	}
	defer sess.Close()
	for {
		var in compositor.Input
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read failed", "err", err)
			}
			return
		}
		if err := s.waitFonts(r.Context()); err != nil {
			writeError(conn, err)
			continue
		}
		var buf bytes.Buffer
		err := render(sess, in, func() error { return sess.Preview(&buf, s.opts.PreviewWidth) })
		if err != nil {
			log.Warn("preview render failed", "err", err)
			writeError(conn, err)
			continue
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			log.Debug("write failed", "err", err)
			return
		}
	}
}

func render(sess *compositor.Session, in compositor.Input, export func() error) error {
	if err := sess.SetInput(in); err != nil {
		return err
	}
	if !sess.Rendered() {
		return compositor.ErrNotReady
	}
	return export()
}

// readInput 支持表单与 JSON 两种请求体。
func readInput(r *http.Request) (compositor.Input, error) {
	var in compositor.Input
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return in, fmt.Errorf("解析 JSON 请求失败: %w", err)
		}
		return in, nil
	}
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("解析表单失败: %w", err)
	}
	in.Question = r.PostForm.Get("question")
	in.Answer = r.PostForm.Get("answer")
	return in, nil
}

func statusFor(err error) int {
	if errors.Is(err, compositor.ErrNotReady) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorMessage struct {
	Error string `json:"error"`
}

func writeError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(errorMessage{Error: err.Error()})
}

type indexData struct {
	PreviewWidth int
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Quote image</title>
<style>
body { font-family: sans-serif; display: flex; gap: 2rem; margin: 2rem; }
form { display: flex; flex-direction: column; gap: .5rem; width: 28rem; }
textarea { height: 8rem; }
</style>
</head>
<body>
<form method="post" action="/download">
  <label for="question">Question</label>
  <textarea id="question" name="question"></textarea>
  <label for="answer">Answer</label>
  <textarea id="answer" name="answer"></textarea>
  <button type="submit">Download</button>
</form>
<img id="preview" width="{{.PreviewWidth}}" alt="preview">
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "blob";
const preview = document.getElementById("preview");
const send = () => ws.send(JSON.stringify({
  question: document.getElementById("question").value,
  answer: document.getElementById("answer").value,
}));
ws.onopen = send;
ws.onmessage = (ev) => {
  if (typeof ev.data === "string") { console.warn(ev.data); return; }
  const old = preview.src;
  preview.src = URL.createObjectURL(ev.data);
  if (old) URL.revokeObjectURL(old);
};
for (const id of ["question", "answer"]) {
  document.getElementById(id).addEventListener("input", send);
}
</script>
</body>
</html>
`))
