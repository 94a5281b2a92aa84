package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/qacard/compositor"
)

const testStyle = `
width = 540
height = 675
padding = 40

[question]
size = 24
line-height = 24
y = 220

[answer]
size = 19
line-height = 24
y = 300
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func decodeJPEG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}

func TestGenerateSingle(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "style.toml")
	writeFile(t, stylePath, testStyle)
	out := filepath.Join(dir, "output", "quote-image.jpg")
	debug := filepath.Join(dir, "debug", "layout.json")

	var data any
	if err := json.Unmarshal([]byte(`{"topic":"design"}`), &data); err != nil {
		t.Fatal(err)
	}
	err := generate(options{
		Question:   "What is the meaning of ${topic}?",
		Answer:     "It is how it works.",
		Background: filepath.Join(dir, "missing.jpg"),
		Output:     out,
		StylePath:  stylePath,
		DebugPath:  debug,
		Data:       data,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got := decodeJPEG(t, out).Bounds(); got != image.Rect(0, 0, 540, 675) {
		t.Fatalf("unexpected image bounds %v", got)
	}

	raw, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("debug json missing: %v", err)
	}
	var res struct {
		Question struct {
			Lines []struct{ Text string }
		}
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("debug json invalid: %v", err)
	}
	if len(res.Question.Lines) == 0 || res.Question.Lines[0].Text != "What is the meaning of design?" {
		t.Fatalf("unexpected debug lines: %+v", res.Question.Lines)
	}
}

func TestGenerateDeck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "style.toml"), testStyle)
	deckPath := filepath.Join(dir, "design.deck")
	writeFile(t, deckPath, `deck Design v1 {
  style: "style.toml"
  card meaning {
    question: "What is the meaning of design?"
    answer: "Design is how it works."
  }
  card blank {}
}
`)
	out := filepath.Join(dir, "cards")
	if err := generate(options{DeckPath: deckPath, Output: out}); err != nil {
		t.Fatalf("generate deck failed: %v", err)
	}
	for _, name := range []string{"meaning.jpg", "blank.jpg"} {
		if got := decodeJPEG(t, filepath.Join(out, name)).Bounds(); got.Dx() != 540 {
			t.Fatalf("%s: unexpected bounds %v", name, got)
		}
	}
}

func TestGenerateReportsBadStyle(t *testing.T) {
	dir := t.TempDir()
	stylePath := filepath.Join(dir, "style.toml")
	writeFile(t, stylePath, "unknown = 1\n")
	if err := generate(options{StylePath: stylePath, Output: filepath.Join(dir, "x.jpg")}); err == nil {
		t.Fatalf("expected error for unknown style key")
	}
}

func TestRelativeTo(t *testing.T) {
	cases := []struct{ base, ref, want string }{
		{"decks/design.deck", "bg.jpg", filepath.Join("decks", "bg.jpg")},
		{"", "bg.jpg", "bg.jpg"},
		{"decks/design.deck", "/abs/bg.jpg", "/abs/bg.jpg"},
		{"decks/design.deck", "", ""},
	}
	for _, c := range cases {
		if got := relativeTo(c.base, c.ref); got != c.want {
			t.Fatalf("relativeTo(%q, %q) = %q, want %q", c.base, c.ref, got, c.want)
		}
	}
}

func TestMissingBackgroundLogsOnlyAtDebug(t *testing.T) {
	var logs bytes.Buffer
	prev := compositor.Logger()
	compositor.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})))
	defer compositor.SetLogger(prev)

	dir := t.TempDir()
	stylePath := filepath.Join(dir, "style.toml")
	writeFile(t, stylePath, testStyle)
	err := generate(options{
		Question:   "Q",
		Background: filepath.Join(dir, "missing.jpg"),
		Output:     filepath.Join(dir, "out.jpg"),
		StylePath:  stylePath,
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if strings.Contains(logs.String(), "background unavailable") {
		t.Fatalf("background failure should be logged at debug level only, got:\n%s", logs.String())
	}
}
