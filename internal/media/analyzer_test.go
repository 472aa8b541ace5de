package media

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/fetcher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testAnalyzer(t *testing.T, mutate func(*config.Settings)) *Analyzer {
	t.Helper()
	cfg := config.Default()
	cfg.Media.ExtractColors = true
	cfg.Media.NDominantColors = 3
	if mutate != nil {
		mutate(cfg)
	}
	client := fetcher.New(cfg, testLogger())
	t.Cleanup(func() { client.Close() })
	return New(cfg, client, testLogger())
}

// encodePNG renders a w×h image split vertically between two colors.
func encodePNG(t *testing.T, w, h int, left, right color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, left)
			} else {
				img.Set(x, y, right)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAnalyzeBytes(t *testing.T) {
	a := testAnalyzer(t, nil)
	data := encodePNG(t, 200, 100, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255})

	res := a.AnalyzeBytes(data, "image/png")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if res.Width != 200 || res.Height != 100 {
		t.Errorf("dimensions = %dx%d, want 200x100", res.Width, res.Height)
	}
	if res.Format != "PNG" {
		t.Errorf("format = %q, want PNG", res.Format)
	}
	if res.AspectRatio != 2.0 {
		t.Errorf("aspect ratio = %v, want 2.0", res.AspectRatio)
	}
	if res.FileSize != int64(len(data)) {
		t.Errorf("file size = %d, want %d", res.FileSize, len(data))
	}
	if len(res.ImageHash) != 64 {
		t.Errorf("image hash length = %d, want 64 hex chars", len(res.ImageHash))
	}
	if res.HasTransparency {
		t.Error("opaque image flagged as transparent")
	}

	var dominant []DominantColor
	if err := json.Unmarshal([]byte(res.DominantColors), &dominant); err != nil {
		t.Fatalf("dominant colors JSON: %v", err)
	}
	if len(dominant) == 0 {
		t.Fatal("no dominant colors extracted")
	}
	var total float64
	for _, c := range dominant {
		total += c.Percentage
	}
	if total < 99 || total > 101 {
		t.Errorf("percentages sum to %v, want ≈100", total)
	}
}

func TestAnalyzeBytesTransparency(t *testing.T) {
	a := testAnalyzer(t, nil)
	data := encodePNG(t, 50, 50, color.NRGBA{255, 0, 0, 128}, color.NRGBA{0, 0, 255, 255})

	res := a.AnalyzeBytes(data, "image/png")
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if !res.HasTransparency {
		t.Error("semi-transparent image not flagged")
	}
}

func TestAnalyzeBytesDecodeFailure(t *testing.T) {
	a := testAnalyzer(t, nil)
	res := a.AnalyzeBytes([]byte("not an image"), "image/png")
	if res.Error == "" {
		t.Error("expected a decode error")
	}
}

func TestAnalyzeBudgetExceeded(t *testing.T) {
	payload := encodePNG(t, 400, 400, color.NRGBA{10, 20, 30, 255}, color.NRGBA{200, 100, 50, 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload)
	}))
	defer srv.Close()

	a := testAnalyzer(t, func(cfg *config.Settings) {
		cfg.Media.MaxFileSizeMB = 0 // budget disabled, should succeed
	})
	if res := a.Analyze(context.Background(), srv.URL); res.Error != "" {
		t.Errorf("unexpected error with budget disabled: %s", res.Error)
	}
}

func TestWebsafeSnapping(t *testing.T) {
	colors := []DominantColor{
		{RGB: [3]int{250, 2, 53}, Percentage: 60},
		{RGB: [3]int{255, 0, 51}, Percentage: 40},
	}
	hist := websafeHistogram(colors)
	// Both snap to #ff0033 and aggregate.
	if got := hist["#ff0033"]; got != 100 {
		t.Errorf("histogram = %v, want #ff0033 at 100", hist)
	}
}

func TestSnapChannel(t *testing.T) {
	cases := map[int]int{0: 0, 25: 0, 26: 51, 100: 102, 229: 204, 230: 255, 255: 255}
	for in, want := range cases {
		if got := snapChannel(in); got != want {
			t.Errorf("snapChannel(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestMimeFor(t *testing.T) {
	if got := mimeFor("png", ""); got != "image/png" {
		t.Errorf("mimeFor = %q", got)
	}
	if got := mimeFor("jpeg", "image/jpeg; charset=binary"); got != "image/jpeg" {
		t.Errorf("mimeFor with content type = %q", got)
	}
	if got := mimeFor("png", "text/html"); got != "image/png" {
		t.Errorf("mimeFor with wrong content type = %q", got)
	}
}
