// Package media analyzes image assets discovered by the crawl: intrinsic
// properties, dominant colors, web-safe histogram and EXIF. Every analysis
// is best-effort; errors are recorded on the media row and never abort the
// parent crawl.
package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/fetcher"
)

// Analysis carries everything the analyzer computed for one image.
type Analysis struct {
	Width           int
	Height          int
	Format          string
	ColorMode       string
	MimeType        string
	FileSize        int64
	AspectRatio     float64
	HasTransparency bool
	ImageHash       string

	DominantColors string // JSON [{rgb, percentage}]
	WebsafeColors  string // JSON {hex: percentage}
	EXIF           string // JSON, empty when absent

	Error string // non-empty when the analysis failed
}

// Analyzer fetches and inspects images within a byte budget.
type Analyzer struct {
	cfg    *config.MediaSettings
	client *fetcher.Client
	logger *slog.Logger
}

// New builds an analyzer sharing the engine's HTTP client.
func New(cfg *config.Settings, client *fetcher.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    &cfg.Media,
		client: client,
		logger: logger.With("component", "media"),
	}
}

// Analyze fetches the image at url and computes its properties. A non-nil
// Analysis always comes back; failures set Error and leave the rest zero.
func (a *Analyzer) Analyze(ctx context.Context, url string) *Analysis {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	res := a.client.Get(ctx, url)
	if res.Err != nil {
		return &Analysis{Error: fmt.Sprintf("fetch: %v", res.Err)}
	}
	if !res.OK() {
		return &Analysis{Error: fmt.Sprintf("fetch: HTTP %d", res.StatusCode)}
	}

	budget := a.cfg.MaxFileSizeMB * 1024 * 1024
	if budget > 0 && int64(len(res.Body)) > budget {
		return &Analysis{Error: fmt.Sprintf("file size %d exceeds budget %d", len(res.Body), budget)}
	}

	return a.AnalyzeBytes(res.Body, res.ContentType)
}

// AnalyzeBytes inspects already-fetched image bytes.
func (a *Analyzer) AnalyzeBytes(data []byte, contentType string) *Analysis {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return &Analysis{Error: fmt.Sprintf("decode: %v", err), FileSize: int64(len(data))}
	}

	bounds := img.Bounds()
	sum := sha256.Sum256(data)

	analysis := &Analysis{
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		Format:          strings.ToUpper(format),
		ColorMode:       colorMode(img),
		MimeType:        mimeFor(format, contentType),
		FileSize:        int64(len(data)),
		HasTransparency: hasTransparency(img),
		ImageHash:       hex.EncodeToString(sum[:]),
	}
	if bounds.Dy() > 0 {
		analysis.AspectRatio = math.Round(float64(bounds.Dx())/float64(bounds.Dy())*100) / 100
	}

	if a.cfg.ExtractColors {
		dominant := dominantColors(img, a.cfg.NDominantColors)
		if dcJSON, err := json.Marshal(dominant); err == nil {
			analysis.DominantColors = string(dcJSON)
		}
		if wsJSON, err := json.Marshal(websafeHistogram(dominant)); err == nil {
			analysis.WebsafeColors = string(wsJSON)
		}
	}

	if exifJSON := extractEXIF(data); exifJSON != "" {
		analysis.EXIF = exifJSON
	}
	return analysis
}

// colorMode reports the pixel layout the decoder produced.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "L"
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64:
		return "RGBA"
	case *image.Paletted:
		return "P"
	case *image.CMYK:
		return "CMYK"
	default:
		return "RGB"
	}
}

// hasTransparency reports whether the image carries an alpha band with any
// non-opaque pixel. Sampled on a grid to stay cheap on large images.
func hasTransparency(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Paletted:
	default:
		return false
	}

	bounds := img.Bounds()
	stepX := max(1, bounds.Dx()/64)
	stepY := max(1, bounds.Dy()/64)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			if _, _, _, alpha := img.At(x, y).RGBA(); alpha < 0xffff {
				return true
			}
		}
	}
	return false
}

func mimeFor(format, contentType string) string {
	if contentType != "" {
		if i := strings.Index(contentType, ";"); i > 0 {
			contentType = contentType[:i]
		}
		contentType = strings.TrimSpace(contentType)
		if strings.HasPrefix(contentType, "image/") {
			return contentType
		}
	}
	return "image/" + strings.ToLower(format)
}

// exifFields carries the tag subset worth keeping; nulls are omitted.
type exifFields struct {
	ImageWidth  *int    `json:"image_width,omitempty"`
	ImageLength *int    `json:"image_length,omitempty"`
	Make        *string `json:"make,omitempty"`
	Model       *string `json:"model,omitempty"`
	DateTime    *string `json:"datetime,omitempty"`
}

func extractEXIF(data []byte) string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var fields exifFields
	if tag, err := x.Get(exif.ImageWidth); err == nil {
		if v, err := tag.Int(0); err == nil {
			fields.ImageWidth = &v
		}
	}
	if tag, err := x.Get(exif.ImageLength); err == nil {
		if v, err := tag.Int(0); err == nil {
			fields.ImageLength = &v
		}
	}
	if tag, err := x.Get(exif.Make); err == nil {
		if v, err := tag.StringVal(); err == nil {
			fields.Make = &v
		}
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if v, err := tag.StringVal(); err == nil {
			fields.Model = &v
		}
	}
	if tag, err := x.Get(exif.DateTime); err == nil {
		if v, err := tag.StringVal(); err == nil {
			fields.DateTime = &v
		}
	}

	if fields == (exifFields{}) {
		return ""
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}
