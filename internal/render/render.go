package render

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/TobiSchelling/SmogStory/internal/aqi"
	"github.com/TobiSchelling/SmogStory/internal/config"
)

// Renderer draws AQI story images onto tier background assets.
type Renderer struct {
	cfg config.Render
	now func() time.Time
}

// New creates a renderer. A nil now uses time.Now.
func New(cfg config.Render, now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{cfg: cfg, now: now}
}

// FileName returns the story file name for the hour containing t.
func FileName(t time.Time) string {
	return t.Format("2006-01-02_15") + ".png"
}

// ParseFileName returns the local hour a story file name stands for.
func ParseFileName(name string) (time.Time, bool) {
	stem := strings.TrimSuffix(filepath.Base(name), ".png")
	t, err := time.ParseInLocation("2006-01-02_15", stem, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Caption formats t as e.g. "June 01 at 14:00".
func Caption(t time.Time) string {
	return t.Format("January 02 at 15:00")
}

// CenterX returns the left edge that centers a text of the given width.
func CenterX(imageWidth int, textWidth float64) float64 {
	return float64((imageWidth - int(textWidth)) / 2)
}

// AssetPath returns the background asset path for a tier.
func (r *Renderer) AssetPath(tier aqi.Tier) string {
	return filepath.Join(r.cfg.AssetsDir, tier.Name+".png")
}

// OutputPath returns the story path for the hour containing t.
func (r *Renderer) OutputPath(t time.Time) string {
	return filepath.Join(r.cfg.OutputDir, FileName(t))
}

// Render draws the story for value and returns the written file path.
// An existing file for the same hour is overwritten.
func (r *Renderer) Render(value int) (string, error) {
	now := r.now()
	tier := aqi.Classify(value)

	background, err := gg.LoadPNG(r.AssetPath(tier))
	if err != nil {
		return "", fmt.Errorf("loading background %s: %w", tier.Name, err)
	}

	regular, err := loadRegular(r.cfg.Fonts.Regular, r.cfg.Fonts.RegularSize)
	if err != nil {
		return "", fmt.Errorf("loading regular font: %w", err)
	}
	defer regular.Close()

	large, err := loadLarge(r.cfg.Fonts.Large, r.cfg.Fonts.LargeSize)
	if err != nil {
		return "", fmt.Errorf("loading large font: %w", err)
	}
	defer large.Close()

	dc := gg.NewContextForImage(background)
	dc.SetHexColor(tier.Color)

	layout := r.cfg.Layout
	y := layout.Top
	if r.cfg.Title != "" {
		drawCentered(dc, regular, r.cfg.Title, y)
		y += layout.TitleGap
	}
	drawCentered(dc, regular, Caption(now), y)
	y += layout.LineGap
	drawCentered(dc, regular, fmt.Sprintf("AQI: %d", value), y)
	y += layout.LabelGap
	drawCentered(dc, large, tier.Label, y)

	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outputPath := r.OutputPath(now)
	if err := dc.SavePNG(outputPath); err != nil {
		return "", fmt.Errorf("writing %s: %w", outputPath, err)
	}

	log.Printf("Story image generated: %s", outputPath)
	return outputPath, nil
}

// drawCentered draws text with its top edge at y, centered horizontally.
func drawCentered(dc *gg.Context, face font.Face, text string, y int) {
	dc.SetFontFace(face)
	width, _ := dc.MeasureString(text)
	x := CenterX(dc.Width(), width)
	baseline := float64(y) + float64(face.Metrics().Ascent.Ceil())
	dc.DrawString(text, x, baseline)
}
