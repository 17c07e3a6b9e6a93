package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// loadFace loads the first face of a TTF/OTF/TTC file. An empty path
// uses the embedded fallback font data.
func loadFace(path string, size float64, fallback []byte) (font.Face, error) {
	data := fallback
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading font: %w", err)
		}
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", fontName(path), err)
	}
	f, err := coll.Font(0)
	if err != nil {
		return nil, fmt.Errorf("selecting face from %s: %w", fontName(path), err)
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face from %s: %w", fontName(path), err)
	}
	return face, nil
}

func loadRegular(path string, size float64) (font.Face, error) {
	return loadFace(path, size, goregular.TTF)
}

func loadLarge(path string, size float64) (font.Face, error) {
	return loadFace(path, size, gobold.TTF)
}

func fontName(path string) string {
	if path == "" {
		return "embedded font"
	}
	return path
}
