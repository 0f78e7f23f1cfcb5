package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// Preset is a resize target for an uploaded image
type Preset struct {
	MaxDim  int
	Quality int
}

var (
	LogoPreset  = Preset{MaxDim: 512, Quality: 85}
	PhotoPreset = Preset{MaxDim: 1024, Quality: 80}
)

// Optimize shrinks the image so neither side exceeds the preset and re-encodes it as JPEG.
// Smaller images are only re-encoded. Transparent areas become white.
func Optimize(data []byte, preset Preset) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > preset.MaxDim || bounds.Dy() > preset.MaxDim {
		img = imaging.Fit(img, preset.MaxDim, preset.MaxDim, imaging.Lanczos)
	}
	bounds = img.Bounds()
	img = imaging.Overlay(imaging.New(bounds.Dx(), bounds.Dy(), color.White), img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: preset.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
