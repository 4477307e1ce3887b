package world

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// HeightmapOptions controls how an image is turned into terrain.
type HeightmapOptions struct {
	// Size resamples the image to Size x Size voxels. Zero keeps the source size.
	Size int
	// MaxHeight is the column height produced by a white pixel.
	MaxHeight int
}

// LoadHeightmap decodes a PNG, JPEG, BMP or WebP file and builds terrain from its luminance.
func LoadHeightmap(path string, opts HeightmapOptions) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %s: %w", path, err)
	}
	return HeightmapFromImage(img, opts), nil
}

// HeightmapFromImage converts img to a grayscale height field centred on the
// origin, one column per pixel.
func HeightmapFromImage(img image.Image, opts HeightmapOptions) *Object {
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 64
	}
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if opts.Size > 0 {
		w, h = opts.Size, opts.Size
	}

	gray := image.NewGray(image.Rect(0, 0, w, h))
	if opts.Size > 0 {
		draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, src, draw.Src, nil)
	} else {
		draw.Draw(gray, gray.Bounds(), img, src.Min, draw.Src)
	}

	o := NewObject()
	fillColumns(o, -w/2, -h/2, w, h, func(x, y int) int {
		l := gray.GrayAt(x+w/2, y+h/2).Y
		return int(l)*opts.MaxHeight/255 - 1
	})
	return o
}
