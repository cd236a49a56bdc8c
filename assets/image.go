package assets

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image.Decode
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"orbitviz/gpu"
)

// ImageDecoder decodes image files into tightly packed RGBA pixels, first row
// at the top. Images larger than MaxSize on either side are scaled down to
// fit, keeping their aspect ratio; zero means no limit.
type ImageDecoder struct {
	MaxSize int
}

// DecodeImage decodes a JPEG, PNG, TIFF, BMP or WebP file at full size
func DecodeImage(path string) (gpu.Image, error) {
	return ImageDecoder{}.Decode(path)
}

// Decode implements the texture set's image decoder
func (d ImageDecoder) Decode(path string) (gpu.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return gpu.Image{}, err
	}
	defer f.Close()

	img, err := d.DecodeReader(f)
	if err != nil {
		return gpu.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeReader decodes an image from r
func (d ImageDecoder) DecodeReader(r io.Reader) (gpu.Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return gpu.Image{}, err
	}
	sz := src.Bounds().Size()
	if sz.X == 0 || sz.Y == 0 {
		return gpu.Image{}, fmt.Errorf("empty %s image", format)
	}

	tsz := fitSize(sz, d.MaxSize)
	rgba := image.NewRGBA(image.Rectangle{Max: tsz})
	if tsz == sz {
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(rgba, rgba.Bounds(), src, src.Bounds(), draw.Src, nil)
	}

	return gpu.Image{Width: tsz.X, Height: tsz.Y, Pixels: rgba.Pix}, nil
}

func fitSize(sz image.Point, limit int) image.Point {
	if limit <= 0 || (sz.X <= limit && sz.Y <= limit) {
		return sz
	}
	if sz.X >= sz.Y {
		return image.Point{X: limit, Y: max(1, sz.Y*limit/sz.X)}
	}
	return image.Point{X: max(1, sz.X*limit/sz.Y), Y: limit}
}
