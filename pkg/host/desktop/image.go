package desktop

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxImageSize bounds the longer side of images sent to the service.
const MaxImageSize = 256

// LoadImage decodes the image file at path and converts it to ImageData,
// scaled down to MaxImageSize if needed.
func LoadImage(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return NewImageData(img), nil
}

// NewImageData converts img to 8-bit RGBA ImageData, scaling it so neither
// side exceeds MaxImageSize.
func NewImageData(img image.Image) *ImageData {
	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), MaxImageSize)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}

	return &ImageData{
		Width:         int32(w),
		Height:        int32(h),
		RowStride:     int32(dst.Stride),
		HasAlpha:      true,
		BitsPerSample: 8,
		Channels:      4,
		Data:          dst.Pix,
	}
}

func fitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
