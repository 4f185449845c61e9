package desktop

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func writeImage(t *testing.T, name string, w, h int, encode func(*os.File, image.Image) error) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadImageScalesDown(t *testing.T) {
	path := writeImage(t, "wide.png", 512, 128, func(f *os.File, img image.Image) error {
		return png.Encode(f, img)
	})

	data, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if data.Width != 256 || data.Height != 64 {
		t.Errorf("size = %dx%d, want 256x64", data.Width, data.Height)
	}
	if data.RowStride != 256*4 || len(data.Data) != 256*4*64 {
		t.Errorf("rowstride=%d len=%d", data.RowStride, len(data.Data))
	}
	if !data.HasAlpha || data.Channels != 4 || data.BitsPerSample != 8 {
		t.Errorf("unexpected layout %+v", data)
	}
}

func TestLoadImageKeepsSmall(t *testing.T) {
	path := writeImage(t, "small.bmp", 16, 8, func(f *os.File, img image.Image) error {
		return bmp.Encode(f, img)
	})

	data, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if got := data.Bounds(); got.Dx() != 16 || got.Dy() != 8 {
		t.Errorf("bounds = %v, want 16x8", got)
	}
	// First pixel is (0, 0, 200, 255).
	if px := data.Data[:4]; px[0] != 0 || px[1] != 0 || px[2] != 200 || px[3] != 255 {
		t.Errorf("first pixel = %v", px)
	}
}

func TestLoadImageErrors(t *testing.T) {
	if _, err := LoadImage(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing file should fail")
	}
	path := filepath.Join(t.TempDir(), "junk.png")
	os.WriteFile(path, []byte("not an image"), 0o600)
	if _, err := LoadImage(path); err == nil {
		t.Error("junk file should fail")
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, wantW, wantH int
	}{
		{100, 50, 100, 50},
		{512, 256, 256, 128},
		{256, 1024, 64, 256},
		{4000, 1, 256, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, 256)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d) = %d, %d; want %d, %d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
