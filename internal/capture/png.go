package capture

import (
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
)

// EncodePNG writes the buffer to w as a PNG.
func EncodePNG(w io.Writer, buf *PixelBuffer) error {
	return png.Encode(w, buf.RGBA())
}

// DecodePNG reads a PNG into a new buffer.
func DecodePNG(r io.Reader) (*PixelBuffer, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return FromImage(img), nil
}

// SavePNG writes the buffer to path, creating parent directories.
func SavePNG(path string, buf *PixelBuffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodePNG(f, buf); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ShotName returns a timestamped file name for the index-th shot of a run.
func ShotName(dir string, at time.Time, index int) string {
	return filepath.Join(dir, fmt.Sprintf("shot-%s-%02d.png", at.Format("20060102-150405"), index))
}

// openFile is replaced in tests.
var openFile = browser.OpenFile

// Show opens an image file that was already written in the default viewer.
func Show(path string) error {
	log.Printf("Capture: preview %s", path)
	if err := openFile(path); err != nil {
		return fmt.Errorf("open preview: %w", err)
	}
	return nil
}

// Preview saves the buffer under dir with a fresh preview-*.png name and opens
// it in the default image viewer. It returns the path that was written.
func Preview(buf *PixelBuffer, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "preview-*.png")
	if err != nil {
		return "", err
	}
	path := f.Name()
	if err := EncodePNG(f, buf); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	log.Printf("Capture: preview image %dx%d", buf.Width, buf.Height)
	return path, Show(path)
}
