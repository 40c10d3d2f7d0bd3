package source

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
}

// Dir replays the images of a directory in lexical order. Every image is
// converted to grayscale and must have the size of the first one.
type Dir struct {
	files  []string
	next   int
	size   image.Point
	loop   bool
	ticker *time.Ticker
}

// OpenDir lists the images of path.
func OpenDir(path string, interval time.Duration, loop bool) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	d := &Dir{loop: loop}
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		d.files = append(d.files, filepath.Join(path, e.Name()))
	}
	if len(d.files) == 0 {
		return nil, fmt.Errorf("no images found in %s", path)
	}
	sort.Strings(d.files)

	first, err := d.load(d.files[0])
	if err != nil {
		return nil, err
	}
	d.size = first.Rect.Size()
	if interval > 0 {
		d.ticker = time.NewTicker(interval)
	}
	return d, nil
}

// Size implements Source.
func (d *Dir) Size() image.Point { return d.size }

// Next implements Source.
func (d *Dir) Next(ctx context.Context) (*image.Gray, error) {
	if err := pace(ctx, d.ticker); err != nil {
		return nil, err
	}
	if d.next == len(d.files) {
		if !d.loop {
			return nil, io.EOF
		}
		d.next = 0
	}
	name := d.files[d.next]
	d.next++

	img, err := d.load(name)
	if err != nil {
		return nil, err
	}
	if img.Rect.Size() != d.size {
		return nil, fmt.Errorf("%s: frame size %v differs from %v", name, img.Rect.Size(), d.size)
	}
	return img, nil
}

// Close implements Source.
func (d *Dir) Close() error {
	if d.ticker != nil {
		d.ticker.Stop()
	}
	return nil
}

func (d *Dir) load(name string) (*image.Gray, error) {
	src, err := imaging.Open(name)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	b := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Rect, src, b.Min, draw.Src)
	return gray, nil
}
