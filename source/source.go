// Package source provides the frame sources feeding the gaze tracker.
package source

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ofZach/EyeWriterCam/gazetracker"
)

// Source delivers grayscale frames of a fixed size.
type Source interface {
	gazetracker.FrameSource
	// Size returns the frame size, fixed for the lifetime of the source.
	Size() image.Point
	io.Closer
}

// Config selects and configures a frame source.
type Config struct {
	// Kind is one of "dir", "raw" or "webcam".
	Kind string
	// Path is the image directory for "dir", the file to read for "raw"
	// ("-" for stdin) and the device index for "webcam".
	Path string
	// Width and Height are the frame size of a "raw" stream.
	Width  int
	Height int
	// Interval paces a "dir" source. Zero delivers frames as fast as they
	// are read.
	Interval time.Duration
	// Loop restarts a "dir" source at its first image when exhausted.
	Loop bool
}

// Open creates the source described by cfg.
func Open(cfg Config, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("opening frame source", "kind", cfg.Kind, "path", cfg.Path)

	switch strings.ToLower(cfg.Kind) {
	case "dir":
		d, err := OpenDir(cfg.Path, cfg.Interval, cfg.Loop)
		if err != nil {
			return nil, err
		}
		return d, nil
	case "raw":
		var r io.ReadCloser = os.Stdin
		if cfg.Path != "-" && cfg.Path != "" {
			f, err := os.Open(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("open raw stream: %w", err)
			}
			r = f
		}
		raw, err := NewRaw(r, cfg.Width, cfg.Height)
		if err != nil {
			r.Close()
			return nil, err
		}
		return raw, nil
	case "webcam":
		device := 0
		if cfg.Path != "" {
			d, err := strconv.Atoi(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("invalid webcam device %q: %w", cfg.Path, err)
			}
			device = d
		}
		w, err := OpenWebcam(device)
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unsupported frame source: %q", cfg.Kind)
	}
}

// pace waits for the next tick of t, or returns early when ctx is done.
func pace(ctx context.Context, t *time.Ticker) error {
	if t == nil {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
