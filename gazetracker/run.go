package gazetracker

import (
	"context"
	"errors"
	"image"
	"io"
	"time"
)

// IdleTickInterval is how often Run ticks the tracker without a new frame
// so that the calibration target keeps shrinking on a stalled camera.
const IdleTickInterval = time.Second / 60

// FrameSource delivers camera frames. Next blocks until a frame is
// available and returns io.EOF once the source is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (*image.Gray, error)
}

type frameResult struct {
	frame *image.Gray
	err   error
}

// Run drives tr until ctx is cancelled or src is exhausted. Frames, idle
// ticks and advance events from input are served from a single loop, so
// the tracker never sees two calls at once. onTick, when not nil, runs
// after every tick that processed a new frame.
func Run(ctx context.Context, src FrameSource, input <-chan struct{}, tr *Tracker, onTick func(*Tracker)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan frameResult)
	go func() {
		defer close(frames)
		for {
			f, err := src.Next(ctx)
			select {
			case frames <- frameResult{f, err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	idle := time.NewTicker(IdleTickInterval)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			tr.Advance()
		case <-idle.C:
			tr.Tick(nil)
		case res, ok := <-frames:
			if !ok {
				return ctx.Err()
			}
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					return nil
				}
				return res.err
			}
			tr.Tick(res.frame)
			if onTick != nil {
				onTick(tr)
			}
			idle.Reset(IdleTickInterval)
		}
	}
}
