// Package preview shows the tracker output in a Gio window.
//
// The window has to be served while app.Main runs on the main goroutine:
//
//	w := preview.New("EyeWriter", 1280, 800, input)
//	go func() {
//		err := w.Run(ctx)
//		...
//		os.Exit(0)
//	}()
//	app.Main()
package preview

import (
	"context"
	"image"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"

	"github.com/ofZach/EyeWriterCam/utils"
)

const (
	MaxScreenX = 1366
	MaxScreenY = 768
)

// keys are the key presses handled by the window.
var keys = key.Set(key.NameSpace + "|" + key.NameEscape + "|Q")

// Window displays the latest image handed to Show. The SPACE key is
// forwarded as an advance event, ESC and Q close the window.
type Window struct {
	title  string
	width  int
	height int
	frames chan image.Image
	input  chan<- struct{}
}

// New creates a preview window for images of w×h pixels. Advance events
// are sent on input.
func New(title string, w, h int, input chan<- struct{}) *Window {
	return &Window{
		title:  title,
		width:  w,
		height: h,
		frames: make(chan image.Image, 1),
		input:  input,
	}
}

// Show replaces the displayed image. It never blocks: an image the window
// did not pick up yet is dropped in favor of img.
func (w *Window) Show(img image.Image) {
	if img == nil {
		return
	}
	for {
		select {
		case w.frames <- img:
			return
		default:
		}
		select {
		case <-w.frames:
		default:
		}
	}
}

// Run opens the window and serves its events until it is closed or ctx is
// done. It returns the error the window was destroyed with.
func (w *Window) Run(ctx context.Context) error {
	width, height := utils.ScaleToFit(w.width, w.height, MaxScreenX, MaxScreenY)
	win := app.NewWindow(
		app.Title(w.title),
		app.Size(unit.Dp(float32(width)), unit.Dp(float32(height))),
	)

	var (
		ops op.Ops
		img image.Image
	)
	done := ctx.Done()
	for {
		select {
		case e := <-win.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				gtx := layout.NewContext(&ops, e)
				for _, ev := range gtx.Events(w) {
					if ke, ok := ev.(key.Event); ok {
						w.handleKey(ctx, win, ke)
					}
				}
				key.InputOp{Tag: w, Keys: keys}.Add(gtx.Ops)

				if img != nil {
					scale := float32(1)
					if gtx.Metric.PxPerDp > 0 {
						scale = 1 / gtx.Metric.PxPerDp
					}
					imgWidget := widget.Image{
						Src:   paint.NewImageOp(img),
						Scale: scale,
						Fit:   widget.Contain,
					}
					imgWidget.Layout(gtx)
				}
				e.Frame(gtx.Ops)
			case key.Event:
				w.handleKey(ctx, win, e)
			case system.DestroyEvent:
				return e.Err
			}
		case img = <-w.frames:
			win.Invalidate()
		case <-done:
			done = nil
			win.Perform(system.ActionClose)
		}
	}
}

func (w *Window) handleKey(ctx context.Context, win *app.Window, e key.Event) {
	if e.State != key.Press {
		return
	}
	switch e.Name {
	case key.NameSpace:
		select {
		case w.input <- struct{}{}:
		case <-ctx.Done():
		}
	case key.NameEscape, "Q":
		win.Perform(system.ActionClose)
	}
}
