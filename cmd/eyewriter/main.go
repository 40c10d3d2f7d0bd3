package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/ofZach/EyeWriterCam/estimator"
	"github.com/ofZach/EyeWriterCam/gazetracker"
	"github.com/ofZach/EyeWriterCam/imop"
	"github.com/ofZach/EyeWriterCam/landmark"
	"github.com/ofZach/EyeWriterCam/preview"
	"github.com/ofZach/EyeWriterCam/source"
	"github.com/ofZach/EyeWriterCam/utils"
)

const HelpBanner = `
┌─┐┬ ┬┌─┐┬ ┬┬─┐┬┌┬┐┌─┐┬─┐
├┤ └┬┘├┤ │││├┬┘│ │ ├┤ ├┬┘
└─┘ ┴ └─┘└┴┘┴└─┴ ┴ └─┘┴└─

Webcam eye gaze tracker.
    Version: %s

`

// pipeName is the file name that indicates stdin is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	settingsPath = flag.String("settings", gazetracker.DefaultSettingsPath, "Settings file")
	sourceKind   = flag.String("source", source.DefaultKind, "Frame source: dir, raw or webcam (webcam needs a build with -tags gocv)")
	sourcePath   = flag.String("in", "", "Webcam device index, image directory or raw stream ('-' for stdin)")
	rawWidth     = flag.Int("width", 640, "Raw stream frame width")
	rawHeight    = flag.Int("height", 480, "Raw stream frame height")
	fps          = flag.Float64("fps", 30, "Frame rate of an image directory")
	loop         = flag.Bool("loop", false, "Replay the image directory forever")
	displayW     = flag.Int("dw", 1280, "Display width used for calibration")
	displayH     = flag.Int("dh", 800, "Display height used for calibration")
	outDir       = flag.String("out", "", "Directory receiving diagnostic images and calibration dumps")
	every        = flag.Int("every", 30, "Write a diagnostic image every n frames")
	blendMode    = flag.String("blend", "none", "Blend mode of the diagnostic overlay")
	logLevel     = flag.String("log", "info", "Log level: debug, info, warn or error")
	advanceKeys  = flag.Bool("keys", true, "Read the SPACE key from the terminal to advance the mode")
	showPreview  = flag.Bool("preview", false, "Show the calibration target and the diagnostic view in a window")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*showPreview {
		run()
		return
	}
	go func() {
		run()
		os.Exit(0)
	}()
	app.Main()
}

// run tracks the frames of the selected source until it is exhausted or
// the user quits.
func run() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf(utils.DecorateText("Invalid log level: %v", utils.ErrorMessage), err)
	}
	stderr := &crlfWriter{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	settings, err := gazetracker.LoadSettings(*settingsPath)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the settings: %v", utils.ErrorMessage), err)
	}
	cfg := settings.Apply(gazetracker.DefaultConfig())

	blend := imop.NewBlend()
	if err := blend.Set(*blendMode); err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}

	fitter := loadFitter(settings)

	interval := time.Duration(0)
	if *fps > 0 {
		interval = time.Duration(float64(time.Second) / *fps)
	}
	src, err := source.Open(source.Config{
		Kind:     *sourceKind,
		Path:     *sourcePath,
		Width:    *rawWidth,
		Height:   *rawHeight,
		Interval: interval,
		Loop:     *loop,
	}, logger)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to open the frame source: %v", utils.ErrorMessage), err)
	}
	defer src.Close()

	est := estimator.NewGP()
	tr, err := gazetracker.NewTracker(cfg, fitter, est, image.Pt(*displayW, *displayH),
		gazetracker.WithLogger(logger),
		gazetracker.WithOverlayBlend(blend),
	)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to create the tracker: %v", utils.ErrorMessage), err)
	}

	sess := newSession(*outDir, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := make(chan struct{})
	if *advanceKeys && !(*sourceKind == "raw" && (*sourcePath == pipeName || *sourcePath == "")) {
		restore, err := readKeys(ctx, stop, input)
		if err != nil {
			fmt.Fprint(stderr, utils.DecorateText("Keyboard input disabled: "+err.Error(), utils.WarningMessage)+"\n")
		} else {
			defer restore()
		}
	}

	if *showPreview {
		sess.preview = preview.New("EyeWriter", *displayW, *displayH, input)
		go func() {
			if err := sess.preview.Run(ctx); err != nil {
				logger.Warn("preview window closed", "err", err)
			}
			stop()
		}()
	}

	fmt.Fprint(stderr, utils.DecorateText(tr.Mode().Hint(), utils.StatusMessage)+"\n")

	now := time.Now()
	err = gazetracker.Run(ctx, src, input, tr, sess.onTick)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf(utils.DecorateText("Tracking stopped: %v", utils.ErrorMessage), err)
	}
	fmt.Fprintf(stderr, "\nSession time: %s\n",
		utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
}

// loadFitter loads the pigo cascades, downloading the ones given as URLs.
func loadFitter(settings *gazetracker.Settings) *landmark.Pigo {
	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("👁 EYEWRITER", utils.StatusMessage),
		utils.DecorateText("is loading the face models...", utils.DefaultMessage))
	spinner := utils.NewSpinner(spinnerText, time.Millisecond*200, true)
	spinner.Start()
	defer spinner.Stop()

	cascade, err := localPath(settings.CascadePath)
	if err != nil {
		spinner.Stop()
		log.Fatalf(utils.DecorateText("Failed to fetch the face cascade: %v", utils.ErrorMessage), err)
	}
	puploc, err := localPath(settings.PuplocPath)
	if err != nil {
		spinner.Stop()
		log.Fatalf(utils.DecorateText("Failed to fetch the puploc cascade: %v", utils.ErrorMessage), err)
	}

	fitter, err := landmark.Load(cascade, puploc, settings.FlpDir, landmark.DefaultParams())
	if err != nil {
		spinner.Stop()
		log.Fatalf(utils.DecorateText("Failed to load the face models: %v", utils.ErrorMessage), err)
	}
	spinner.StopMsg = fmt.Sprintf("%s %s\n",
		utils.DecorateText("👁 EYEWRITER", utils.StatusMessage),
		utils.DecorateText("face models loaded ✔", utils.DefaultMessage))
	return fitter
}

// localPath returns path itself, or a temporary copy of it when it is a URL.
func localPath(path string) (string, error) {
	if !utils.IsValidUrl(path) {
		return path, nil
	}
	f, err := utils.DownloadFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return f.Name(), nil
}

// readKeys puts the terminal in raw mode and turns every SPACE key press
// into an advance event. 'q' and Ctrl-C stop the session.
func readKeys(ctx context.Context, stop context.CancelFunc, input chan<- struct{}) (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			switch buf[0] {
			case ' ':
				select {
				case input <- struct{}{}:
				case <-ctx.Done():
					return
				}
			case 'q', 3:
				stop()
				return
			}
		}
	}()
	return func() { term.Restore(fd, state) }, nil
}

// session writes the diagnostic output of one tracking run.
type session struct {
	id      string
	dir     string
	frames  int
	mode    gazetracker.Mode
	logger  *slog.Logger
	enc     *json.Encoder
	preview *preview.Window
}

func newSession(out string, logger *slog.Logger) *session {
	s := &session{
		id:     uuid.NewString(),
		logger: logger,
		enc:    json.NewEncoder(os.Stdout),
	}
	if out != "" {
		s.dir = filepath.Join(out, s.id)
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			log.Fatalf(utils.DecorateText("Unable to create the output directory: %v", utils.ErrorMessage), err)
		}
		logger.Info("writing diagnostics", "dir", s.dir)
	}
	return s
}

type gazeRecord struct {
	Time time.Time `json:"time"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

func (s *session) onTick(tr *gazetracker.Tracker) {
	s.frames++

	if m := tr.Mode(); m != s.mode {
		if s.mode == gazetracker.ModeCalibration && tr.Calibrated() {
			s.dumpCalibration(tr)
		}
		s.mode = m
		fmt.Fprint(os.Stderr, utils.DecorateText(m.Hint(), utils.StatusMessage)+"\r\n")
	}

	if s.preview != nil {
		if img := tr.Screen(*displayW, *displayH); img != nil {
			s.preview.Show(img)
		}
	}

	if tr.Calibrated() && tr.Mode() == gazetracker.ModeTracking {
		g := tr.GazePoint()
		if err := s.enc.Encode(gazeRecord{Time: time.Now(), X: g.X, Y: g.Y}); err != nil {
			s.logger.Warn("failed to write gaze point", "err", err)
		}
	}

	if s.dir == "" || *every <= 0 || s.frames%*every != 0 {
		return
	}
	if d := tr.Diagnostic(); d != nil {
		s.save(fmt.Sprintf("diag_%06d.png", s.frames), d)
	}
	if tr.Mode() == gazetracker.ModeCalibration {
		s.save(fmt.Sprintf("target_%06d.png", s.frames), tr.CalibrationView(*displayW/2, *displayH/2))
	}
}

func (s *session) dumpCalibration(tr *gazetracker.Tracker) {
	if s.dir == "" {
		return
	}
	calib := tr.Calibration()
	for i, eye := range calib.Archive {
		s.save(fmt.Sprintf("calib_%03d.png", i), eye)
	}
	s.logger.Info("calibration dumped", "session", s.id, "samples", len(calib.Archive))
}

func (s *session) save(name string, img image.Image) {
	if err := imaging.Save(img, filepath.Join(s.dir, name)); err != nil {
		s.logger.Warn("failed to save image", "name", name, "err", err)
	}
}

// crlfWriter terminates lines with CRLF so that the output stays aligned
// while the terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
