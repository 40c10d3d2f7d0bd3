// Package landmark fits the eye landmarks used by the gaze tracker with
// the pigo pixel intensity comparison cascades: a face finder proposes the
// face region, the pupil localizer finds both pupils and the facial
// landmark point cascades place the eye corners relative to the pupils.
package landmark

import (
	"fmt"
	"image"
	"os"
	"sort"
	"strings"

	pigo "github.com/esimov/pigo/core"

	"github.com/ofZach/EyeWriterCam/gazetracker"
	"github.com/ofZach/EyeWriterCam/utils"
)

// Landmark indices of the points returned by Pigo.Fit.
const (
	LeftPupil = iota
	RightPupil
	LeftOuterCorner
	LeftInnerCorner
	RightInnerCorner
	RightOuterCorner
)

// Params are the detection parameters.
type Params struct {
	MinSize     int
	MaxSize     int
	ShiftFactor float64
	ScaleFactor float64
	// IoUThreshold is the overlap above which face detections are merged.
	IoUThreshold float64
	// MinQuality is the detection score a face needs to be accepted.
	MinQuality float32
	// Perturb is the number of perturbations of the pupil and landmark localizers.
	Perturb int
	// OuterCascade and InnerCascade name the landmark cascades of the
	// outer and of the inner eye corner inside the cascade directory.
	OuterCascade string
	InnerCascade string
}

// DefaultParams returns parameters suited to a half resolution webcam frame.
func DefaultParams() Params {
	return Params{
		MinSize:      40,
		MaxSize:      600,
		ShiftFactor:  0.1,
		ScaleFactor:  1.1,
		IoUThreshold: 0.2,
		MinQuality:   5.0,
		Perturb:      63,
		OuterCascade: "lp46",
		InnerCascade: "lp44",
	}
}

// Pigo is a gazetracker.ShapeFitter backed by pigo cascades.
type Pigo struct {
	face   *pigo.Pigo
	puploc *pigo.PuplocCascade
	outer  []*pigo.FlpCascade
	inner  []*pigo.FlpCascade
	params Params
}

var _ gazetracker.ShapeFitter = (*Pigo)(nil)

// Load reads the face finder and pupil localization cascades and the
// landmark cascade directory from disk.
func Load(cascadePath, puplocPath, flpDir string, params Params) (*Pigo, error) {
	faceData, err := readCascade(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("error reading the face cascade file: %w", err)
	}
	puplocData, err := readCascade(puplocPath)
	if err != nil {
		return nil, fmt.Errorf("error reading the puploc cascade file: %w", err)
	}
	return New(faceData, puplocData, flpDir, params)
}

// readCascade reads a binary cascade file. Text content, like an HTML
// error page saved in place of a downloaded cascade, is rejected.
func readCascade(path string) ([]byte, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(ctype, "text/") {
		return nil, fmt.Errorf("%s is not a cascade file: content type %s", path, ctype)
	}
	return os.ReadFile(path)
}

// New unpacks the face finder and the pupil localization cascades and
// loads the landmark cascades found in flpDir.
func New(faceCascade, puplocCascade []byte, flpDir string, params Params) (*Pigo, error) {
	face, err := pigo.NewPigo().Unpack(faceCascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the face cascade file: %w", err)
	}

	plc := pigo.NewPuplocCascade()
	puploc, err := plc.UnpackCascade(puplocCascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the puploc cascade file: %w", err)
	}

	flpcs, err := plc.ReadCascadeDir(flpDir)
	if err != nil {
		return nil, fmt.Errorf("error reading the landmark cascades: %w", err)
	}
	p := &Pigo{
		face:   face,
		puploc: puploc,
		outer:  flpcs[params.OuterCascade],
		inner:  flpcs[params.InnerCascade],
		params: params,
	}
	if len(p.outer) == 0 || len(p.inner) == 0 {
		return nil, fmt.Errorf("landmark cascades %q and %q are required in %s",
			params.OuterCascade, params.InnerCascade, flpDir)
	}
	return p, nil
}

// Fit returns, in order, the left and right pupil and the left-outer,
// left-inner, right-inner and right-outer eye corners of the best face
// found in frame.
func (p *Pigo) Fit(frame *image.Gray) ([]image.Point, error) {
	img := imageParams(frame)
	dets := p.face.RunCascade(pigo.CascadeParams{
		MinSize:     p.params.MinSize,
		MaxSize:     utils.Min(p.params.MaxSize, utils.Max(img.Rows, img.Cols)),
		ShiftFactor: p.params.ShiftFactor,
		ScaleFactor: p.params.ScaleFactor,
		ImageParams: img,
	}, 0.0)
	dets = p.face.ClusterDetections(dets, p.params.IoUThreshold)

	best := -1
	for i, d := range dets {
		if d.Q >= p.params.MinQuality && (best < 0 || d.Q > dets[best].Q) {
			best = i
		}
	}
	if best < 0 {
		return nil, gazetracker.ErrNoFace
	}
	det := dets[best]

	left := p.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.085*float32(det.Scale)),
		Col:      det.Col - int(0.185*float32(det.Scale)),
		Scale:    float32(det.Scale) * 0.4,
		Perturbs: p.params.Perturb,
	}, img, 0.0, false)
	right := p.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.085*float32(det.Scale)),
		Col:      det.Col + int(0.185*float32(det.Scale)),
		Scale:    float32(det.Scale) * 0.4,
		Perturbs: p.params.Perturb,
	}, img, 0.0, false)
	if !valid(left) || !valid(right) {
		return nil, fmt.Errorf("pupils not found: %w", gazetracker.ErrNoFace)
	}

	outer, ok := p.landmarks(p.outer, left, right, img)
	if !ok {
		return nil, fmt.Errorf("outer eye corners not found: %w", gazetracker.ErrNoFace)
	}
	inner, ok := p.landmarks(p.inner, left, right, img)
	if !ok {
		return nil, fmt.Errorf("inner eye corners not found: %w", gazetracker.ErrNoFace)
	}

	return []image.Point{
		point(left), point(right),
		outer[0], inner[0], inner[1], outer[1],
	}, nil
}

// landmarks runs a landmark cascade and its mirrored version and returns
// both points ordered from left to right.
func (p *Pigo) landmarks(cascades []*pigo.FlpCascade, left, right *pigo.Puploc, img pigo.ImageParams) ([2]image.Point, bool) {
	var pts []image.Point
	for _, c := range cascades {
		if c == nil || c.PuplocCascade == nil {
			continue
		}
		for _, flipV := range []bool{false, true} {
			if lp := c.GetLandmarkPoint(left, right, img, p.params.Perturb, flipV); valid(lp) {
				pts = append(pts, point(lp))
			}
		}
		if len(pts) == 2 {
			break
		}
		pts = pts[:0]
	}
	if len(pts) != 2 {
		return [2]image.Point{}, false
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return [2]image.Point{pts[0], pts[1]}, true
}

func valid(p *pigo.Puploc) bool {
	return p != nil && p.Row > 0 && p.Col > 0
}

func point(p *pigo.Puploc) image.Point {
	return image.Pt(p.Col, p.Row)
}

// imageParams exposes the frame pixels in the row-major layout pigo expects.
func imageParams(frame *image.Gray) pigo.ImageParams {
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	pixels := frame.Pix
	if frame.Stride != w || len(pixels) != w*h {
		pixels = make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(pixels[y*w:(y+1)*w], frame.Pix[y*frame.Stride:y*frame.Stride+w])
		}
	}
	return pigo.ImageParams{
		Pixels: pixels,
		Rows:   h,
		Cols:   w,
		Dim:    w,
	}
}
