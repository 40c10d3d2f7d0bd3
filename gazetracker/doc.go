/*
Package gazetracker turns a monochrome camera feed into a gaze point on the
screen.

Every frame goes through the same pipeline. In detection mode a statistical
shape model locates the four eye corners; once the user switches to
tracking mode the corners are followed from frame to frame by correlating
two templates per corner, the one captured at detection time and the one
captured on the previous frame. Both eyes are then rectified with an affine
warp, denoised with a bilateral filter, histogram equalized and joined into
a single combined eye image. A calibration session shows a sequence of
shrinking targets and pairs the combined eye image with each target; the
gaze estimator is trained on those pairs and queried on every later frame.

The shape model and the gaze regression are pluggable through the
ShapeFitter and Estimator interfaces.

	tr, err := gazetracker.NewTracker(gazetracker.DefaultConfig(), fitter, est, image.Pt(1280, 800))
	if err != nil {
		log.Fatal(err)
	}
	for frame := range frames {
		tr.Tick(frame)
		if tr.Calibrated() {
			fmt.Println(tr.GazePoint())
		}
	}

A Tracker is not safe for concurrent use. Run serializes frames, idle ticks
and the user's advance events on a single goroutine.
*/
package gazetracker
