package sizing

import (
	"fmt"
	"math"
)

// Measurements holds the physical quantities derived from one photograph.
// Values are in centimeters. A Measurements is never mutated after the
// estimator returns it; DebugImagePath is advisory and may be empty.
type Measurements struct {
	WaistGirthCM   float64 `json:"waist_girth_cm"`
	HipGirthCM     float64 `json:"hip_girth_cm"`
	PantsLengthCM  float64 `json:"pants_length_cm"`
	DebugImagePath string  `json:"debug_image_path,omitempty"`
}

// PoseGeometryError reports that the detected pose cannot be measured:
// required landmarks are missing or the body's vertical span in the frame is
// degenerate. It is terminal for the request; the caller should ask for a
// better photo.
type PoseGeometryError struct {
	Reason string
}

func (e *PoseGeometryError) Error() string {
	return fmt.Sprintf("implausible pose geometry: %s", e.Reason)
}

// Config carries the empirical constants of the estimator. They encode
// population-level assumptions (belt line narrower than hips, girth as twice
// the frontal width) and have no per-subject calibration.
type Config struct {
	WaistFactor   float64
	GirthFactor   float64
	MinBodySpanPx float64
}

func DefaultConfig() Config {
	return Config{
		WaistFactor:   0.9,
		GirthFactor:   2.0,
		MinBodySpanPx: 10,
	}
}

type Estimator struct {
	cfg Config
}

func NewEstimator() *Estimator {
	return &Estimator{cfg: DefaultConfig()}
}

func NewEstimatorWithConfig(cfg Config) *Estimator {
	def := DefaultConfig()
	if cfg.WaistFactor <= 0 {
		cfg.WaistFactor = def.WaistFactor
	}
	if cfg.GirthFactor <= 0 {
		cfg.GirthFactor = def.GirthFactor
	}
	if cfg.MinBodySpanPx <= 0 {
		cfg.MinBodySpanPx = def.MinBodySpanPx
	}
	return &Estimator{cfg: cfg}
}

// Estimate derives waist girth, hip girth and pants length from a normalized
// landmark set. The subject is assumed upright, frontal and fully in frame;
// heightCM anchors the pixel-to-centimeter scale so no camera calibration or
// reference object is needed.
func (e *Estimator) Estimate(landmarks LandmarkSet, imageWidth, imageHeight, heightCM int) (Measurements, error) {
	if !landmarks.HasRequiredLandmarks() {
		return Measurements{}, &PoseGeometryError{Reason: "required landmarks missing"}
	}

	spanPx := e.bodyHeightPixels(landmarks, imageHeight)
	if spanPx < e.cfg.MinBodySpanPx {
		return Measurements{}, &PoseGeometryError{Reason: "body height span too small"}
	}

	scale := float64(heightCM) / spanPx

	legPx := e.legLengthPixels(landmarks, imageHeight)
	waistWidthPx, hipWidthPx := e.waistAndHipPixels(landmarks, imageWidth)

	return Measurements{
		WaistGirthCM:  waistWidthPx * scale * e.cfg.GirthFactor,
		HipGirthCM:    hipWidthPx * scale * e.cfg.GirthFactor,
		PantsLengthCM: legPx * scale,
	}, nil
}

func (e *Estimator) bodyHeightPixels(landmarks LandmarkSet, imageHeight int) float64 {
	headY := landmarks[LandmarkNose].Y

	footY := landmarks[LandmarkLeftAnkle].Y
	for _, idx := range []int{LandmarkRightAnkle, LandmarkLeftFootIndex, LandmarkRightFootIndex} {
		footY = math.Max(footY, landmarks[idx].Y)
	}

	return math.Abs((footY - headY) * float64(imageHeight))
}

func (e *Estimator) legLengthPixels(landmarks LandmarkSet, imageHeight int) float64 {
	hipY := (landmarks[LandmarkLeftHip].Y + landmarks[LandmarkRightHip].Y) / 2 * float64(imageHeight)
	ankleY := (landmarks[LandmarkLeftAnkle].Y + landmarks[LandmarkRightAnkle].Y) / 2 * float64(imageHeight)

	return math.Abs(ankleY - hipY)
}

func (e *Estimator) waistAndHipPixels(landmarks LandmarkSet, imageWidth int) (float64, float64) {
	xLeft := landmarks[LandmarkLeftHip].X * float64(imageWidth)
	xRight := landmarks[LandmarkRightHip].X * float64(imageWidth)
	hipWidthPx := math.Abs(xRight - xLeft)

	// The belt line sits above the hip line and is narrower for the general
	// population; the factor is empirical, no per-subject calibration.
	waistWidthPx := hipWidthPx * e.cfg.WaistFactor

	return waistWidthPx, hipWidthPx
}
