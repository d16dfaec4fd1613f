package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TailorGolang/pkg/sizing"
)

func fullPose() sizing.LandmarkSet {
	ls := make(sizing.LandmarkSet, sizing.NumLandmarks)
	for i := range ls {
		ls[i] = sizing.Landmark{X: 0.5, Y: 0.5}
	}

	ls[sizing.LandmarkNose] = sizing.Landmark{X: 0.5, Y: 0.1}
	ls[sizing.LandmarkLeftHip] = sizing.Landmark{X: 0.4, Y: 0.5}
	ls[sizing.LandmarkRightHip] = sizing.Landmark{X: 0.6, Y: 0.5}
	ls[sizing.LandmarkLeftAnkle] = sizing.Landmark{X: 0.45, Y: 0.9}
	ls[sizing.LandmarkRightAnkle] = sizing.Landmark{X: 0.55, Y: 0.9}
	ls[sizing.LandmarkLeftFootIndex] = sizing.Landmark{X: 0.44, Y: 0.9}
	ls[sizing.LandmarkRightFootIndex] = sizing.Landmark{X: 0.56, Y: 0.9}

	return ls
}

func TestRenderLandmarks(t *testing.T) {
	t.Parallel()

	fill := color.NRGBA{10, 10, 10, 255}
	base := imaging.New(200, 200, fill)

	out := RenderLandmarks(base, fullPose())
	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)

	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 170, 255, 255}

	// Measurement anchors are painted last, over the landmark dots.
	assert.Equal(t, red, nrgba.NRGBAAt(100, 20), "nose")
	assert.Equal(t, red, nrgba.NRGBAAt(80, 100), "left hip")
	assert.Equal(t, red, nrgba.NRGBAAt(120, 100), "right hip")

	// The span segment runs from the nose down to the lowest foot point.
	assert.Equal(t, blue, nrgba.NRGBAAt(100, 60), "span above hips")
	assert.Equal(t, blue, nrgba.NRGBAAt(100, 150), "span below hips")

	// The source frame stays untouched.
	assert.Equal(t, fill, base.NRGBAAt(100, 20))
}

func TestRenderLandmarksPartialPose(t *testing.T) {
	t.Parallel()

	base := imaging.New(100, 100, color.NRGBA{0, 0, 0, 255})
	partial := sizing.LandmarkSet{{X: 0.25, Y: 0.25}}

	out := RenderLandmarks(base, partial)
	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)

	green := color.NRGBA{0, 255, 0, 255}
	assert.Equal(t, green, nrgba.NRGBAAt(25, 25))
}

func TestRenderLandmarksOutOfRangeCoordinates(t *testing.T) {
	t.Parallel()

	ls := fullPose()
	ls[sizing.LandmarkNose] = sizing.Landmark{X: -0.4, Y: -2}
	ls[sizing.LandmarkRightFootIndex] = sizing.Landmark{X: 1.7, Y: 3.1}

	base := imaging.New(64, 64, color.NRGBA{0, 0, 0, 255})
	assert.NotPanics(t, func() {
		RenderLandmarks(base, ls)
	})
}

func TestEncodeJPEG(t *testing.T) {
	t.Parallel()

	img := imaging.New(32, 32, color.NRGBA{200, 100, 50, 255})
	data, err := EncodeJPEG(img, 85)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.Equal(t, []byte{0xff, 0xd8}, data[:2])
}
