package sizing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLandmarks returns a full 33-point set describing an upright frontal
// pose: nose at noseY, hips at hipY around the vertical center line with
// hipHalfWidth on each side, ankles and foot tips at footY.
func testLandmarks(noseY, hipY, footY, hipHalfWidth float64) LandmarkSet {
	ls := make(LandmarkSet, NumLandmarks)
	for i := range ls {
		ls[i] = Landmark{X: 0.5, Y: (noseY + footY) / 2}
	}

	ls[LandmarkNose] = Landmark{X: 0.5, Y: noseY}
	ls[LandmarkLeftHip] = Landmark{X: 0.5 - hipHalfWidth, Y: hipY}
	ls[LandmarkRightHip] = Landmark{X: 0.5 + hipHalfWidth, Y: hipY}
	ls[LandmarkLeftAnkle] = Landmark{X: 0.45, Y: footY}
	ls[LandmarkRightAnkle] = Landmark{X: 0.55, Y: footY}
	ls[LandmarkLeftFootIndex] = Landmark{X: 0.44, Y: footY}
	ls[LandmarkRightFootIndex] = Landmark{X: 0.56, Y: footY}

	return ls
}

func TestEstimateReferenceScenario(t *testing.T) {
	t.Parallel()

	// 1000x1000 px frame: span 800 px, leg 400 px, hip width 100 px.
	landmarks := testLandmarks(0.1, 0.5, 0.9, 0.05)

	m, err := NewEstimator().Estimate(landmarks, 1000, 1000, 180)
	require.NoError(t, err)

	// scale = 180 / 800 = 0.225 cm/px
	assert.InDelta(t, 40.5, m.WaistGirthCM, 1e-9)
	assert.InDelta(t, 45.0, m.HipGirthCM, 1e-9)
	assert.InDelta(t, 90.0, m.PantsLengthCM, 1e-9)

	assert.Equal(t, 85, NearestBelt(m.WaistGirthCM))
	assert.Equal(t, BandMid, GetHeightBand(180))
	assert.Equal(t, 46, Recommend(m, 180))
	assert.Equal(t, "46 (M46)", FormatSizeLabel(Recommend(m, 180)))
}

func TestEstimatePositiveMeasurements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		landmarks     LandmarkSet
		width, height int
		heightCM      int
	}{
		{"tall frame", testLandmarks(0.05, 0.45, 0.95, 0.08), 720, 1280, 175},
		{"small subject in frame", testLandmarks(0.3, 0.5, 0.7, 0.03), 640, 480, 160},
		{"wide hips", testLandmarks(0.1, 0.55, 0.92, 0.2), 1080, 1920, 190},
		{"feet below ankles", func() LandmarkSet {
			ls := testLandmarks(0.1, 0.5, 0.88, 0.05)
			ls[LandmarkLeftFootIndex].Y = 0.93
			ls[LandmarkRightFootIndex].Y = 0.94
			return ls
		}(), 800, 800, 182},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := NewEstimator().Estimate(tt.landmarks, tt.width, tt.height, tt.heightCM)
			require.NoError(t, err)

			assert.Greater(t, m.WaistGirthCM, 0.0)
			assert.Greater(t, m.HipGirthCM, 0.0)
			assert.Greater(t, m.PantsLengthCM, 0.0)
		})
	}
}

func TestEstimateWaistHipRatio(t *testing.T) {
	t.Parallel()

	// The fixed waist factor must survive any scale: the ratio of the two
	// girths is the factor itself.
	for _, heightCM := range []int{150, 175, 210} {
		m, err := NewEstimator().Estimate(testLandmarks(0.08, 0.52, 0.91, 0.11), 987, 1234, heightCM)
		require.NoError(t, err)
		assert.InDelta(t, 0.9, m.WaistGirthCM/m.HipGirthCM, 1e-9)
	}
}

func TestEstimateDegenerateSpan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		landmarks   LandmarkSet
		imageHeight int
	}{
		{"collapsed pose", testLandmarks(0.5, 0.5, 0.5005, 0.05), 1000},
		{"tiny image", testLandmarks(0.1, 0.5, 0.9, 0.05), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewEstimator().Estimate(tt.landmarks, 1000, tt.imageHeight, 180)
			require.Error(t, err)

			var geomErr *PoseGeometryError
			assert.True(t, errors.As(err, &geomErr))
			assert.Contains(t, err.Error(), "implausible pose geometry")
		})
	}
}

func TestEstimateSpanAtThreshold(t *testing.T) {
	t.Parallel()

	// Exactly 10 px of body span is the smallest accepted detection.
	landmarks := testLandmarks(0.0, 0.5, 1.0, 0.05)
	m, err := NewEstimator().Estimate(landmarks, 1000, 10, 180)
	require.NoError(t, err)
	assert.Greater(t, m.WaistGirthCM, 0.0)
}

func TestEstimateMissingLandmarks(t *testing.T) {
	t.Parallel()

	full := testLandmarks(0.1, 0.5, 0.9, 0.05)

	tests := []struct {
		name string
		ls   LandmarkSet
	}{
		{"empty set", LandmarkSet{}},
		{"nil set", nil},
		{"truncated before hips", full[:LandmarkLeftHip]},
		{"truncated before foot tips", full[:LandmarkLeftFootIndex]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewEstimator().Estimate(tt.ls, 1000, 1000, 180)
			require.Error(t, err)

			var geomErr *PoseGeometryError
			assert.True(t, errors.As(err, &geomErr))
		})
	}
}

func TestNewEstimatorWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("custom waist factor", func(t *testing.T) {
		t.Parallel()

		e := NewEstimatorWithConfig(Config{WaistFactor: 0.85})
		m, err := e.Estimate(testLandmarks(0.1, 0.5, 0.9, 0.05), 1000, 1000, 180)
		require.NoError(t, err)
		assert.InDelta(t, 0.85, m.WaistGirthCM/m.HipGirthCM, 1e-9)
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		t.Parallel()

		e := NewEstimatorWithConfig(Config{})
		assert.Equal(t, DefaultConfig(), e.cfg)
	})
}

func TestHasRequiredLandmarks(t *testing.T) {
	t.Parallel()

	assert.True(t, testLandmarks(0.1, 0.5, 0.9, 0.05).HasRequiredLandmarks())
	assert.False(t, LandmarkSet{}.HasRequiredLandmarks())
	assert.False(t, make(LandmarkSet, LandmarkRightFootIndex).HasRequiredLandmarks())
	assert.True(t, make(LandmarkSet, NumLandmarks).HasRequiredLandmarks())
}
