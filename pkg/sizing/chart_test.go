package sizing

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHeightBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		heightCM int
		want     HeightBand
	}{
		{100, BandLow},
		{173, BandLow},
		{174, BandMid},
		{184, BandMid},
		{185, BandHigh},
		{250, BandHigh},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.heightCM), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetHeightBand(tt.heightCM))
		})
	}
}

func TestNearestBelt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		waist float64
		want  int
	}{
		{"below range", 0, 85},
		{"exact belt", 93, 93},
		{"midpoint keeps lower belt", 87, 85},
		{"second midpoint keeps lower belt", 91, 89},
		{"just past midpoint", 87.1, 89},
		{"above range", 400, 109},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NearestBelt(tt.waist))
		})
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		waist    float64
		heightCM int
		want     int
	}{
		{"belt 85 mid band", 40.5, 180, 46},
		{"belt 85 low band", 85, 160, 92},
		{"belt 85 high band", 85, 190, 146},
		{"belt 109 mid band", 120, 178, 58},
		{"belt 93 low band", 94, 170, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Recommend(Measurements{WaistGirthCM: tt.waist, HipGirthCM: tt.waist / 0.9}, tt.heightCM)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendIsTotal(t *testing.T) {
	t.Parallel()

	// Every input, however implausible, resolves to a code from the matrix.
	known := make(map[int]bool)
	for _, bands := range sizeMatrix {
		for _, code := range bands {
			known[code] = true
		}
	}

	for _, waist := range []float64{-50, 0, 38.2, 97, 1000} {
		for _, heightCM := range []int{-10, 0, 173, 184, 300} {
			code := Recommend(Measurements{WaistGirthCM: waist}, heightCM)
			assert.True(t, known[code], "waist=%v height=%d produced unknown code %d", waist, heightCM, code)
		}
	}
}

func TestSizeMatrixShape(t *testing.T) {
	t.Parallel()

	require.Len(t, sizeMatrix, len(beltValues))
	for _, belt := range beltValues {
		bands, ok := sizeMatrix[belt]
		require.True(t, ok, "belt %d missing from matrix", belt)
		require.Len(t, bands, 3)

		// The low band doubles the mid code, the high band offsets it by 100.
		assert.Equal(t, bands[BandLow], 2*bands[BandMid])
		assert.Equal(t, bands[BandHigh], bands[BandMid]+100)
	}
}

func TestFormatSizeLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rawSize int
		want    string
	}{
		{92, "92 (S46)"},
		{46, "46 (M46)"},
		{58, "58 (M58)"},
		{146, "146 (L46)"},
		{158, "158 (L58)"},
		{999, "999"},
		{0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FormatSizeLabel(tt.rawSize))
		})
	}
}

func TestFormatSizeLabelCoversMatrix(t *testing.T) {
	t.Parallel()

	// Every code the matrix can produce carries a human label.
	for belt, bands := range sizeMatrix {
		for band, code := range bands {
			label := FormatSizeLabel(code)
			assert.True(t, strings.HasPrefix(label, strconv.Itoa(code)),
				fmt.Sprintf("belt %d band %s", belt, band))
			assert.Contains(t, label, "(", "belt %d band %s code %d has no label", belt, band, code)
		}
	}
}

func TestBeltValuesAccessor(t *testing.T) {
	t.Parallel()

	belts := BeltValues()
	require.Equal(t, []int{85, 89, 93, 97, 101, 105, 109}, belts)

	// Mutating the copy must not leak into the chart.
	belts[0] = 1
	assert.Equal(t, 85, BeltValues()[0])
}
