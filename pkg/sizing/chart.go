package sizing

import (
	"math"
	"strconv"
)

type HeightBand string

const (
	BandLow  HeightBand = "low"
	BandMid  HeightBand = "mid"
	BandHigh HeightBand = "high"
)

// sizeMatrix maps a discrete belt value (waist girth, cm) and a height band
// to a raw size code. Built once, read-only for the life of the process.
var sizeMatrix = map[int]map[HeightBand]int{
	85:  {BandLow: 92, BandMid: 46, BandHigh: 146},
	89:  {BandLow: 96, BandMid: 48, BandHigh: 148},
	93:  {BandLow: 100, BandMid: 50, BandHigh: 150},
	97:  {BandLow: 104, BandMid: 52, BandHigh: 152},
	101: {BandLow: 108, BandMid: 54, BandHigh: 154},
	105: {BandLow: 112, BandMid: 56, BandHigh: 156},
	109: {BandLow: 116, BandMid: 58, BandHigh: 158},
}

// beltValues lists the matrix keys in ascending order so nearest-key scans
// are deterministic: on a tie the lower key is kept.
var beltValues = []int{85, 89, 93, 97, 101, 105, 109}

var sizeLabels = map[int]string{
	92: "S46", 96: "S48", 100: "S50", 104: "S52", 108: "S54", 112: "S56", 116: "S58",
	46: "M46", 48: "M48", 50: "M50", 52: "M52", 54: "M54", 56: "M56", 58: "M58",
	146: "L46", 148: "L48", 150: "L50", 152: "L52", 154: "L54", 156: "L56", 158: "L58",
}

// NearestBelt snaps a waist girth onto the closest matrix key. Inputs beyond
// the table range land on the outermost key; there is no extrapolation.
func NearestBelt(waistGirthCM float64) int {
	nearest := beltValues[0]
	best := math.Abs(float64(nearest) - waistGirthCM)

	for _, belt := range beltValues[1:] {
		d := math.Abs(float64(belt) - waistGirthCM)
		if d < best {
			best = d
			nearest = belt
		}
	}

	return nearest
}

// GetHeightBand buckets a height into one of the three matrix columns. Total
// over all integers: anything at or below 173 is low, anything at or above
// 185 is high.
func GetHeightBand(heightCM int) HeightBand {
	switch {
	case heightCM <= 173:
		return BandLow
	case heightCM <= 184:
		return BandMid
	default:
		return BandHigh
	}
}

// Recommend resolves a raw size code from the waist girth and height. It is
// total: any input, however extreme, resolves to some matrix entry.
func Recommend(m Measurements, heightCM int) int {
	belt := NearestBelt(m.WaistGirthCM)
	band := GetHeightBand(heightCM)
	return sizeMatrix[belt][band]
}

// FormatSizeLabel renders a raw size code for humans: "46 (M46)" when the
// code has a label, the bare decimal string otherwise.
func FormatSizeLabel(rawSize int) string {
	if label, ok := sizeLabels[rawSize]; ok {
		return strconv.Itoa(rawSize) + " (" + label + ")"
	}
	return strconv.Itoa(rawSize)
}

// BeltValues returns a copy of the matrix keys in ascending order.
func BeltValues() []int {
	out := make([]int, len(beltValues))
	copy(out, beltValues)
	return out
}
