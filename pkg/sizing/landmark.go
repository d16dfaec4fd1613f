package sizing

// Landmark indices into the 33-point body topology produced by the pose
// detection service.
const (
	LandmarkNose           = 0
	LandmarkLeftHip        = 23
	LandmarkRightHip       = 24
	LandmarkLeftAnkle      = 27
	LandmarkRightAnkle     = 28
	LandmarkLeftFootIndex  = 31
	LandmarkRightFootIndex = 32

	NumLandmarks = 33
)

type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type LandmarkSet []Landmark

var requiredLandmarks = []int{
	LandmarkNose,
	LandmarkLeftHip,
	LandmarkRightHip,
	LandmarkLeftAnkle,
	LandmarkRightAnkle,
	LandmarkLeftFootIndex,
	LandmarkRightFootIndex,
}

// HasRequiredLandmarks reports whether every index the estimator reads is
// present in the set.
func (ls LandmarkSet) HasRequiredLandmarks() bool {
	for _, idx := range requiredLandmarks {
		if idx >= len(ls) {
			return false
		}
	}
	return true
}

// RequiredLandmarks returns the indices the estimator consumes, in ascending
// order.
func RequiredLandmarks() []int {
	out := make([]int, len(requiredLandmarks))
	copy(out, requiredLandmarks)
	return out
}
