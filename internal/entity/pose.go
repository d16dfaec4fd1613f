package entity

import (
	sizingPkg "TailorGolang/pkg/sizing"
)

type PoseDetectionResult struct {
	Found     bool                  `json:"found"`
	Landmarks sizingPkg.LandmarkSet `json:"landmarks"`
}
