package entity

import (
	"TailorGolang/internal/api/sizing"
	"time"
)

type MeasurementSource string

const (
	MeasurementSourceAPI      MeasurementSource = "api"
	MeasurementSourceWhatsapp MeasurementSource = "whatsapp"
)

const (
	MinSubjectHeightCM = 130
	MaxSubjectHeightCM = 220
)

func IsValidMeasurementSource(source string) bool {
	switch MeasurementSource(source) {
	case MeasurementSourceAPI, MeasurementSourceWhatsapp:
		return true
	default:
		return false
	}
}

func IsValidSubjectHeight(heightCM int) bool {
	return heightCM >= MinSubjectHeightCM && heightCM <= MaxSubjectHeightCM
}

type AccessClaims struct {
	Subject       string
	MeasurementID string
}

type SizeMeasurement struct {
	ID            string    `db:"id"`
	Subject       string    `db:"subject"`
	Source        string    `db:"source"`
	HeightCM      int       `db:"height_cm"`
	WaistGirthCM  float64   `db:"waist_girth_cm"`
	HipGirthCM    float64   `db:"hip_girth_cm"`
	PantsLengthCM float64   `db:"pants_length_cm"`
	RawSizeCode   int       `db:"raw_size_code"`
	SizeLabel     string    `db:"size_label"`
	PhotoURL      string    `db:"photo_url"`
	DebugImageURL string    `db:"debug_image_url"`
	CreatedAt     time.Time `db:"created_at"`
}

func (m *SizeMeasurement) Validate() error {
	if !IsValidMeasurementSource(m.Source) {
		return sizing.ErrInvalidSource
	}

	if !IsValidSubjectHeight(m.HeightCM) {
		return sizing.ErrInvalidHeight
	}

	if m.WaistGirthCM <= 0 || m.HipGirthCM <= 0 || m.PantsLengthCM <= 0 {
		return sizing.ErrInvalidMeasurement
	}

	return nil
}
