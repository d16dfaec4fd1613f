package sizing

import "time"

type EstimateRequest struct {
	ImageBase64 string `json:"image_base64" validate:"required"`
	HeightCM    int    `json:"height_cm" validate:"required,gte=130,lte=220"`
	Subject     string `json:"subject" validate:"omitempty,max=64"`
}

// EstimateInput carries a decoded request into the service layer. PhotoURL
// is set when the caller already uploaded the source photo.
type EstimateInput struct {
	ImageData []byte
	HeightCM  int
	Subject   string
	Source    string
	PhotoURL  string
}

type MeasurementData struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	Source        string    `json:"source"`
	HeightCM      int       `json:"height_cm"`
	WaistGirthCM  float64   `json:"waist_girth_cm"`
	HipGirthCM    float64   `json:"hip_girth_cm"`
	PantsLengthCM float64   `json:"pants_length_cm"`
	RawSizeCode   int       `json:"raw_size_code"`
	SizeLabel     string    `json:"size_label"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	DebugImageURL string    `json:"debug_image_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type EstimateResponse struct {
	Data        MeasurementData `json:"data"`
	AccessToken string          `json:"access_token"`
	ExpiresAt   int64           `json:"expires_at"`
}

type MeasurementResponse struct {
	Data MeasurementData `json:"data"`
}

type MeasurementListResponse struct {
	Data []MeasurementData `json:"data"`
}

type LiveResult struct {
	Found         bool    `json:"found"`
	WaistGirthCM  float64 `json:"waist_girth_cm,omitempty"`
	HipGirthCM    float64 `json:"hip_girth_cm,omitempty"`
	PantsLengthCM float64 `json:"pants_length_cm,omitempty"`
	RawSizeCode   int     `json:"raw_size_code,omitempty"`
	SizeLabel     string  `json:"size_label,omitempty"`
	Error         string  `json:"error,omitempty"`
}
