package sizing

import "TailorGolang/pkg/response"

var (
	ErrPoseNotFound        = response.NewError(422, "no person detected in image")
	ErrPoseGeometry        = response.NewError(422, "implausible pose geometry")
	ErrInvalidImage        = response.NewError(400, "invalid image file type")
	ErrFileTooLarge        = response.NewError(400, "image file too large")
	ErrInvalidHeight       = response.NewError(400, "height out of accepted range")
	ErrInvalidSource       = response.NewError(400, "invalid measurement source")
	ErrInvalidMeasurement  = response.NewError(400, "invalid measurement values")
	ErrMeasurementNotFound = response.NewError(404, "measurement not found")
	ErrMeasurementNotOwned = response.NewError(403, "measurement does not belong to subject")
	ErrFailedToUploadFile  = response.NewError(500, "failed to upload file")
	ErrCreateMeasurement   = response.NewError(500, "failed to save measurement")
	ErrDetectorUnavailable = response.NewError(503, "pose detection service unavailable")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
