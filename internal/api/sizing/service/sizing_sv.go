package sizingService

import (
	"TailorGolang/internal/api/sizing"
	"TailorGolang/internal/entity"
	contextPkg "TailorGolang/pkg/context"
	jwtPkg "TailorGolang/pkg/jwt"
	sizingPkg "TailorGolang/pkg/sizing"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"time"
)

func (s *sizingService) EstimateFromImage(ctx context.Context, input sizing.EstimateInput) (entity.SizeMeasurement, string, int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !entity.IsValidSubjectHeight(input.HeightCM) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"height_cm":  input.HeightCM,
		}).Warn("Height out of accepted range")
		return entity.SizeMeasurement{}, "", 0, sizing.ErrInvalidHeight
	}

	img, width, height, err := s.utils.DecodeImage(input.ImageData)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to decode image")
		return entity.SizeMeasurement{}, "", 0, err
	}

	pose, err := s.resolvePose(ctx, input.ImageData)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to resolve pose")
		return entity.SizeMeasurement{}, "", 0, err
	}

	if !pose.Found || !pose.Landmarks.HasRequiredLandmarks() {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"found":      pose.Found,
			"landmarks":  len(pose.Landmarks),
		}).Warn("No usable pose in image")
		return entity.SizeMeasurement{}, "", 0, sizing.ErrPoseNotFound
	}

	measurements, err := s.estimator.Estimate(pose.Landmarks, width, height, input.HeightCM)
	if err != nil {
		var geomErr *sizingPkg.PoseGeometryError
		if errors.As(err, &geomErr) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"reason":     geomErr.Reason,
			}).Warn("Implausible pose geometry")
			return entity.SizeMeasurement{}, "", 0, sizing.ErrPoseGeometry
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to estimate measurements")
		return entity.SizeMeasurement{}, "", 0, err
	}

	rawSize := sizingPkg.Recommend(measurements, input.HeightCM)
	sizeLabel := sizingPkg.FormatSizeLabel(rawSize)

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.SizeMeasurement{}, "", 0, err
	}

	subject := input.Subject
	if subject == "" {
		subject, err = s.utils.NewULIDFromTimestamp(time.Now())
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to generate subject ULID")
			return entity.SizeMeasurement{}, "", 0, err
		}
	}

	photoURL := input.PhotoURL
	if photoURL == "" {
		key := fmt.Sprintf("%s/%s/%s.jpg", input.Source, subject, ULID)
		uploaded, err := s.s3.UploadBytes(key, input.ImageData, "image/jpeg")
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload photo")
			return entity.SizeMeasurement{}, "", 0, sizing.ErrFailedToUploadFile
		}
		photoURL = uploaded
	}

	debugImageURL := s.uploadDebugOverlay(requestID, img, pose.Landmarks, input.Source, subject, ULID)
	measurements.DebugImagePath = debugImageURL

	measurement := entity.SizeMeasurement{
		ID:            ULID,
		Subject:       subject,
		Source:        input.Source,
		HeightCM:      input.HeightCM,
		WaistGirthCM:  measurements.WaistGirthCM,
		HipGirthCM:    measurements.HipGirthCM,
		PantsLengthCM: measurements.PantsLengthCM,
		RawSizeCode:   rawSize,
		SizeLabel:     sizeLabel,
		PhotoURL:      photoURL,
		DebugImageURL: debugImageURL,
		CreatedAt:     time.Now(),
	}

	if err := measurement.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid measurement data")
		return entity.SizeMeasurement{}, "", 0, err
	}

	repo, err := s.sizingRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.SizeMeasurement{}, "", 0, err
	}

	if err := repo.Measurement.CreateMeasurement(ctx, measurement); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create measurement")
		return entity.SizeMeasurement{}, "", 0, sizing.ErrCreateMeasurement
	}

	accessToken, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"subject":        subject,
		"measurement_id": ULID,
	}, 24*time.Hour)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return entity.SizeMeasurement{}, "", 0, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":    requestID,
		"measurement":   ULID,
		"raw_size_code": rawSize,
		"size_label":    sizeLabel,
	}).Info("Measurement created")

	return measurement, accessToken, expiresAt, nil
}

func (s *sizingService) DetectAndMeasure(frame []byte, heightCM int) (*sizing.LiveResult, error) {
	_, width, height, err := s.utils.DecodeImage(frame)
	if err != nil {
		return nil, err
	}

	pose, err := s.poseDetector.DetectPose(s.optimizeFrame(frame))
	if err != nil {
		return nil, err
	}

	if !pose.Found || !pose.Landmarks.HasRequiredLandmarks() {
		return &sizing.LiveResult{Found: false}, nil
	}

	measurements, err := s.estimator.Estimate(pose.Landmarks, width, height, heightCM)
	if err != nil {
		var geomErr *sizingPkg.PoseGeometryError
		if errors.As(err, &geomErr) {
			return &sizing.LiveResult{Found: false, Error: geomErr.Reason}, nil
		}
		return nil, err
	}

	rawSize := sizingPkg.Recommend(measurements, heightCM)

	return &sizing.LiveResult{
		Found:         true,
		WaistGirthCM:  measurements.WaistGirthCM,
		HipGirthCM:    measurements.HipGirthCM,
		PantsLengthCM: measurements.PantsLengthCM,
		RawSizeCode:   rawSize,
		SizeLabel:     sizingPkg.FormatSizeLabel(rawSize),
	}, nil
}

func (s *sizingService) GetMeasurementByID(ctx context.Context, id string, claims entity.AccessClaims) (entity.SizeMeasurement, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.sizingRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.SizeMeasurement{}, err
	}

	measurement, err := repo.Measurement.GetMeasurementByID(ctx, id)
	if err != nil {
		return entity.SizeMeasurement{}, err
	}

	if measurement.Subject != claims.Subject && claims.MeasurementID != id {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"measurement": id,
			"subject":     claims.Subject,
		}).Warn("Measurement does not belong to subject")
		return entity.SizeMeasurement{}, sizing.ErrMeasurementNotOwned
	}

	measurement.PhotoURL = s.presignIfPossible(requestID, measurement.PhotoURL)
	measurement.DebugImageURL = s.presignIfPossible(requestID, measurement.DebugImageURL)

	return measurement, nil
}

func (s *sizingService) GetMeasurementsBySubject(ctx context.Context, subject string, limit, offset int) ([]entity.SizeMeasurement, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	repo, err := s.sizingRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	measurements, err := repo.Measurement.GetMeasurementsBySubject(ctx, subject, limit, offset)
	if err != nil {
		return nil, err
	}

	return measurements, nil
}

func (s *sizingService) DeleteMeasurement(ctx context.Context, id string, claims entity.AccessClaims) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.sizingRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	measurement, err := repo.Measurement.GetMeasurementByID(ctx, id)
	if err != nil {
		return err
	}

	if measurement.Subject != claims.Subject && claims.MeasurementID != id {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"measurement": id,
			"subject":     claims.Subject,
		}).Warn("Measurement does not belong to subject")
		return sizing.ErrMeasurementNotOwned
	}

	if err := repo.Measurement.DeleteMeasurement(ctx, id); err != nil {
		return err
	}

	for _, fileURL := range []string{measurement.PhotoURL, measurement.DebugImageURL} {
		if fileURL == "" {
			continue
		}
		if deleteErr := s.s3.DeleteFile(fileURL); deleteErr != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      deleteErr.Error(),
			}).Warn("Failed to delete stored photo after measurement deletion")
		}
	}

	return nil
}
