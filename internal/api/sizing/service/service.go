package sizingService

import (
	"TailorGolang/internal/api/sizing"
	sizingRepository "TailorGolang/internal/api/sizing/repository"
	"TailorGolang/internal/entity"
	"TailorGolang/pkg/gemini"
	"TailorGolang/pkg/posedetect"
	"TailorGolang/pkg/s3"
	sizingPkg "TailorGolang/pkg/sizing"
	"TailorGolang/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ISizingService interface {
	EstimateFromImage(ctx context.Context, input sizing.EstimateInput) (entity.SizeMeasurement, string, int64, error)
	DetectAndMeasure(frame []byte, heightCM int) (*sizing.LiveResult, error)
	GetMeasurementByID(ctx context.Context, id string, claims entity.AccessClaims) (entity.SizeMeasurement, error)
	GetMeasurementsBySubject(ctx context.Context, subject string, limit, offset int) ([]entity.SizeMeasurement, error)
	DeleteMeasurement(ctx context.Context, id string, claims entity.AccessClaims) error
}

type sizingService struct {
	log              *logrus.Logger
	sizingRepository sizingRepository.Repository
	poseDetector     posedetect.IPoseDetector
	gemini           gemini.IGemini
	s3               s3.ItfS3
	utils            utils.IUtils
	estimator        *sizingPkg.Estimator
}

func NewSizingService(
	log *logrus.Logger,
	sr sizingRepository.Repository,
	poseDetector posedetect.IPoseDetector,
	gemini gemini.IGemini,
	s3 s3.ItfS3,
	utils utils.IUtils,
) ISizingService {
	return &sizingService{
		log:              log,
		sizingRepository: sr,
		poseDetector:     poseDetector,
		gemini:           gemini,
		s3:               s3,
		utils:            utils,
		estimator:        sizingPkg.NewEstimator(),
	}
}
