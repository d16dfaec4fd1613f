package sizingService

import (
	"TailorGolang/internal/api/sizing"
	"TailorGolang/internal/entity"
	contextPkg "TailorGolang/pkg/context"
	"TailorGolang/pkg/overlay"
	sizingPkg "TailorGolang/pkg/sizing"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	detectionMaxDimension = 1280
	detectionJPEGQuality  = 80
)

// optimizeFrame shrinks a frame before it crosses the wire to a detector.
// Landmarks are normalized, so downscaling does not move the measurements.
// The original frame is returned when optimization fails.
func (s *sizingService) optimizeFrame(frame []byte) []byte {
	optimized, err := s.utils.OptimizeImageForDetection(frame, detectionMaxDimension, detectionMaxDimension, detectionJPEGQuality)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Warn("Failed to optimize frame for detection")
		return frame
	}

	return optimized
}

func (s *sizingService) resolvePose(ctx context.Context, frame []byte) (*entity.PoseDetectionResult, error) {
	requestID := contextPkg.GetRequestID(ctx)
	frame = s.optimizeFrame(frame)

	if s.poseDetector != nil {
		result, err := s.poseDetector.DetectPose(frame)
		if err == nil {
			return result, nil
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Pose detector unavailable, falling back to Gemini")
	}

	if s.gemini == nil {
		return nil, sizing.ErrDetectorUnavailable
	}

	base64Image := base64.StdEncoding.EncodeToString(frame)

	prompt := `
	Find the single person in this full-body photo and report the image positions of these body points.
	Coordinates must be normalized to the [0, 1] range relative to image width and height.
	Point indices: 0 = nose, 23 = left hip, 24 = right hip, 27 = left ankle, 28 = right ankle, 31 = left foot tip, 32 = right foot tip.
	Answer in this JSON format:
	{
		"found": true,
		"landmarks": [
			{"index": 0, "x": 0.51, "y": 0.08},
			{"index": 23, "x": 0.44, "y": 0.52}
		]
	}
	If no person is fully visible from head to feet, answer {"found": false, "landmarks": []}.
	Return ONLY the JSON response, without any additional text.
	`

	response, err := s.gemini.AnalyzeImage(ctx, base64Image, prompt)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Gemini pose fallback failed")
		return nil, sizing.ErrDetectorUnavailable
	}

	result, err := parsePoseResponse(response)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to parse Gemini pose response")
		return nil, sizing.ErrPoseNotFound
	}

	return result, nil
}

type geminiPoseResponse struct {
	Found     bool `json:"found"`
	Landmarks []struct {
		Index int     `json:"index"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	} `json:"landmarks"`
}

func parsePoseResponse(response string) (*entity.PoseDetectionResult, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")

	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, errors.New("cannot find valid JSON in response")
	}

	jsonStr := response[jsonStart : jsonEnd+1]

	var parsed geminiPoseResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, err
	}

	if !parsed.Found {
		return &entity.PoseDetectionResult{Found: false}, nil
	}

	landmarks := make(sizingPkg.LandmarkSet, sizingPkg.NumLandmarks)
	present := make(map[int]bool, len(parsed.Landmarks))
	for _, lm := range parsed.Landmarks {
		if lm.Index < 0 || lm.Index >= sizingPkg.NumLandmarks {
			continue
		}
		landmarks[lm.Index] = sizingPkg.Landmark{X: lm.X, Y: lm.Y}
		present[lm.Index] = true
	}

	for _, idx := range sizingPkg.RequiredLandmarks() {
		if !present[idx] {
			return nil, fmt.Errorf("missing landmark index %d in response", idx)
		}
	}

	return &entity.PoseDetectionResult{
		Found:     true,
		Landmarks: landmarks,
	}, nil
}

func (s *sizingService) uploadDebugOverlay(requestID string, img image.Image, landmarks sizingPkg.LandmarkSet, source, subject, id string) string {
	rendered := overlay.RenderLandmarks(img, landmarks)

	data, err := overlay.EncodeJPEG(rendered, 85)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to encode debug overlay")
		return ""
	}

	key := fmt.Sprintf("%s/%s/%s-debug.jpg", source, subject, id)
	fileURL, err := s.s3.UploadBytes(key, data, "image/jpeg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to upload debug overlay")
		return ""
	}

	return fileURL
}

func (s *sizingService) presignIfPossible(requestID string, fileURL string) string {
	if fileURL == "" {
		return fileURL
	}

	presigned, err := s.s3.PresignUrl(fileURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign file URL")
		return fileURL
	}

	return presigned
}
