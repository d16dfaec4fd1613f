package sizingHandler

import (
	"TailorGolang/internal/api/sizing"
	"TailorGolang/internal/entity"
	contextPkg "TailorGolang/pkg/context"
	"TailorGolang/pkg/handlerUtil"
	jwtPkg "TailorGolang/pkg/jwt"
	"TailorGolang/pkg/log"
	"encoding/base64"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const maxImageBytes = 5 * 1024 * 1024

func (h *SizingHandler) EstimateSize(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing size estimation request")

	var input sizing.EstimateInput
	input.Source = string(entity.MeasurementSourceAPI)

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
		}

		fileContent, err := file.Open()
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_file")
		}
		defer fileContent.Close()

		imageData, err := io.ReadAll(fileContent)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}

		heightCM, err := strconv.Atoi(ctx.FormValue("height_cm"))
		if err != nil {
			return errHandler.HandleValidationError(ctx, requestID,
				errors.New("height_cm must be an integer"), ctx.Path())
		}

		input.ImageData = imageData
		input.HeightCM = heightCM
		input.Subject = ctx.FormValue("subject")
	} else {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
		}).Debug("Processing JSON request")

		var req sizing.EstimateRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		imageData, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, sizing.ErrInvalidImage, ctx.Path(), "decode_base64_image")
		}

		if len(imageData) > maxImageBytes {
			return errHandler.Handle(ctx, requestID, sizing.ErrFileTooLarge, ctx.Path(), "check_image_size")
		}

		input.ImageData = imageData
		input.HeightCM = req.HeightCM
		input.Subject = req.Subject
	}

	measurement, accessToken, expiresAt, err := h.sizingService.EstimateFromImage(c, input)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "estimate_size")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id":  requestID,
			"path":        ctx.Path(),
			"measurement": measurement.ID,
			"size_label":  measurement.SizeLabel,
		}).Info("Size estimation successful")
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, sizing.EstimateResponse{
			Data:        makeMeasurementData(measurement),
			AccessToken: accessToken,
			ExpiresAt:   expiresAt,
		})
	}
}

func (h *SizingHandler) GetMeasurementByID(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get measurement by ID request")

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("measurement ID is required"), ctx.Path())
	}

	claims, err := jwtPkg.GetAccessClaims(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	measurement, err := h.sizingService.GetMeasurementByID(c, id, claims)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_measurement")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, sizing.MeasurementResponse{
			Data: makeMeasurementData(measurement),
		})
	}
}

func (h *SizingHandler) GetMeasurements(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get measurements request")

	claims, err := jwtPkg.GetAccessClaims(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	limit := ctx.QueryInt("limit", 20)
	offset := ctx.QueryInt("offset", 0)

	measurements, err := h.sizingService.GetMeasurementsBySubject(c, claims.Subject, limit, offset)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_measurements")
	}

	data := make([]sizing.MeasurementData, 0, len(measurements))
	for _, measurement := range measurements {
		data = append(data, makeMeasurementData(measurement))
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, sizing.MeasurementListResponse{
			Data: data,
		})
	}
}

func (h *SizingHandler) DeleteMeasurement(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing delete measurement request")

	id := ctx.Params("id")
	if id == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("measurement ID is required"), ctx.Path())
	}

	claims, err := jwtPkg.GetAccessClaims(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.sizingService.DeleteMeasurement(c, id, claims); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_measurement")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Measurement deleted successfully",
		})
	}
}

func makeMeasurementData(measurement entity.SizeMeasurement) sizing.MeasurementData {
	return sizing.MeasurementData{
		ID:            measurement.ID,
		Subject:       measurement.Subject,
		Source:        measurement.Source,
		HeightCM:      measurement.HeightCM,
		WaistGirthCM:  measurement.WaistGirthCM,
		HipGirthCM:    measurement.HipGirthCM,
		PantsLengthCM: measurement.PantsLengthCM,
		RawSizeCode:   measurement.RawSizeCode,
		SizeLabel:     measurement.SizeLabel,
		PhotoURL:      measurement.PhotoURL,
		DebugImageURL: measurement.DebugImageURL,
		CreatedAt:     measurement.CreatedAt,
	}
}
