package sizingRepository

import (
	"TailorGolang/internal/api/sizing"
	"TailorGolang/internal/entity"
	contextPkg "TailorGolang/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type SizeMeasurementDB struct {
	ID            sql.NullString  `db:"id"`
	Subject       sql.NullString  `db:"subject"`
	Source        sql.NullString  `db:"source"`
	HeightCM      sql.NullInt64   `db:"height_cm"`
	WaistGirthCM  sql.NullFloat64 `db:"waist_girth_cm"`
	HipGirthCM    sql.NullFloat64 `db:"hip_girth_cm"`
	PantsLengthCM sql.NullFloat64 `db:"pants_length_cm"`
	RawSizeCode   sql.NullInt64   `db:"raw_size_code"`
	SizeLabel     sql.NullString  `db:"size_label"`
	PhotoURL      sql.NullString  `db:"photo_url"`
	DebugImageURL sql.NullString  `db:"debug_image_url"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r *measurementRepository) CreateMeasurement(c context.Context, measurement entity.SizeMeasurement) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":              measurement.ID,
		"subject":         measurement.Subject,
		"source":          measurement.Source,
		"height_cm":       measurement.HeightCM,
		"waist_girth_cm":  measurement.WaistGirthCM,
		"hip_girth_cm":    measurement.HipGirthCM,
		"pants_length_cm": measurement.PantsLengthCM,
		"raw_size_code":   measurement.RawSizeCode,
		"size_label":      measurement.SizeLabel,
		"photo_url":       measurement.PhotoURL,
		"debug_image_url": measurement.DebugImageURL,
		"created_at":      time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateMeasurement, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateMeasurement")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating measurement")

		return err
	}

	return nil
}

func (r *measurementRepository) GetMeasurementByID(c context.Context, id string) (entity.SizeMeasurement, error) {
	requestID := contextPkg.GetRequestID(c)
	var measurement SizeMeasurementDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetMeasurementById, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMeasurementByID named query preparation err")

		return entity.SizeMeasurement{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&measurement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("GetMeasurementByID no rows found")
			return entity.SizeMeasurement{}, sizing.ErrMeasurementNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMeasurementByID execution err")
		return entity.SizeMeasurement{}, err
	}

	return r.makeSizeMeasurement(measurement), nil
}

func (r *measurementRepository) GetMeasurementsBySubject(c context.Context, subject string, limit, offset int) ([]entity.SizeMeasurement, error) {
	requestID := contextPkg.GetRequestID(c)
	var measurements []SizeMeasurementDB

	argsKV := map[string]interface{}{
		"subject": subject,
		"limit":   limit,
		"offset":  offset,
	}

	query, args, err := sqlx.Named(queryGetMeasurementsBySubject, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMeasurementsBySubject named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &measurements, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetMeasurementsBySubject execution err")
		return nil, err
	}

	result := make([]entity.SizeMeasurement, 0, len(measurements))
	for _, measurement := range measurements {
		result = append(result, r.makeSizeMeasurement(measurement))
	}

	return result, nil
}

func (r *measurementRepository) DeleteMeasurement(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteMeasurement, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMeasurement named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMeasurement execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteMeasurement rows affected err")

		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("DeleteMeasurement no rows affected")

		return sizing.ErrMeasurementNotFound
	}

	return nil
}

func (r *measurementRepository) makeSizeMeasurement(measurement SizeMeasurementDB) entity.SizeMeasurement {
	return entity.SizeMeasurement{
		ID:            measurement.ID.String,
		Subject:       measurement.Subject.String,
		Source:        measurement.Source.String,
		HeightCM:      int(measurement.HeightCM.Int64),
		WaistGirthCM:  measurement.WaistGirthCM.Float64,
		HipGirthCM:    measurement.HipGirthCM.Float64,
		PantsLengthCM: measurement.PantsLengthCM.Float64,
		RawSizeCode:   int(measurement.RawSizeCode.Int64),
		SizeLabel:     measurement.SizeLabel.String,
		PhotoURL:      measurement.PhotoURL.String,
		DebugImageURL: measurement.DebugImageURL.String,
		CreatedAt:     measurement.CreatedAt,
	}
}
