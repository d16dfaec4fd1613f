package sizingRepository

const (
	queryCreateMeasurement = `
		INSERT INTO size_measurements (
			id,
			subject,
			source,
			height_cm,
			waist_girth_cm,
			hip_girth_cm,
			pants_length_cm,
			raw_size_code,
			size_label,
			photo_url,
			debug_image_url,
			created_at
		) VALUES (
			:id,
			:subject,
			:source,
			:height_cm,
			:waist_girth_cm,
			:hip_girth_cm,
			:pants_length_cm,
			:raw_size_code,
			:size_label,
			:photo_url,
			:debug_image_url,
			:created_at
		)
	`

	queryGetMeasurementById = `
		SELECT
			id,
			subject,
			source,
			height_cm,
			waist_girth_cm,
			hip_girth_cm,
			pants_length_cm,
			raw_size_code,
			size_label,
			photo_url,
			debug_image_url,
			created_at
		FROM size_measurements
		WHERE id = :id
	`

	queryGetMeasurementsBySubject = `
		SELECT
			id,
			subject,
			source,
			height_cm,
			waist_girth_cm,
			hip_girth_cm,
			pants_length_cm,
			raw_size_code,
			size_label,
			photo_url,
			debug_image_url,
			created_at
		FROM size_measurements
		WHERE subject = :subject
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset
	`

	queryDeleteMeasurement = `
		DELETE FROM size_measurements
		WHERE id = :id
	`
)
