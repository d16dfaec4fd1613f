package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TailorGolang/internal/api/sizing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x % 256), uint8(y % 256), 120, 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func fileHeader(size int64, contentType string) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)
	return &multipart.FileHeader{
		Filename: "photo.jpg",
		Size:     size,
		Header:   header,
	}
}

func TestNewULIDFromTimestamp(t *testing.T) {
	t.Parallel()

	u := New()
	now := time.Now()

	first, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)

	second, err := u.NewULIDFromTimestamp(now)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(now), parsed.Time())
}

func TestValidateImageFile(t *testing.T) {
	t.Parallel()

	u := New()

	tests := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr error
	}{
		{"nil file", nil, sizing.ErrInvalidImage},
		{"valid jpeg", fileHeader(1024, "image/jpeg"), nil},
		{"valid png", fileHeader(2048, "image/png"), nil},
		{"too large", fileHeader(6*1024*1024, "image/jpeg"), sizing.ErrFileTooLarge},
		{"not an image", fileHeader(1024, "application/pdf"), sizing.ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := u.ValidateImageFile(tt.file)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestDecodeImage(t *testing.T) {
	t.Parallel()

	u := New()

	t.Run("valid png", func(t *testing.T) {
		t.Parallel()

		img, w, h, err := u.DecodeImage(pngBytes(t, 120, 90))
		require.NoError(t, err)
		require.NotNil(t, img)
		assert.Equal(t, 120, w)
		assert.Equal(t, 90, h)
	})

	t.Run("garbage bytes", func(t *testing.T) {
		t.Parallel()

		_, _, _, err := u.DecodeImage([]byte("definitely not an image"))
		assert.ErrorIs(t, err, sizing.ErrInvalidImage)
	})
}

func TestOptimizeImageForDetection(t *testing.T) {
	t.Parallel()

	u := New()

	t.Run("downscales oversized frames", func(t *testing.T) {
		t.Parallel()

		out, err := u.OptimizeImageForDetection(pngBytes(t, 2000, 1000), 640, 640, 80)
		require.NoError(t, err)

		img, _, _, err := u.DecodeImage(out)
		require.NoError(t, err)
		assert.LessOrEqual(t, img.Bounds().Dx(), 640)
		assert.LessOrEqual(t, img.Bounds().Dy(), 640)
	})

	t.Run("keeps small frames", func(t *testing.T) {
		t.Parallel()

		out, err := u.OptimizeImageForDetection(pngBytes(t, 320, 240), 640, 640, 80)
		require.NoError(t, err)

		img, _, _, err := u.DecodeImage(out)
		require.NoError(t, err)
		assert.Equal(t, 320, img.Bounds().Dx())
		assert.Equal(t, 240, img.Bounds().Dy())
	})
}
