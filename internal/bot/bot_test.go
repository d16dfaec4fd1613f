package bot

import (
	"TailorGolang/internal/api/sizing"
	"TailorGolang/internal/entity"
	"TailorGolang/pkg/whatsapp"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentText struct {
	recipient string
	text      string
}

type sentImage struct {
	recipient string
	caption   string
	data      []byte
}

type fakeWhatsappBot struct {
	texts   []sentText
	images  []sentImage
	handler whatsapp.MessageHandler
}

func (f *fakeWhatsappBot) SendText(_ context.Context, recipient string, text string) error {
	f.texts = append(f.texts, sentText{recipient: recipient, text: text})
	return nil
}

func (f *fakeWhatsappBot) SendImage(_ context.Context, recipient string, caption string, imageData []byte) error {
	f.images = append(f.images, sentImage{recipient: recipient, caption: caption, data: imageData})
	return nil
}

func (f *fakeWhatsappBot) OnMessage(handler whatsapp.MessageHandler) { f.handler = handler }

func (f *fakeWhatsappBot) Disconnect() error { return nil }

func (f *fakeWhatsappBot) IsConnected() bool { return true }

type fakeRedis struct {
	store map[string]string
}

func (f *fakeRedis) SetSession(_ context.Context, key string, payload string, _ time.Duration) error {
	f.store[key] = payload
	return nil
}

func (f *fakeRedis) GetSession(_ context.Context, key string) (string, error) {
	payload, ok := f.store[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return payload, nil
}

func (f *fakeRedis) DeleteSession(_ context.Context, key string) error {
	delete(f.store, key)
	return nil
}

type fakeSizingService struct {
	measurement entity.SizeMeasurement
	err         error
	inputs      []sizing.EstimateInput
}

func (f *fakeSizingService) EstimateFromImage(_ context.Context, input sizing.EstimateInput) (entity.SizeMeasurement, string, int64, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return entity.SizeMeasurement{}, "", 0, f.err
	}
	return f.measurement, "token", 0, nil
}

func (f *fakeSizingService) DetectAndMeasure(_ []byte, _ int) (*sizing.LiveResult, error) {
	return nil, errors.New("not supported in tests")
}

func (f *fakeSizingService) GetMeasurementByID(_ context.Context, _ string, _ entity.AccessClaims) (entity.SizeMeasurement, error) {
	return entity.SizeMeasurement{}, errors.New("not supported in tests")
}

func (f *fakeSizingService) GetMeasurementsBySubject(_ context.Context, _ string, _, _ int) ([]entity.SizeMeasurement, error) {
	return nil, errors.New("not supported in tests")
}

func (f *fakeSizingService) DeleteMeasurement(_ context.Context, _ string, _ entity.AccessClaims) error {
	return errors.New("not supported in tests")
}

type fakeS3 struct {
	uploads    map[string][]byte
	uploadErr  error
	debugImage []byte
}

func (f *fakeS3) UploadBytes(key string, data []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func (f *fakeS3) DownloadBytes(_ string) ([]byte, error) {
	if f.debugImage == nil {
		return nil, errors.New("object not found")
	}
	return f.debugImage, nil
}

func (f *fakeS3) PresignUrl(fileUrl string) (string, error) { return fileUrl, nil }

func (f *fakeS3) DeleteFile(_ string) error { return nil }

type fakeUtils struct {
	seq int
}

func (f *fakeUtils) NewULIDFromTimestamp(_ time.Time) (string, error) {
	f.seq++
	return fmt.Sprintf("01TEST%010d", f.seq), nil
}

func (f *fakeUtils) ValidateImageFile(_ *multipart.FileHeader) error { return nil }

func (f *fakeUtils) DecodeImage(_ []byte) (image.Image, int, int, error) { return nil, 0, 0, nil }

func (f *fakeUtils) OptimizeImageForDetection(d []byte, _, _, _ int) ([]byte, error) {
	return d, nil
}

type botFixture struct {
	bot     *Bot
	wa      *fakeWhatsappBot
	redis   *fakeRedis
	service *fakeSizingService
	s3      *fakeS3
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.FatalLevel)

	wa := &fakeWhatsappBot{}
	redis := &fakeRedis{store: make(map[string]string)}
	service := &fakeSizingService{
		measurement: entity.SizeMeasurement{
			ID:            "m-1",
			WaistGirthCM:  40.5,
			HipGirthCM:    45.0,
			PantsLengthCM: 90.0,
			SizeLabel:     "46 (M46)",
			DebugImageURL: "https://bucket.s3.amazonaws.com/whatsapp/628123/m-1-debug.jpg",
		},
	}
	s3Fake := &fakeS3{debugImage: []byte("overlay-bytes")}

	return &botFixture{
		bot:     New(log, wa, redis, service, s3Fake, &fakeUtils{}),
		wa:      wa,
		redis:   redis,
		service: service,
		s3:      s3Fake,
	}
}

func (f *botFixture) lastText(t *testing.T) sentText {
	t.Helper()
	require.NotEmpty(t, f.wa.texts)
	return f.wa.texts[len(f.wa.texts)-1]
}

func TestHandleMessageSendsInstructions(t *testing.T) {
	f := newBotFixture(t)

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", Text: "/start"})

	reply := f.lastText(t)
	assert.Equal(t, "628123", reply.recipient)
	assert.Contains(t, reply.text, "full-body frontal photo")
	assert.Contains(t, reply.text, "height in cm")
}

func TestHandlePhotoStoresSessionAndPrompts(t *testing.T) {
	f := newBotFixture(t)
	photo := []byte("jpeg-bytes")

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", ImageData: photo})

	reply := f.lastText(t)
	assert.Contains(t, reply.text, "height in cm")

	require.Len(t, f.s3.uploads, 1)
	for key := range f.s3.uploads {
		assert.Contains(t, key, "wa/628123/")
	}

	payload, ok := f.redis.store[sessionKeyPrefix+"628123"]
	require.True(t, ok)

	var session entity.FitSession
	require.NoError(t, json.Unmarshal([]byte(payload), &session))
	assert.Equal(t, entity.FitSessionStateWaitingHeight, session.State)
	assert.Equal(t, "628123", session.Sender)

	stored, err := base64.StdEncoding.DecodeString(session.PhotoBase64)
	require.NoError(t, err)
	assert.Equal(t, photo, stored)
}

func TestHandleHeightRunsEstimation(t *testing.T) {
	f := newBotFixture(t)
	t.Setenv("SHOP_URL", "https://shop.example.com/pants")
	photo := []byte("jpeg-bytes")

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", ImageData: photo})
	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", Text: "175 cm"})

	require.Len(t, f.service.inputs, 1)
	input := f.service.inputs[0]
	assert.Equal(t, photo, input.ImageData)
	assert.Equal(t, 175, input.HeightCM)
	assert.Equal(t, "628123", input.Subject)
	assert.Equal(t, string(entity.MeasurementSourceWhatsapp), input.Source)
	assert.Contains(t, input.PhotoURL, "wa/628123/")

	reply := f.lastText(t)
	assert.Contains(t, reply.text, "Waist: 40.5 cm")
	assert.Contains(t, reply.text, "Hips: 45.0 cm")
	assert.Contains(t, reply.text, "Pants length: 90.0 cm")
	assert.Contains(t, reply.text, "46 (M46)")
	assert.Contains(t, reply.text, "https://shop.example.com/pants")

	require.Len(t, f.wa.images, 1)
	assert.Equal(t, []byte("overlay-bytes"), f.wa.images[0].data)

	_, ok := f.redis.store[sessionKeyPrefix+"628123"]
	assert.False(t, ok, "session should be cleared after estimation")
}

func TestHandleHeightRePromptsOnNonNumeric(t *testing.T) {
	f := newBotFixture(t)

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", ImageData: []byte("jpeg")})
	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", Text: "pretty tall"})

	reply := f.lastText(t)
	assert.Contains(t, reply.text, "could not read a height")
	assert.Empty(t, f.service.inputs)

	_, ok := f.redis.store[sessionKeyPrefix+"628123"]
	assert.True(t, ok, "session should survive a re-prompt")
}

func TestHandleHeightOutOfRange(t *testing.T) {
	f := newBotFixture(t)

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", ImageData: []byte("jpeg")})
	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", Text: "999"})

	reply := f.lastText(t)
	assert.Contains(t, reply.text, "height looks odd")
	assert.Empty(t, f.service.inputs)

	_, ok := f.redis.store[sessionKeyPrefix+"628123"]
	assert.True(t, ok, "session should survive a re-prompt")
}

func TestHandleEstimationFailure(t *testing.T) {
	f := newBotFixture(t)
	f.service.err = sizing.ErrPoseNotFound

	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", ImageData: []byte("jpeg")})
	f.bot.HandleMessage(context.Background(), whatsapp.Message{Sender: "628123", Text: "175"})

	reply := f.lastText(t)
	assert.Contains(t, reply.text, "could not find a full body")
	assert.Empty(t, f.wa.images)

	_, ok := f.redis.store[sessionKeyPrefix+"628123"]
	assert.False(t, ok, "session should be cleared after a failed estimation")
}

func TestRunRegistersHandler(t *testing.T) {
	f := newBotFixture(t)

	f.bot.Run()
	require.NotNil(t, f.wa.handler)

	f.wa.handler(context.Background(), whatsapp.Message{Sender: "628123", Text: "hello"})
	assert.NotEmpty(t, f.wa.texts)
}

func TestExtractHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{name: "BareNumber", text: "175", want: 175, wantOK: true},
		{name: "WithUnit", text: "175 cm", want: 175, wantOK: true},
		{name: "InSentence", text: "I'm 175cm tall", want: 175, wantOK: true},
		{name: "FirstRunWins", text: "175 or 180", want: 175, wantOK: true},
		{name: "NoDigits", text: "pretty tall", wantOK: false},
		{name: "Empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := extractHeight(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
