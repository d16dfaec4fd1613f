package bot

import (
	"TailorGolang/internal/api/sizing"
	sizingService "TailorGolang/internal/api/sizing/service"
	"TailorGolang/internal/entity"
	redisPkg "TailorGolang/pkg/redis"
	"TailorGolang/pkg/s3"
	"TailorGolang/pkg/utils"
	"TailorGolang/pkg/whatsapp"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix = "fit_session:"
	sessionTTL       = 30 * time.Minute
)

const instructionsText = `Hi! I can estimate your clothing size from a photo.
1. Send a full-body frontal photo, head to feet visible.
2. Then send your height in cm (for example: 175).`

type Bot struct {
	log           *logrus.Logger
	whatsappBot   whatsapp.IWhatsappBot
	redis         redisPkg.IRedis
	sizingService sizingService.ISizingService
	s3            s3.ItfS3
	utils         utils.IUtils
}

func New(
	log *logrus.Logger,
	whatsappBot whatsapp.IWhatsappBot,
	redis redisPkg.IRedis,
	ss sizingService.ISizingService,
	s3 s3.ItfS3,
	utils utils.IUtils,
) *Bot {
	return &Bot{
		log:           log,
		whatsappBot:   whatsappBot,
		redis:         redis,
		sizingService: ss,
		s3:            s3,
		utils:         utils,
	}
}

// Run registers the bot as the WhatsApp message handler. Incoming messages
// are dispatched on their own goroutines by the transport layer.
func (b *Bot) Run() {
	b.whatsappBot.OnMessage(b.HandleMessage)
	b.log.Info("WhatsApp sizing bot registered")
}

func (b *Bot) HandleMessage(ctx context.Context, msg whatsapp.Message) {
	if len(msg.ImageData) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.handleText(ctx, msg)
}

func (b *Bot) handlePhoto(ctx context.Context, msg whatsapp.Message) {
	b.log.WithFields(logrus.Fields{
		"sender":     msg.Sender,
		"image_size": len(msg.ImageData),
	}).Info("Received photo from WhatsApp")

	id, err := b.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"sender": msg.Sender,
			"error":  err.Error(),
		}).Error("Failed to generate photo ID")
		b.reply(ctx, msg.Sender, "Sorry, something went wrong. Please send your photo again.")
		return
	}

	key := fmt.Sprintf("wa/%s/%s.jpg", msg.Sender, id)
	photoURL, err := b.s3.UploadBytes(key, msg.ImageData, "image/jpeg")
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"sender": msg.Sender,
			"error":  err.Error(),
		}).Error("Failed to upload WhatsApp photo")
		b.reply(ctx, msg.Sender, "Sorry, I could not store your photo. Please try sending it again.")
		return
	}

	session := entity.FitSession{
		Sender:      msg.Sender,
		State:       entity.FitSessionStateWaitingHeight,
		PhotoKey:    key,
		PhotoURL:    photoURL,
		PhotoBase64: base64.StdEncoding.EncodeToString(msg.ImageData),
		UpdatedAt:   time.Now(),
	}

	if err := b.saveSession(ctx, session); err != nil {
		b.log.WithFields(logrus.Fields{
			"sender": msg.Sender,
			"error":  err.Error(),
		}).Error("Failed to save fit session")
		b.reply(ctx, msg.Sender, "Sorry, something went wrong. Please send your photo again.")
		return
	}

	b.reply(ctx, msg.Sender, "Got the photo! Now send me your height in cm (for example: 175).")
}

func (b *Bot) handleText(ctx context.Context, msg whatsapp.Message) {
	session, err := b.getSession(ctx, msg.Sender)
	if err != nil || session.State != entity.FitSessionStateWaitingHeight {
		b.reply(ctx, msg.Sender, instructionsText)
		return
	}

	heightCM, ok := extractHeight(msg.Text)
	if !ok {
		b.reply(ctx, msg.Sender, "I could not read a height from that. Send just the number in cm, for example: 175.")
		return
	}

	if !entity.IsValidSubjectHeight(heightCM) {
		b.reply(ctx, msg.Sender, fmt.Sprintf(
			"That height looks odd. Please send a value between %d and %d cm.",
			entity.MinSubjectHeightCM, entity.MaxSubjectHeightCM))
		return
	}

	imageData, err := base64.StdEncoding.DecodeString(session.PhotoBase64)
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"sender": msg.Sender,
			"error":  err.Error(),
		}).Error("Failed to decode stored photo")
		b.clearSession(ctx, msg.Sender)
		b.reply(ctx, msg.Sender, "Something went wrong with your photo. Please send it again.")
		return
	}

	measurement, _, _, err := b.sizingService.EstimateFromImage(ctx, sizing.EstimateInput{
		ImageData: imageData,
		HeightCM:  heightCM,
		Subject:   msg.Sender,
		Source:    string(entity.MeasurementSourceWhatsapp),
		PhotoURL:  session.PhotoURL,
	})
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"sender":    msg.Sender,
			"height_cm": heightCM,
			"error":     err.Error(),
		}).Warn("Estimation failed for WhatsApp photo")
		b.clearSession(ctx, msg.Sender)
		b.reply(ctx, msg.Sender, estimationReplyForError(err))
		return
	}

	b.clearSession(ctx, msg.Sender)

	b.log.WithFields(logrus.Fields{
		"sender":      msg.Sender,
		"measurement": measurement.ID,
		"size_label":  measurement.SizeLabel,
	}).Info("Sent size recommendation over WhatsApp")

	b.reply(ctx, msg.Sender, formatMeasurementReply(measurement))
	b.sendDebugOverlay(ctx, msg.Sender, measurement.DebugImageURL)
}

func (b *Bot) sendDebugOverlay(ctx context.Context, recipient string, debugImageURL string) {
	if debugImageURL == "" {
		return
	}

	imageData, err := b.s3.DownloadBytes(debugImageURL)
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"recipient": recipient,
			"error":     err.Error(),
		}).Warn("Failed to download debug overlay")
		return
	}

	if err := b.whatsappBot.SendImage(ctx, recipient, "Here is how I measured you.", imageData); err != nil {
		b.log.WithFields(logrus.Fields{
			"recipient": recipient,
			"error":     err.Error(),
		}).Warn("Failed to send debug overlay")
	}
}

func (b *Bot) reply(ctx context.Context, recipient string, text string) {
	if err := b.whatsappBot.SendText(ctx, recipient, text); err != nil {
		b.log.WithFields(logrus.Fields{
			"recipient": recipient,
			"error":     err.Error(),
		}).Error("Failed to send WhatsApp reply")
	}
}

func (b *Bot) saveSession(ctx context.Context, session entity.FitSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return b.redis.SetSession(ctx, sessionKeyPrefix+session.Sender, string(payload), sessionTTL)
}

func (b *Bot) getSession(ctx context.Context, sender string) (entity.FitSession, error) {
	payload, err := b.redis.GetSession(ctx, sessionKeyPrefix+sender)
	if err != nil {
		return entity.FitSession{}, err
	}

	var session entity.FitSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return entity.FitSession{}, err
	}

	return session, nil
}

func (b *Bot) clearSession(ctx context.Context, sender string) {
	if err := b.redis.DeleteSession(ctx, sessionKeyPrefix+sender); err != nil {
		b.log.WithFields(logrus.Fields{
			"sender": sender,
			"error":  err.Error(),
		}).Warn("Failed to clear fit session")
	}
}

// extractHeight pulls the first run of digits out of a chat message, so
// "175", "175 cm" and "I'm 175cm tall" all parse.
func extractHeight(text string) (int, bool) {
	var digits strings.Builder
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
			continue
		}
		if digits.Len() > 0 {
			break
		}
	}

	if digits.Len() == 0 {
		return 0, false
	}

	heightCM, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}

	return heightCM, true
}

func formatMeasurementReply(measurement entity.SizeMeasurement) string {
	var sb strings.Builder
	sb.WriteString("Here are your measurements:\n")
	sb.WriteString(fmt.Sprintf("Waist: %.1f cm\n", measurement.WaistGirthCM))
	sb.WriteString(fmt.Sprintf("Hips: %.1f cm\n", measurement.HipGirthCM))
	sb.WriteString(fmt.Sprintf("Pants length: %.1f cm\n", measurement.PantsLengthCM))
	sb.WriteString(fmt.Sprintf("Recommended size: %s", measurement.SizeLabel))

	if shopURL := os.Getenv("SHOP_URL"); shopURL != "" {
		sb.WriteString(fmt.Sprintf("\n\nFind your size here: %s", shopURL))
	}

	return sb.String()
}

func estimationReplyForError(err error) string {
	switch {
	case errors.Is(err, sizing.ErrPoseNotFound):
		return "I could not find a full body in your photo. Please send a frontal photo showing you from head to feet, then your height again."
	case errors.Is(err, sizing.ErrPoseGeometry):
		return "The pose in the photo confused me. Please stand straight facing the camera with your whole body visible, and try again."
	default:
		return "Sorry, something went wrong while measuring. Please send your photo again."
	}
}
