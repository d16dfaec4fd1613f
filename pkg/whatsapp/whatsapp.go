package whatsapp

import (
	"TailorGolang/database/postgres"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type Message struct {
	Sender    string
	Text      string
	ImageData []byte
}

type MessageHandler func(ctx context.Context, msg Message)

type IWhatsappBot interface {
	SendText(ctx context.Context, recipient string, text string) error
	SendImage(ctx context.Context, recipient string, caption string, imageData []byte) error
	OnMessage(handler MessageHandler)
	Disconnect() error
	IsConnected() bool
}

type whatsappBot struct {
	client  *whatsmeow.Client
	mu      sync.RWMutex
	handler MessageHandler
}

func New() (IWhatsappBot, error) {
	ctx := context.Background()
	dsn := postgres.FormatDSN()

	dbLog := waLog.Stdout("Database", "INFO", true)
	container, err := sqlstore.New(ctx, "postgres", dsn, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device store: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	bot := &whatsappBot{
		client: client,
	}

	connected := make(chan bool, 1)
	client.AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Connected:
			select {
			case connected <- true:
			default:
			}
		case *events.Message:
			bot.handleMessage(v)
		}
	})

	if client.Store.ID == nil {
		qrChan, _ := client.GetQRChannel(ctx)
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					fmt.Println("QR Code:", evt.Code)
				}
			}
		}()
	} else {
		if err := client.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
	}

	select {
	case <-connected:
		fmt.Println("WhatsApp connected")
	case <-time.After(60 * time.Second):
		return nil, fmt.Errorf("connection timeout")
	}

	return bot, nil
}

func (w *whatsappBot) OnMessage(handler MessageHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handler = handler
}

func (w *whatsappBot) handleMessage(evt *events.Message) {
	if evt.Info.IsFromMe || evt.Info.IsGroup {
		return
	}

	w.mu.RLock()
	handler := w.handler
	w.mu.RUnlock()

	if handler == nil {
		return
	}

	msg := Message{
		Sender: evt.Info.Sender.User,
		Text:   evt.Message.GetConversation(),
	}

	if msg.Text == "" {
		msg.Text = evt.Message.GetExtendedTextMessage().GetText()
	}

	ctx := context.Background()

	if img := evt.Message.GetImageMessage(); img != nil {
		data, err := w.client.Download(ctx, img)
		if err != nil {
			fmt.Printf("Failed to download image from %s: %v\n", msg.Sender, err)
			return
		}
		msg.ImageData = data
		if msg.Text == "" {
			msg.Text = img.GetCaption()
		}
	}

	go handler(ctx, msg)
}

func (w *whatsappBot) SendText(ctx context.Context, recipient string, text string) error {
	jid := types.NewJID(recipient, types.DefaultUserServer)

	waMsg := &waE2E.Message{
		Conversation: proto.String(text),
	}

	_, err := w.client.SendMessage(ctx, jid, waMsg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (w *whatsappBot) SendImage(ctx context.Context, recipient string, caption string, imageData []byte) error {
	jid := types.NewJID(recipient, types.DefaultUserServer)

	uploaded, err := w.client.Upload(ctx, imageData, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("failed to upload image: %w", err)
	}

	imageMsg := &waE2E.ImageMessage{
		Caption:       proto.String(caption),
		Mimetype:      proto.String("image/jpeg"),
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		MediaKey:      uploaded.MediaKey,
		FileEncSHA256: uploaded.FileEncSHA256,
		FileSHA256:    uploaded.FileSHA256,
		FileLength:    proto.Uint64(uploaded.FileLength),
	}

	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{ImageMessage: imageMsg})
	if err != nil {
		return fmt.Errorf("failed to send image: %w", err)
	}

	return nil
}

func (w *whatsappBot) Disconnect() error {
	w.client.Disconnect()
	return nil
}

func (w *whatsappBot) IsConnected() bool {
	return w.client.IsConnected()
}
