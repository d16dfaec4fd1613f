package sizingHandler

import (
	"TailorGolang/internal/entity"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/websocket/v2"
)

func (h *SizingHandler) handleLiveWebSocket(c *websocket.Conn) {
	h.log.Info("Live sizing WebSocket client connected")
	defer h.log.Info("Live sizing WebSocket client disconnected")

	heightCM, err := strconv.Atoi(c.Query("height_cm"))
	if err != nil || !entity.IsValidSubjectHeight(heightCM) {
		message := fmt.Sprintf("height_cm query parameter must be an integer between %d and %d",
			entity.MinSubjectHeightCM, entity.MaxSubjectHeightCM)
		if writeErr := c.WriteJSON(map[string]string{"error": message}); writeErr != nil {
			h.log.Errorf("Error sending error response: %v", writeErr)
		}
		return
	}

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	maxReadTimeout := 60 * time.Second

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Errorf("Live sizing WebSocket error: %v", err)
			} else {
				h.log.Info("Live sizing WebSocket connection closed")
			}
			break
		}

		if messageType == websocket.BinaryMessage {
			result, err := h.sizingService.DetectAndMeasure(message, heightCM)

			if err != nil {
				h.log.Errorf("Error processing sizing frame: %v", err)
				if writeErr := c.WriteJSON(map[string]string{"error": err.Error()}); writeErr != nil {
					h.log.Errorf("Error sending error response: %v", writeErr)
					break
				}
				continue
			}

			if err := c.SetWriteDeadline(time.Now().Add(10 * time.Second)); err != nil {
				h.log.Errorf("Error setting write deadline: %v", err)
				break
			}

			if err := c.WriteJSON(result); err != nil {
				h.log.Errorf("Error writing JSON response: %v", err)
				break
			}

			if err := c.SetWriteDeadline(time.Time{}); err != nil {
				h.log.Errorf("Error resetting write deadline: %v", err)
				break
			}
		} else {
			h.log.Warnf("Received unexpected message type: %d", messageType)
		}
	}
}
