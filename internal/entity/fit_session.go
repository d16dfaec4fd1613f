package entity

import "time"

type FitSessionState uint8

const (
	FitSessionStateIdle          FitSessionState = 0
	FitSessionStateWaitingHeight FitSessionState = 1
)

var FitSessionStateMap = map[FitSessionState]string{
	FitSessionStateIdle:          "Idle",
	FitSessionStateWaitingHeight: "WaitingHeight",
}

func (s FitSessionState) String() string {
	return FitSessionStateMap[s]
}

func (s FitSessionState) Value() uint8 {
	return uint8(s)
}

type FitSession struct {
	Sender      string          `json:"sender"`
	State       FitSessionState `json:"state"`
	PhotoKey    string          `json:"photo_key"`
	PhotoURL    string          `json:"photo_url"`
	PhotoBase64 string          `json:"photo_base64"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
