package api

import "time"

// Message is the message-passing form of a control operation.
type Message struct {
	Type  string `json:"type"`
	Input string `json:"input,omitempty"`
}

// Message types accepted by POST /v1/messages.
const (
	MessageGet      = "get"
	MessageGetTimer = "get_timer"
	MessageSetInput = "set_input"
	MessageStart    = "start"
	MessagePause    = "pause"
	MessageReset    = "reset"
)

// InputRequest is the body of PUT /v1/timer/input.
type InputRequest struct {
	Input string `json:"input"`
}

// PresetRequest is the body of POST /v1/presets.
type PresetRequest struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
	Color    string `json:"color,omitempty"`
}

// ChangeEvent is pushed to websocket observers. It carries no diff.
type ChangeEvent struct {
	Type string    `json:"type"`
	Key  string    `json:"key"`
	At   time.Time `json:"at"`
}

// EventChanged is the only ChangeEvent type.
const EventChanged = "changed"

// GenericStatus is returned by the health check.
type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}
