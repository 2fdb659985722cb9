package service

import "menuengine/internal/model"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToPlace(placeID string, msgType string, payload interface{})
}

// ResolutionRecorder stores the operational record of a resolution. Record
// must not block the caller.
type ResolutionRecorder interface {
	Record(entry *model.ResolutionLog)
}

// Websocket message types
const (
	MsgMenuReady       = "menu_ready"
	MsgMenuUnavailable = "menu_unavailable"
)
