package preview

import (
	"github.com/gorilla/websocket"

	"github.com/loom-ui/loom/pkg/host"
)

// Frame types sent from server to client.
const (
	FrameInit  = "init"
	FramePatch = "patch"
	FrameError = "error"
)

// Frame is one server-to-client message.
type Frame struct {
	Type      string          `json:"type"`
	HTML      string          `json:"html,omitempty"`
	Mutations []host.Mutation `json:"mutations,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// EventFrame is one client-to-server message: a browser event addressed to
// a host node by its annotated identifier.
type EventFrame struct {
	Node  uint64 `json:"node"`
	Event string `json:"event"`
	Value string `json:"value,omitempty"`
}

// FrameWriter delivers frames to one connected client. Sessions write
// through this interface so tests can capture frames without a socket.
type FrameWriter interface {
	WriteFrame(Frame) error
}

// wsWriter adapts a websocket connection to FrameWriter.
type wsWriter struct {
	conn *websocket.Conn
}

func (w wsWriter) WriteFrame(f Frame) error {
	return w.conn.WriteJSON(f)
}
