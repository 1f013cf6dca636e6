package ws

// Event types pushed over the live channel. Server-to-client unless noted.
const (
	EventNewMessage      = "newMessage"
	EventUserOnline      = "userOnline"
	EventUserOffline     = "userOffline"
	EventRequestReceived = "requestReceived"
	EventTyping          = "typing" // also client-to-server
	EventMessage         = "message" // client-to-server
	EventMessageAck      = "messageAck"
	EventMessageError    = "messageError"
	EventError           = "error"
)

// Event is the wire envelope for every frame on the channel.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
