package service

// Notifier pushes real-time events to a user's active channel sessions.
// Delivery is best-effort: Emit reports false when the user is offline and
// the event was dropped. The ws hub is the production implementation; tests
// inject a fake.
type Notifier interface {
	Emit(userID int64, event string, payload any) bool
	Online(userID int64) bool
}

// Event names emitted by services. The channel layer owns the presence and
// typing events; these are the store-backed ones.
const (
	eventNewMessage      = "newMessage"
	eventRequestReceived = "requestReceived"
)
