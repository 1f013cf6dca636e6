package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"devconnect/internal/domain"
	"devconnect/internal/security"
	"devconnect/internal/service"
)

type wsAuthError struct {
	status int
	msg    string
}

func (e wsAuthError) Error() string {
	return e.msg
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) (string, error) {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("Bearer "):])
		if token != "" {
			return token, nil
		}
	}

	// Browsers cannot set Authorization on WebSocket upgrades, so the token
	// may ride in as a subprotocol: Sec-WebSocket-Protocol: bearer, <token>.
	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") {
			token := parts[1]
			if token != "" {
				return token, nil
			}
		}
	}

	return "", wsAuthError{status: http.StatusUnauthorized, msg: "missing bearer token"}
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type messagePayload struct {
	RecipientID int64  `json:"recipient_id"`
	Content     string `json:"content"`
	TempID      string `json:"temp_id"`
}

type typingPayload struct {
	RecipientID int64 `json:"recipient_id"`
}

type presencePayload struct {
	UserID int64 `json:"user_id"`
}

type ackPayload struct {
	TempID  string `json:"temp_id"`
	Message any    `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// MakeHandler returns the HTTP handler for the /ws endpoint. It
// authenticates the upgrade via Bearer token, binds the session into the
// presence hub, announces userOnline/userOffline to the user's connected
// peers, and dispatches inbound events:
//   - message -> persist via the message service, ack on the sending session
//   - typing  -> forward to the peer if the pair is connected
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	connSvc *service.ConnectionService,
	msgSvc *service.MessageService,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr, err := extractTokenFromWSRequest(r)
		if err != nil {
			if authErr, ok := err.(wsAuthError); ok {
				http.Error(w, authErr.msg, authErr.status)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByID(ctx, userID)
		if err != nil || user == nil || !user.IsActive {
			http.Error(w, "user not found or inactive", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		session := NewSession(user.ID, conn)
		go session.WritePump()

		if cameOnline := hub.Bind(session); cameOnline {
			broadcastPresence(ctx, hub, connSvc, user.ID, EventUserOnline)
		}
		if err := users.TouchLastSeen(ctx, user.ID); err != nil {
			log.Printf("ws: touch last seen for %d: %v", user.ID, err)
		}

		defer func() {
			wentOffline := hub.Unbind(session)
			session.Close()
			// Presence cleanup must not depend on the request context, which
			// is already done once the client is gone.
			bg := context.Background()
			if wentOffline {
				broadcastPresence(bg, hub, connSvc, user.ID, EventUserOffline)
			}
			if err := users.TouchLastSeen(bg, user.ID); err != nil {
				log.Printf("ws: touch last seen for %d: %v", user.ID, err)
			}
		}()

		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
					log.Printf("ws: read for user %d: %v", user.ID, err)
				}
				break
			}

			var frame inboundFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				session.queue(Event{Type: EventError, Payload: map[string]string{"error": "invalid frame"}})
				continue
			}

			switch frame.Type {

			case EventMessage:
				var p messagePayload
				if err := json.Unmarshal(frame.Payload, &p); err != nil || p.RecipientID == 0 {
					session.queue(Event{Type: EventError, Payload: map[string]string{"error": "message requires recipient_id and content"}})
					continue
				}
				msg, err := msgSvc.Send(ctx, user.ID, p.RecipientID, p.Content)
				if err != nil {
					session.queue(Event{Type: EventMessageError, Payload: ackPayload{TempID: p.TempID, Error: err.Error()}})
					continue
				}
				session.queue(Event{Type: EventMessageAck, Payload: ackPayload{TempID: p.TempID, Message: msg}})

			case EventTyping:
				var p typingPayload
				if err := json.Unmarshal(frame.Payload, &p); err != nil || p.RecipientID == 0 {
					continue
				}
				connected, err := connSvc.IsConnected(ctx, user.ID, p.RecipientID)
				if err != nil || !connected {
					continue
				}
				hub.Emit(p.RecipientID, EventTyping, map[string]any{
					"user_id": user.ID,
					"name":    user.Name,
				})

			default:
				log.Printf("ws: unknown event type %q from user %d", frame.Type, user.ID)
			}
		}
	}
}

// broadcastPresence fans a presence transition out to the user's connected
// peers only; presence is scoped to the connection graph, never global.
func broadcastPresence(ctx context.Context, hub *Hub, connSvc *service.ConnectionService, userID int64, eventType string) {
	peers, err := connSvc.PeerIDs(ctx, userID)
	if err != nil {
		log.Printf("ws: list peers for %d: %v", userID, err)
		return
	}
	hub.EmitToUsers(peers, eventType, presencePayload{UserID: userID})
}
