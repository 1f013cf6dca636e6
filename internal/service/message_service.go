package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"devconnect/internal/content"
	"devconnect/internal/domain"
	"devconnect/internal/security"
)

// ConnectionChecker answers whether two users hold an accepted connection.
// *ConnectionService is the production implementation.
type ConnectionChecker interface {
	IsConnected(ctx context.Context, userA, userB int64) (bool, error)
}

// MessageService handles direct messages between connected users. Content is
// encrypted at rest and decrypted on read.
type MessageService struct {
	messages    domain.MessageRepository
	users       domain.UserRepository
	connections ConnectionChecker
	encryptor   *security.Encryptor
	notifier    Notifier

	historyLimit    int
	maxContentRunes int
}

func NewMessageService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	connections ConnectionChecker,
	encryptor *security.Encryptor,
	notifier Notifier,
	historyLimit int,
	maxContentRunes int,
) *MessageService {
	return &MessageService{
		messages:        messages,
		users:           users,
		connections:     connections,
		encryptor:       encryptor,
		notifier:        notifier,
		historyLimit:    historyLimit,
		maxContentRunes: maxContentRunes,
	}
}

// MessageResponse is a decrypted message ready for clients.
type MessageResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	RecipientID int64     `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Send validates, persists and fans out a direct message. The recipient must
// be an accepted connection of the sender.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID int64, text string) (*MessageResponse, error) {
	if senderID == recipientID {
		return nil, domain.ErrInvalidTarget
	}

	text = content.Sanitize(text)
	if text == "" {
		return nil, domain.ErrEmptyContent
	}
	if s.maxContentRunes > 0 && utf8.RuneCountInString(text) > s.maxContentRunes {
		return nil, fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, s.maxContentRunes)
	}

	connected, err := s.connections.IsConnected(ctx, senderID, recipientID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		return nil, domain.ErrNotConnected
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("get sender: %w", err)
	}
	if sender == nil || !sender.IsActive {
		return nil, domain.ErrUnauthorized
	}

	encrypted, err := s.encryptor.Encrypt(text)
	if err != nil {
		return nil, fmt.Errorf("encrypt message: %w", err)
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     encrypted,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	resp := &MessageResponse{
		ID:          msg.ID,
		SenderID:    senderID,
		SenderName:  sender.Name,
		RecipientID: recipientID,
		Content:     text,
		CreatedAt:   msg.CreatedAt,
	}
	s.notifier.Emit(recipientID, eventNewMessage, resp)
	return resp, nil
}

// History returns the most recent messages between the user and a connected
// peer, oldest first. The connection gate applies to reading too: history of
// a removed connection stays stored but is not served until the pair
// reconnects.
func (s *MessageService) History(ctx context.Context, userID, peerID int64) ([]*MessageResponse, error) {
	connected, err := s.connections.IsConnected(ctx, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("check connection: %w", err)
	}
	if !connected {
		return nil, domain.ErrNotConnected
	}

	msgs, err := s.messages.ListBetween(ctx, userID, peerID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	names, err := s.senderNames(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}

	// Repo returns newest first; clients want chronological order.
	res := make([]*MessageResponse, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		plain, err := s.encryptor.Decrypt(m.Content)
		if err != nil {
			return nil, fmt.Errorf("decrypt message %d: %w", m.ID, err)
		}
		res = append(res, &MessageResponse{
			ID:          m.ID,
			SenderID:    m.SenderID,
			SenderName:  names[m.SenderID],
			RecipientID: m.RecipientID,
			Content:     plain,
			CreatedAt:   m.CreatedAt,
		})
	}
	return res, nil
}

func (s *MessageService) senderNames(ctx context.Context, ids ...int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get user %d: %w", id, err)
		}
		if u != nil {
			names[id] = u.Name
		}
	}
	return names, nil
}
