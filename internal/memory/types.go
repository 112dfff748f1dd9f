package memory

import (
	"context"
	"errors"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ErrStoreUnavailable is returned by stores that cannot reach their backend.
var ErrStoreUnavailable = errors.New("memory store unavailable")

// Message represents a single message in a conversation
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionData represents all data for a conversation session
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Messages  []Message `json:"messages"`
	Metadata  Metadata  `json:"metadata"`
}

// Metadata contains session information
type Metadata struct {
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
}

// Reference is what the conversation is currently about. It carries over
// to later turns that do not name a client or period of their own.
type Reference struct {
	ClienteAtual string    `json:"cliente_atual,omitempty"`
	Periodo      string    `json:"periodo,omitempty"`
	PeriodoDias  *int      `json:"periodo_dias,omitempty"`
	PeriodoTipo  string    `json:"periodo_tipo,omitempty"`
	Dominio      string    `json:"dominio,omitempty"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// State is the structured conversation state, serialized as JSON under the
// REFERENCIA key.
type State struct {
	Referencia Reference `json:"REFERENCIA"`
}

// Store defines the interface for conversation storage.
type Store interface {
	LoadSession(ctx context.Context, sessionID string) (*SessionData, error)
	SaveMessage(ctx context.Context, sessionID, userID string, msg Message) error
	ClearSession(ctx context.Context, sessionID string) error
	UpdateActivity(ctx context.Context, sessionID string) error

	// LoadState returns nil, nil when the session has no state yet.
	LoadState(ctx context.Context, sessionID string) (*State, error)
	SaveState(ctx context.Context, sessionID string, state *State) error
}

func newSession(sessionID string, now time.Time) *SessionData {
	return &SessionData{
		SessionID: sessionID,
		Messages:  []Message{},
		Metadata: Metadata{
			StartedAt:    now,
			LastActivity: now,
		},
	}
}

// appendMessage applies the bookkeeping shared by every store.
func appendMessage(session *SessionData, userID string, msg Message, now time.Time) {
	if session.UserID == "" {
		session.UserID = userID
	}
	session.Messages = append(session.Messages, msg)
	session.Metadata.LastActivity = now
	session.Metadata.MessageCount = len(session.Messages)
	if session.Metadata.MessageCount == 1 {
		session.Metadata.StartedAt = msg.Timestamp
	}
}
