package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/memory"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
)

const DefaultHistoryWindow = 10

// Manager keeps a langchaingo buffer per session in front of a Store and owns
// the structured conversation state.
type Manager struct {
	store         Store
	logger        zerolog.Logger
	historyWindow int
	defaultUserID string

	mu       sync.Mutex
	sessions map[string]*memory.ConversationBuffer
}

type ManagerOption func(*Manager)

// WithHistoryWindow limits FormattedHistory to the last n messages.
func WithHistoryWindow(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.historyWindow = n
		}
	}
}

func NewManager(store Store, logger zerolog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		logger:        logger.With().Str("component", "memory_manager").Logger(),
		historyWindow: DefaultHistoryWindow,
		defaultUserID: "default_user",
		sessions:      make(map[string]*memory.ConversationBuffer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreateSession returns the cached buffer for a session, loading its
// history from the store on first use.
func (m *Manager) GetOrCreateSession(ctx context.Context, sessionID string) (*memory.ConversationBuffer, error) {
	m.mu.Lock()
	if mem, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return mem, nil
	}
	m.mu.Unlock()

	sessionData, err := m.store.LoadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	mem := memory.NewConversationBuffer()
	for _, msg := range sessionData.Messages {
		var chatMsg schema.ChatMessage
		switch msg.Role {
		case RoleUser:
			chatMsg = schema.HumanChatMessage{Content: msg.Content}
		case RoleAssistant:
			chatMsg = schema.AIChatMessage{Content: msg.Content}
		case RoleSystem:
			chatMsg = schema.SystemChatMessage{Content: msg.Content}
		default:
			m.logger.Warn().Str("role", msg.Role).Str("session_id", sessionID).Msg("unknown message role, skipping")
			continue
		}
		if err := mem.ChatHistory.AddMessage(ctx, chatMsg); err != nil {
			return nil, fmt.Errorf("failed to add message to memory: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[sessionID]; ok {
		return existing, nil
	}
	m.sessions[sessionID] = mem

	m.logger.Debug().Str("session_id", sessionID).Int("messages", len(sessionData.Messages)).Msg("session loaded")
	return mem, nil
}

func (m *Manager) SaveUserMessage(ctx context.Context, sessionID, userID, message string) error {
	return m.saveMessage(ctx, sessionID, userID, RoleUser, message)
}

func (m *Manager) SaveAssistantMessage(ctx context.Context, sessionID, userID, message string) error {
	return m.saveMessage(ctx, sessionID, userID, RoleAssistant, message)
}

func (m *Manager) saveMessage(ctx context.Context, sessionID, userID, role, content string) error {
	mem, err := m.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if userID == "" {
		userID = m.defaultUserID
	}

	m.mu.Lock()
	if role == RoleUser {
		err = mem.ChatHistory.AddUserMessage(ctx, content)
	} else {
		err = mem.ChatHistory.AddAIMessage(ctx, content)
	}
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to add %s message to memory: %w", role, err)
	}

	msg := Message{Role: role, Content: content, Timestamp: time.Now()}
	if err := m.store.SaveMessage(ctx, sessionID, userID, msg); err != nil {
		return fmt.Errorf("failed to persist %s message: %w", role, err)
	}
	return nil
}

// FormattedHistory renders the last messages of the session for a prompt.
// It returns "" for a session without history.
func (m *Manager) FormattedHistory(ctx context.Context, sessionID string) (string, error) {
	mem, err := m.GetOrCreateSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	messages, err := mem.ChatHistory.Messages(ctx)
	m.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to get messages: %w", err)
	}

	if len(messages) > m.historyWindow {
		messages = messages[len(messages)-m.historyWindow:]
	}

	var b strings.Builder
	for _, msg := range messages {
		switch cm := msg.(type) {
		case schema.HumanChatMessage:
			fmt.Fprintf(&b, "Usuário: %s\n", cm.Content)
		case schema.AIChatMessage:
			fmt.Fprintf(&b, "Assistente: %s\n", cm.Content)
		case schema.SystemChatMessage:
			fmt.Fprintf(&b, "Sistema: %s\n", cm.Content)
		}
	}
	return b.String(), nil
}

// State returns the structured state, or nil when none was recorded.
func (m *Manager) State(ctx context.Context, sessionID string) (*State, error) {
	return m.store.LoadState(ctx, sessionID)
}

// GetStructuredState returns the state as JSON. Store failures are logged and
// reported as absent state.
func (m *Manager) GetStructuredState(ctx context.Context, sessionID string) (string, bool) {
	st, err := m.store.LoadState(ctx, sessionID)
	if err != nil {
		m.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to load structured state")
		return "", false
	}
	if st == nil {
		return "", false
	}
	data, err := json.Marshal(st)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Remember records the client, period and domain of an analysis as the
// current conversation reference. Fields the analysis leaves at their
// defaults keep their previous value.
func (m *Manager) Remember(ctx context.Context, sessionID string, a analyzer.QueryAnalysis) (*State, error) {
	st, err := m.store.LoadState(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if st == nil {
		st = &State{}
	}

	ref := &st.Referencia
	if a.Client != nil {
		ref.ClienteAtual = a.Client.CanonicalName
	}
	if a.Period.Kind != analyzer.PeriodDefault {
		days := a.Period.Days
		ref.Periodo = a.Period.Description
		ref.PeriodoDias = &days
		ref.PeriodoTipo = string(a.Period.Kind)
	}
	ref.Dominio = string(a.Domain)
	ref.AtualizadoEm = time.Now().UTC()

	if err := m.store.SaveState(ctx, sessionID, st); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	return st, nil
}

// ClearSession drops the cached buffer and the stored session.
func (m *Manager) ClearSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if err := m.store.ClearSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.logger.Info().Str("session_id", sessionID).Msg("session cleared")
	return nil
}

// UpdateActivity marks the session as active and extends its expiry.
func (m *Manager) UpdateActivity(ctx context.Context, sessionID string) error {
	return m.store.UpdateActivity(ctx, sessionID)
}

// ActiveSessionCount returns the number of cached buffers.
func (m *Manager) ActiveSessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Close() error {
	if closer, ok := m.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
