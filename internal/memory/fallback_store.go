package memory

import (
	"context"

	"github.com/rs/zerolog"
)

// FallbackStore serves every call from primary and switches to secondary for
// that call when primary fails. Writes that land on secondary are not copied
// back once primary recovers.
type FallbackStore struct {
	primary   Store
	secondary Store
	logger    zerolog.Logger
}

func NewFallbackStore(primary, secondary Store, logger zerolog.Logger) *FallbackStore {
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "memory_fallback").Logger(),
	}
}

func (f *FallbackStore) warn(op, sessionID string, err error) {
	f.logger.Warn().Err(err).Str("op", op).Str("session_id", sessionID).Msg("primary store failed, using fallback")
}

func (f *FallbackStore) LoadSession(ctx context.Context, sessionID string) (*SessionData, error) {
	s, err := f.primary.LoadSession(ctx, sessionID)
	if err == nil {
		return s, nil
	}
	f.warn("load_session", sessionID, err)
	return f.secondary.LoadSession(ctx, sessionID)
}

func (f *FallbackStore) SaveMessage(ctx context.Context, sessionID, userID string, msg Message) error {
	err := f.primary.SaveMessage(ctx, sessionID, userID, msg)
	if err == nil {
		return nil
	}
	f.warn("save_message", sessionID, err)
	return f.secondary.SaveMessage(ctx, sessionID, userID, msg)
}

// ClearSession clears both stores so a stale fallback copy cannot resurface.
func (f *FallbackStore) ClearSession(ctx context.Context, sessionID string) error {
	err := f.primary.ClearSession(ctx, sessionID)
	if err != nil {
		f.warn("clear_session", sessionID, err)
	}
	return f.secondary.ClearSession(ctx, sessionID)
}

func (f *FallbackStore) UpdateActivity(ctx context.Context, sessionID string) error {
	err := f.primary.UpdateActivity(ctx, sessionID)
	if err == nil {
		return nil
	}
	f.warn("update_activity", sessionID, err)
	return f.secondary.UpdateActivity(ctx, sessionID)
}

func (f *FallbackStore) LoadState(ctx context.Context, sessionID string) (*State, error) {
	st, err := f.primary.LoadState(ctx, sessionID)
	if err == nil {
		return st, nil
	}
	f.warn("load_state", sessionID, err)
	return f.secondary.LoadState(ctx, sessionID)
}

func (f *FallbackStore) SaveState(ctx context.Context, sessionID string, state *State) error {
	err := f.primary.SaveState(ctx, sessionID, state)
	if err == nil {
		return nil
	}
	f.warn("save_state", sessionID, err)
	return f.secondary.SaveState(ctx, sessionID, state)
}

func (f *FallbackStore) Close() error {
	if closer, ok := f.primary.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
