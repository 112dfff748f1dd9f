package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/llm"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/loader"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/mapper"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/memory"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/models"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/observability"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/prompts"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
)

const (
	DefaultMaxReprocessAttempts = 2
	DefaultMaxQueryRunes        = 2000
)

// Settings bounds the work done for one turn.
type Settings struct {
	MaxReprocessAttempts int
	MaxQueryRunes        int
}

// Dependencies groups the collaborators of a ChatHandler.
type Dependencies struct {
	Analyzer  *analyzer.Analyzer
	Mapper    *mapper.Mapper
	Loader    loader.Loader
	Generator llm.Generator
	Reviewer  *reviewer.Reviewer
	Memory    *memory.Manager
	Logger    zerolog.Logger
}

// ChatHandler runs one assistant turn: analyze, load, generate, review.
type ChatHandler struct {
	analyzer  *analyzer.Analyzer
	mapper    *mapper.Mapper
	loader    loader.Loader
	generator llm.Generator
	reviewer  *reviewer.Reviewer
	memory    *memory.Manager
	logger    zerolog.Logger
	settings  Settings
	newID     func() string
}

func NewChatHandler(deps Dependencies, settings Settings) *ChatHandler {
	if settings.MaxReprocessAttempts < 0 {
		settings.MaxReprocessAttempts = 0
	}
	if settings.MaxQueryRunes <= 0 {
		settings.MaxQueryRunes = DefaultMaxQueryRunes
	}

	return &ChatHandler{
		analyzer:  deps.Analyzer,
		mapper:    deps.Mapper,
		loader:    deps.Loader,
		generator: deps.Generator,
		reviewer:  deps.Reviewer,
		memory:    deps.Memory,
		logger:    deps.Logger.With().Str("component", "chat_handler").Logger(),
		settings:  settings,
		newID:     uuid.NewString,
	}
}

// ProcessTurn always returns a response. The error, when set, is the cause
// behind an ERROR or FALLBACK status.
func (h *ChatHandler) ProcessTurn(ctx context.Context, req *models.TurnRequest) (*models.TurnResponse, error) {
	turnID := h.newID()

	if err := validateTurn(req); err != nil {
		return errorResponse(req.SessionID, turnID, err), err
	}

	log := observability.WithSession(h.logger, req.SessionID).With().Str("turn_id", turnID).Logger()
	query := truncateRunes(strings.TrimSpace(req.Message), h.settings.MaxQueryRunes)

	analysis := h.analyzer.Analyze(query)
	h.applySticky(ctx, log, req.SessionID, &analysis)

	if _, err := h.memory.Remember(ctx, req.SessionID, analysis); err != nil {
		log.Warn().Err(err).Msg("failed to update conversation state")
	}

	log.Info().
		Str("domain", string(analysis.Domain)).
		Str("query_type", string(analysis.QueryType)).
		Int("period_days", analysis.Period.Days).
		Bool("has_client", analysis.Client != nil).
		Msg("query analyzed")

	history, err := h.memory.FormattedHistory(ctx, req.SessionID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load history")
	}
	mapping := h.mapper.Map(analysis.Domain, query)

	var (
		data     *loader.Context
		answer   string
		result   reviewer.Result
		expected string
		attempts int
	)
	for attempts = 1; ; attempts++ {
		if data == nil {
			data, err = h.loader.Load(ctx, analysis)
			if err != nil {
				err = fmt.Errorf("%w: %w", models.ErrLoaderFailed, err)
				log.Error().Err(err).Msg("data load failed")
				return errorResponse(req.SessionID, turnID, err), err
			}
		}

		prompt := prompts.BuildAnswerPrompt(prompts.PromptInput{
			Query:          query,
			Analysis:       analysis,
			Mapping:        mapping,
			ContextText:    data.Text,
			History:        history,
			ExpectedClient: expected,
		})

		text, err := h.generator.Generate(ctx, prompt)
		if err != nil {
			log.Error().Err(err).Msg("generation failed")
			return h.fallbackResponse(ctx, log, req, turnID, &analysis, err), err
		}

		state, _ := h.memory.GetStructuredState(ctx, req.SessionID)
		result = h.reviewer.Review(reviewer.Request{
			Query:           query,
			Response:        prompts.CleanAnswer(text),
			Context:         data.Text,
			Domain:          string(analysis.Domain),
			StructuredState: state,
		})
		answer = result.FinalText

		log.Info().
			Int("attempt", attempts).
			Str("review", string(result.Metadata().Revisao)).
			Int("issues", len(result.Issues)).
			Bool("corrected", result.WasCorrected).
			Msg("response reviewed")

		if !result.NeedsReprocessing {
			break
		}
		if attempts > h.settings.MaxReprocessAttempts {
			log.Warn().Int("attempts", attempts).Msg("reprocess limit reached, answering with last response")
			break
		}

		expected = reviewer.ExpectedClient(state)
		if analysis.Client == nil || !strings.EqualFold(analysis.Client.CanonicalName, expected) {
			// Fetched for another client: fetch again for the expected one.
			analysis.Client = &analyzer.ClientMatch{CanonicalName: expected}
			data = nil
			log.Info().Str("client", expected).Msg("reloading data for expected client")
			continue
		}
		// Already fetched for the expected client, so the rows naming other
		// clients came from a query that does not filter on it.
		data = loader.ScopeToClient(data, expected)
		log.Info().Str("client", expected).Int("total", data.Total).Msg("context scoped to expected client")
	}

	h.persist(ctx, log, req, answer)

	md := result.Metadata()
	return &models.TurnResponse{
		SessionID: req.SessionID,
		TurnID:    turnID,
		Status:    models.StatusAnswered,
		Answer:    answer,
		Analysis:  &analysis,
		Review:    &md,
		Attempts:  attempts,
	}, nil
}

// Analyze exposes the query analysis on its own.
func (h *ChatHandler) Analyze(query string) analyzer.QueryAnalysis {
	return h.analyzer.Analyze(truncateRunes(query, h.settings.MaxQueryRunes))
}

// Review checks an externally generated answer.
func (h *ChatHandler) Review(req *models.ReviewRequest) (*models.ReviewResponse, error) {
	if strings.TrimSpace(req.Response) == "" {
		return nil, fmt.Errorf("%w: response", models.ErrEmptyMessage)
	}

	result := h.reviewer.Review(reviewer.Request{
		Query:           req.Query,
		Response:        req.Response,
		Context:         req.Context,
		Domain:          req.Domain,
		StructuredState: req.StructuredState,
	})
	return &models.ReviewResponse{FinalText: result.FinalText, Metadata: result.Metadata()}, nil
}

// ClearSession forgets the history and the conversation state of a session.
func (h *ChatHandler) ClearSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return models.ErrMissingSession
	}
	return h.memory.ClearSession(ctx, sessionID)
}

// applySticky fills the client and period from the conversation state when
// the query names none.
func (h *ChatHandler) applySticky(ctx context.Context, log zerolog.Logger, sessionID string, a *analyzer.QueryAnalysis) {
	st, err := h.memory.State(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load conversation state")
		return
	}
	if st == nil {
		return
	}

	ref := st.Referencia
	if a.Client == nil && ref.ClienteAtual != "" {
		a.Client = &analyzer.ClientMatch{CanonicalName: ref.ClienteAtual}
		log.Debug().Str("client", ref.ClienteAtual).Msg("client carried over")
	}
	if a.Period.Kind == analyzer.PeriodDefault && ref.PeriodoDias != nil {
		a.Period = analyzer.Period{
			Days:        *ref.PeriodoDias,
			Description: ref.Periodo,
			Kind:        analyzer.PeriodKind(ref.PeriodoTipo),
		}
		log.Debug().Str("period", ref.Periodo).Msg("period carried over")
	}
}

func (h *ChatHandler) persist(ctx context.Context, log zerolog.Logger, req *models.TurnRequest, answer string) {
	if err := h.memory.SaveUserMessage(ctx, req.SessionID, req.UserID, req.Message); err != nil {
		log.Warn().Err(err).Msg("failed to save user message")
	}
	if err := h.memory.SaveAssistantMessage(ctx, req.SessionID, req.UserID, answer); err != nil {
		log.Warn().Err(err).Msg("failed to save assistant message")
	}
	if err := h.memory.UpdateActivity(ctx, req.SessionID); err != nil {
		log.Warn().Err(err).Msg("failed to update session activity")
	}
}

func (h *ChatHandler) fallbackResponse(ctx context.Context, log zerolog.Logger, req *models.TurnRequest, turnID string, a *analyzer.QueryAnalysis, cause error) *models.TurnResponse {
	h.persist(ctx, log, req, prompts.FallbackMessage)

	code := models.ErrorCode(cause)
	msg := cause.Error()
	return &models.TurnResponse{
		SessionID:    req.SessionID,
		TurnID:       turnID,
		Status:       models.StatusFallback,
		Answer:       prompts.FallbackMessage,
		Analysis:     a,
		ErrorCode:    &code,
		ErrorMessage: &msg,
	}
}

func validateTurn(req *models.TurnRequest) error {
	if req.SessionID == "" {
		return models.ErrMissingSession
	}
	if strings.TrimSpace(req.Message) == "" {
		return models.ErrEmptyMessage
	}
	return nil
}

func errorResponse(sessionID, turnID string, err error) *models.TurnResponse {
	code := models.ErrorCode(err)
	msg := err.Error()
	return &models.TurnResponse{
		SessionID:    sessionID,
		TurnID:       turnID,
		Status:       models.StatusError,
		Answer:       prompts.FallbackMessage,
		ErrorCode:    &code,
		ErrorMessage: &msg,
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
