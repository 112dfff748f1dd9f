package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/config"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/models"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/observability"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/prompts"
)

// TurnProcessor answers one chat turn.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req *models.TurnRequest) (*models.TurnResponse, error)
}

type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	config  config.NATSConfig
	handler TurnProcessor
	logger  zerolog.Logger
}

func NewNATSTransport(cfg config.NATSConfig, serviceName string, handler TurnProcessor, logger zerolog.Logger) (*NATSTransport, error) {
	logger = logger.With().Str("component", "nats").Logger()

	conn, err := nats.Connect(cfg.URL,
		nats.Name(serviceName),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("disconnected from NATS")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info().Str("url", cfg.URL).Msg("connected to NATS")

	return newNATSTransport(conn, cfg, handler, logger), nil
}

func newNATSTransport(conn *nats.Conn, cfg config.NATSConfig, handler TurnProcessor, logger zerolog.Logger) *NATSTransport {
	return &NATSTransport{
		conn:    conn,
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
}

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.config.RequestSubject, nt.handleTurnRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.RequestSubject, err)
	}
	nt.sub = sub

	nt.logger.Info().Str("subject", nt.config.RequestSubject).Msg("subscribed")
	return nil
}

func (nt *NATSTransport) handleTurnRequest(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), nt.config.Timeout)
	defer cancel()

	if err := msg.Respond(nt.process(ctx, msg.Data)); err != nil {
		nt.logger.Error().Err(err).Msg("failed to send response")
	}
}

// process decodes a TurnRequest, runs it and encodes the reply. Every input
// yields a reply body.
func (nt *NATSTransport) process(ctx context.Context, data []byte) []byte {
	var request models.TurnRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.logger.Warn().Err(err).Msg("invalid request payload")
		return nt.encode(errorTurn(request.SessionID, models.ErrorParseError, "invalid request format"))
	}

	log := observability.WithSession(nt.logger, request.SessionID)
	log.Debug().Msg("processing turn")

	response, err := nt.handler.ProcessTurn(ctx, &request)
	if err != nil {
		log.Warn().Err(err).Msg("turn finished with error")
	}
	if response == nil {
		msg := "internal error"
		if err != nil {
			msg = err.Error()
		}
		response = errorTurn(request.SessionID, models.ErrorCode(err), msg)
	}

	log.Info().Str("status", response.Status).Msg("response sent")
	return nt.encode(response)
}

func (nt *NATSTransport) encode(response *models.TurnResponse) []byte {
	data, err := json.Marshal(response)
	if err != nil {
		nt.logger.Error().Err(err).Msg("failed to marshal response")
		return []byte(`{"status":"ERROR","error_code":"INTERNAL_ERROR"}`)
	}
	return data
}

func errorTurn(sessionID, code, message string) *models.TurnResponse {
	return &models.TurnResponse{
		SessionID:    sessionID,
		Status:       models.StatusError,
		Answer:       prompts.FallbackMessage,
		ErrorCode:    &code,
		ErrorMessage: &message,
	}
}

func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		if err := nt.sub.Drain(); err != nil {
			nt.logger.Warn().Err(err).Msg("failed to drain subscription")
		}
	}
	if nt.conn != nil {
		nt.conn.Close()
		nt.logger.Info().Msg("NATS connection closed")
	}
	return nil
}
