package models

import (
	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
)

// TurnRequest is one user message sent to the assistant over NATS or HTTP.
type TurnRequest struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`
	Message   string `json:"message"`
}

// TurnResponse is the assistant's reply to a TurnRequest.
type TurnResponse struct {
	SessionID    string                  `json:"session_id"`
	TurnID       string                  `json:"turn_id"`
	Status       string                  `json:"status"`
	Answer       string                  `json:"answer"`
	Analysis     *analyzer.QueryAnalysis `json:"analysis,omitempty"`
	Review       *reviewer.Metadata      `json:"review,omitempty"`
	Attempts     int                     `json:"attempts,omitempty"`
	ErrorCode    *string                 `json:"error_code,omitempty"`
	ErrorMessage *string                 `json:"error_message,omitempty"`
}

type AnalyzeRequest struct {
	Query string `json:"query"`
}

// ReviewRequest checks an answer produced elsewhere against its data context.
type ReviewRequest struct {
	Query           string `json:"query"`
	Response        string `json:"response"`
	Context         string `json:"context"`
	Domain          string `json:"domain,omitempty"`
	StructuredState string `json:"structured_state,omitempty"`
}

type ReviewResponse struct {
	FinalText string            `json:"final_text"`
	Metadata  reviewer.Metadata `json:"metadata"`
}

// ErrorResponse is the body of every failed HTTP call.
type ErrorResponse struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Status constants
const (
	StatusAnswered = "ANSWERED"
	StatusFallback = "FALLBACK"
	StatusError    = "ERROR"
)

// Error codes
const (
	ErrorLLMTimeout     = "LLM_API_TIMEOUT"
	ErrorLLMFailed      = "LLM_API_FAILED"
	ErrorParseError     = "PARSE_ERROR"
	ErrorDataLoadFailed = "DATA_LOAD_FAILED"
	ErrorInternal       = "INTERNAL_ERROR"
)
