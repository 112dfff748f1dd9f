package reviewer

// IssueKind identifies which coherence check produced an Issue.
type IssueKind string

const (
	KindClientMismatchInData   IssueKind = "client_mismatch_in_data"
	KindClientAbsentInResponse IssueKind = "client_absent_in_response"
	KindDataContradiction      IssueKind = "data_contradiction"
	KindTotalMismatch          IssueKind = "total_mismatch"
)

// Action tells the caller what was done, or should be done, about an Issue.
type Action string

const (
	ActionReprocess Action = "reprocessar"
	ActionVerify    Action = "verificar"
	ActionAlert     Action = "alertar"
	ActionCorrected Action = "corrigido"
)

// Status is the overall verdict reported in Metadata.
type Status string

const (
	StatusOK             Status = "ok"
	StatusProblems       Status = "problemas"
	StatusInvalidContext Status = "contexto_invalido"
)

// Issue is one finding of the reviewer.
type Issue struct {
	Kind        IssueKind `json:"tipo"`
	Description string    `json:"descricao"`
	Action      Action    `json:"acao"`
}

// Request carries everything a review needs. StructuredState is the raw JSON
// conversation state; empty means no state is available.
type Request struct {
	Query           string
	Response        string
	Context         string
	Domain          string
	StructuredState string
}

// Result is the outcome of one review.
type Result struct {
	FinalText         string
	Issues            []Issue
	NeedsReprocessing bool
	WasCorrected      bool
	ContextMissing    bool
}

// Metadata is the wire form of a Result consumed by the chat-turn caller.
type Metadata struct {
	Revisao     Status  `json:"revisao"`
	Problemas   []Issue `json:"problemas"`
	Reprocessar bool    `json:"reprocessar"`
	Corrigido   bool    `json:"corrigido"`
}

// Metadata summarises the result for the caller.
func (r Result) Metadata() Metadata {
	status := StatusOK
	switch {
	case r.ContextMissing:
		status = StatusInvalidContext
	case len(r.Issues) > 0:
		status = StatusProblems
	}

	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}

	return Metadata{
		Revisao:     status,
		Problemas:   issues,
		Reprocessar: r.NeedsReprocessing,
		Corrigido:   r.WasCorrected,
	}
}

// HasIssue reports whether an issue of the given kind was emitted.
func (r Result) HasIssue(kind IssueKind) bool {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}
