package reviewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const acmeState = `{"REFERENCIA": {"cliente_atual": "ACME"}}`

func TestReview_TotalAlreadyConsistent(t *testing.T) {
	r := NewReviewer()

	got := r.Review(Request{Query: "quantos pedidos?", Response: "Encontrei 5 pedidos", Context: "Total: 5"})

	assert.False(t, got.WasCorrected)
	assert.Equal(t, "Encontrei 5 pedidos", got.FinalText)
	assert.Empty(t, got.Issues)
	assert.Equal(t, StatusOK, got.Metadata().Revisao)
}

func TestReview_TotalCorrectionIsIdempotent(t *testing.T) {
	r := NewReviewer()

	first := r.Review(Request{Query: "quantos pedidos?", Response: "Encontrei 10 pedidos", Context: "Total: 3"})
	require.True(t, first.WasCorrected)
	assert.Equal(t, "Encontrei 3 pedidos", first.FinalText)
	require.Len(t, first.Issues, 1)
	assert.Equal(t, KindTotalMismatch, first.Issues[0].Kind)
	assert.Equal(t, ActionCorrected, first.Issues[0].Action)

	second := r.Review(Request{Query: "quantos pedidos?", Response: first.FinalText, Context: "Total: 3"})
	assert.False(t, second.WasCorrected)
	assert.Equal(t, "Encontrei 3 pedidos", second.FinalText)
	assert.Empty(t, second.Issues)
}

func TestReview_TotalCorrectionTouchesFirstOccurrenceOnly(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response: "Foram 5 pedidos ontem e 7 pedidos hoje",
		Context:  "Total: 3",
	})

	assert.Equal(t, "Foram 3 pedidos ontem e 7 pedidos hoje", got.FinalText)
}

func TestReview_TotalSkipsMentionedZero(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response: "0 pedidos ontem, 8 pedidos hoje",
		Context:  "Total: 3",
	})

	assert.Equal(t, "0 pedidos ontem, 3 pedidos hoje", got.FinalText)
}

func TestReview_ZeroTotalIsNotFlagged(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response: "Não há pedidos no momento, total 0",
		Context:  "Total: 0",
	})

	assert.False(t, got.HasIssue(KindTotalMismatch))
	assert.False(t, got.WasCorrected)
}

func TestReview_ClientMismatchShortCircuits(t *testing.T) {
	response := "Encontrei 5 pedidos da empresa"

	got := NewReviewer().Review(Request{
		Response:        response,
		Context:         "Total: 2\nRAZ_SOCIAL_RED: OTHER CORP | num_pedido: 77",
		StructuredState: acmeState,
	})

	assert.True(t, got.NeedsReprocessing)
	assert.Equal(t, response, got.FinalText)
	assert.False(t, got.WasCorrected)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, KindClientMismatchInData, got.Issues[0].Kind)
	assert.Equal(t, ActionReprocess, got.Issues[0].Action)
	assert.True(t, got.Metadata().Reprocessar)
}

func TestReview_ExpectedClientPresentElsewhereInContext(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response:        "ACME tem pedidos em aberto",
		Context:         "RAZ_SOCIAL_RED: OTHER CORP | obs: acme",
		StructuredState: acmeState,
	})

	assert.False(t, got.NeedsReprocessing)
	assert.False(t, got.HasIssue(KindClientMismatchInData))
}

func TestReview_ClientAbsentInResponseIsAdvisory(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response:        "O cliente tem 1 pedido em aberto",
		Context:         "RAZ_SOCIAL_RED: ACME | num_pedido: 1",
		StructuredState: acmeState,
	})

	assert.False(t, got.NeedsReprocessing)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, KindClientAbsentInResponse, got.Issues[0].Kind)
	assert.Equal(t, ActionVerify, got.Issues[0].Action)
	assert.Equal(t, StatusProblems, got.Metadata().Revisao)
}

func TestReview_ClientAbsentFromContextWithoutOtherClient(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response:        "O cliente tem 2 pedidos em aberto",
		Context:         "Total: 2\nnum_pedido: 1 | num_pedido: 2",
		StructuredState: acmeState,
	})

	assert.False(t, got.NeedsReprocessing)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, KindClientAbsentInResponse, got.Issues[0].Kind)
	assert.Equal(t, ActionVerify, got.Issues[0].Action)
	assert.Equal(t, "O cliente tem 2 pedidos em aberto", got.FinalText)
}

func TestReview_StateFallsBackToClienteKey(t *testing.T) {
	got := NewReviewer().Review(Request{
		Response:        "ok",
		Context:         "RAZ_SOCIAL_RED: OTHER CORP",
		StructuredState: `{"REFERENCIA": {"cliente": "ACME"}}`,
	})

	assert.True(t, got.NeedsReprocessing)
}

func TestReview_MalformedStateDisablesClientChecks(t *testing.T) {
	for _, state := range []string{"{not json", `{"REFERENCIA": "ACME"}`, `{"REFERENCIA": {"cliente_atual": 42}}`, ""} {
		got := NewReviewer().Review(Request{
			Response:        "O cliente não tem entregas",
			Context:         "RAZ_SOCIAL_RED: OTHER CORP",
			StructuredState: state,
		})

		assert.False(t, got.NeedsReprocessing, "state %q", state)
		assert.False(t, got.HasIssue(KindClientAbsentInResponse), "state %q", state)
	}
}

func TestReview_ContradictionIsFlaggedNotCorrected(t *testing.T) {
	response := "Não encontrei nenhum resultado"

	got := NewReviewer().Review(Request{Response: response, Context: "Cliente: X | Pedido: 123"})

	assert.True(t, got.HasIssue(KindDataContradiction))
	assert.Equal(t, response, got.FinalText)
	assert.False(t, got.WasCorrected)
	assert.False(t, got.NeedsReprocessing)
}

func TestReview_NegationPatterns(t *testing.T) {
	responses := []string{
		"Nao encontramos registros",
		"Nenhum resultado para o período",
		"Não há dados disponíveis",
		"Nao ha registros",
		"Esse pedido não existe",
		"Consulta sem dados",
		"Não localizei o embarque",
		"Não foi possível encontrar a nota",
	}

	for _, resp := range responses {
		t.Run(resp, func(t *testing.T) {
			got := NewReviewer().Review(Request{Response: resp, Context: "num_pedido: 1"})
			assert.True(t, got.HasIssue(KindDataContradiction))
		})
	}
}

func TestReview_NoContradictionWithoutData(t *testing.T) {
	got := NewReviewer().Review(Request{Response: "Não encontrei nada", Context: "Nenhum registro"})

	assert.Empty(t, got.Issues)
}

func TestReview_EmptyContextIsReportedInvalid(t *testing.T) {
	got := NewReviewer().Review(Request{Response: "Encontrei 3 pedidos", Context: "  "})

	md := got.Metadata()
	assert.Equal(t, StatusInvalidContext, md.Revisao)
	assert.NotNil(t, md.Problemas)
	assert.Empty(t, md.Problemas)
}

func TestReview_ResponseScanIsCapped(t *testing.T) {
	r := NewReviewer(WithMaxResponseBytes(10))

	got := r.Review(Request{Response: "Encontrei 10 pedidos", Context: "Total: 3"})

	assert.False(t, got.WasCorrected)
}

func TestParseContext(t *testing.T) {
	text := "Total encontrado: 12\nRAZ_SOCIAL_RED: Atacadão Ltda | num_pedido: 1\nraz_social_red: \"ATACADÃO LTDA\"\nRAZ_SOCIAL_RED=Makro, num_pedido: 2"

	got := ParseContext(text)

	assert.True(t, got.HasData)
	require.NotNil(t, got.DeclaredTotal)
	assert.Equal(t, 12, *got.DeclaredTotal)
	assert.Equal(t, []string{"ATACADÃO LTDA", "MAKRO"}, got.MentionedClients)
}

func TestParseContext_NoTotal(t *testing.T) {
	got := ParseContext("Nenhum registro")

	assert.False(t, got.HasData)
	assert.Nil(t, got.DeclaredTotal)
	assert.Empty(t, got.MentionedClients)
}

func TestParseContext_EmptyResultIsNotData(t *testing.T) {
	empty := ParseContext("Total encontrado: 0\nNenhum registro encontrado")
	assert.False(t, empty.HasData)
	require.NotNil(t, empty.DeclaredTotal)
	assert.Equal(t, 0, *empty.DeclaredTotal)

	assert.True(t, ParseContext("15 registros encontrados").HasData)

	got := NewReviewer().Review(Request{
		Response: "Não encontrei pedidos no período.",
		Context:  "Total encontrado: 0\nNenhum registro encontrado",
	})
	assert.Empty(t, got.Issues)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "a", truncate("aé", 2))
	assert.Equal(t, "aé", truncate("aé", 3))
	assert.Equal(t, "abc", truncate("abc", 0))
}
