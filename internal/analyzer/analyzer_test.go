package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}
}

func TestAnalyze_EmptyQueryDefaults(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()))

	got := a.Analyze("")

	assert.Equal(t, DomainEntregas, got.Domain)
	assert.Nil(t, got.Client)
	assert.Equal(t, 30, got.Period.Days)
	assert.Equal(t, PeriodDefault, got.Period.Kind)
	assert.Equal(t, "últimos 30 dias", got.Period.Description)
	assert.Equal(t, QueryTypeInformation, got.QueryType)
	assert.True(t, got.Entities.IsEmpty())
	assert.True(t, got.Filters.IsEmpty())
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()))
	queries := []string{
		"",
		"quantos pedidos do Atacadão estão pendentes em SP desde 01/06/25?",
		"relatório de entregas atrasadas pela Braspress no mês passado",
		"NF 123456 no valor de R$ 1.500,00",
	}

	for _, q := range queries {
		assert.Equal(t, a.Analyze(q), a.Analyze(q), "query %q", q)
	}
}

func TestAnalyze_Domain(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name     string
		query    string
		expected Domain
	}{
		{"single keyword", "quais embarques saíram?", DomainEmbarques},
		{"highest count wins", "notas fiscais faturadas do pedido", DomainNFe},
		{"tie goes to earlier table entry", "nota fiscal de pedido", DomainPedidos},
		{"no keyword defaults to entregas", "bom dia", DomainEntregas},
		{"carrier domain", "qual transportadora tem o menor frete", DomainTransportadoras},
		{"stock domain", "saldo em estoque do produto 4310", DomainEstoque},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, a.Analyze(tc.query).Domain)
		})
	}
}

func TestAnalyze_DomainTieBreakFollowsTableOrder(t *testing.T) {
	vocab := DefaultVocabulary()
	require.Equal(t, string(DomainPedidos), vocab.Domains[1].Key)
	require.Equal(t, string(DomainNFe), vocab.Domains[2].Key)

	// Same tables with pedidos and nfe swapped: the tie now goes to nfe.
	vocab.Domains[1], vocab.Domains[2] = vocab.Domains[2], vocab.Domains[1]
	swapped := NewAnalyzer(WithVocabulary(vocab))

	assert.Equal(t, DomainNFe, swapped.Analyze("nota fiscal de pedido").Domain)
	assert.Equal(t, DomainPedidos, NewAnalyzer().Analyze("nota fiscal de pedido").Domain)
}

func TestAnalyze_Client(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name      string
		query     string
		canonical string
		alias     string
	}{
		{"accented alias", "entregas do Assaí em SP", "Assaí", "assaí"},
		{"unaccented alias", "pedidos do atacadao", "Atacadão", "atacadao"},
		{"first client in table order wins", "compare carrefour e atacadão", "Atacadão", "atacadão"},
		{"embedded substring matches", "quando atendamos o pedido?", "Tenda Atacado", "tenda"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Analyze(tc.query).Client
			require.NotNil(t, got)
			assert.Equal(t, tc.canonical, got.CanonicalName)
			assert.Equal(t, tc.alias, got.AliasMatched)
		})
	}

	assert.Nil(t, a.Analyze("entregas de hoje").Client)
}

func TestAnalyze_Period(t *testing.T) {
	a := NewAnalyzer(WithClock(fixedClock()))

	tests := []struct {
		name        string
		query       string
		days        int
		kind        PeriodKind
		description string
	}{
		{"hoje", "entregas de hoje", 0, PeriodFixed, "hoje"},
		{"ontem", "o que saiu ontem?", 1, PeriodFixed, "ontem"},
		{"esta semana", "pedidos desta semana", 7, PeriodFixed, "esta semana"},
		{"mês passado", "faturamento do mês passado", 60, PeriodFixed, "mês passado"},
		{"variable", "entregas dos últimos 15 dias", 15, PeriodVariable, "últimos 15 dias"},
		{"variable unaccented", "ultimos 7 dias", 7, PeriodVariable, "últimos 7 dias"},
		{"fixed beats variable", "hoje e nos últimos 10 dias", 0, PeriodFixed, "hoje"},
		{"explicit short year", "pedidos desde 01/06/25", 14, PeriodExplicitDate, "desde 01/06/2025"},
		{"explicit dashed long year", "entregas desde 01-06-2025", 14, PeriodExplicitDate, "desde 01/06/2025"},
		{"explicit future date", "agendadas até 20/06/2025", 5, PeriodExplicitDate, "desde 20/06/2025"},
		{"malformed date falls to default", "pedidos desde 32/13/25", 30, PeriodDefault, "últimos 30 dias"},
		{"nothing temporal", "pedidos do carrefour", 30, PeriodDefault, "últimos 30 dias"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Analyze(tc.query).Period
			assert.Equal(t, tc.days, got.Days)
			assert.Equal(t, tc.kind, got.Kind)
			assert.Equal(t, tc.description, got.Description)
		})
	}
}

func TestAnalyze_QueryType(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		query    string
		expected QueryType
	}{
		{"gere um relatório de status das entregas", QueryTypeReport},
		{"status das entregas atrasadas", QueryTypeStatus},
		{"análise de atrasos", QueryTypeProblem},
		{"análise de desempenho das transportadoras", QueryTypeAnalysis},
		{"quantos pedidos temos?", QueryTypeCount},
		{"mostre os pedidos do assaí", QueryTypeInformation},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			assert.Equal(t, tc.expected, a.Analyze(tc.query).QueryType)
		})
	}
}

func TestAnalyze_Entities(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("NF 123456 do CNPJ 12.345.678/0001-90 no valor de R$ 1.500,00 em 10/06/2025, pedido VCD2519284").Entities

	assert.Equal(t, []string{"123456"}, got.InvoiceNumbers)
	assert.Equal(t, []string{"VCD2519284"}, got.OrderNumbers)
	assert.Equal(t, []string{"12.345.678/0001-90"}, got.CNPJs)
	assert.Equal(t, []string{"10/06/2025"}, got.Dates)
	assert.Equal(t, []string{"R$ 1.500,00"}, got.MoneyValues)
}

func TestAnalyze_EntitiesOverlapAcrossCategories(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("pedido 654321 e nf 7654321").Entities

	assert.Equal(t, []string{"654321", "7654321"}, got.InvoiceNumbers)
	assert.Equal(t, []string{"654321"}, got.OrderNumbers)
}

func TestAnalyze_UnpunctuatedCNPJIsNotInvoice(t *testing.T) {
	got := NewAnalyzer().Analyze("cnpj 12345678000190").Entities

	assert.Equal(t, []string{"12345678000190"}, got.CNPJs)
	assert.Empty(t, got.InvoiceNumbers)
}

func TestAnalyze_Filters(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("entregas pendentes urgentes para RJ pela braspress").Filters

	assert.Equal(t, "pendente", got.Status)
	assert.True(t, got.Urgency)
	assert.Equal(t, "RJ", got.StateCode)
	assert.Equal(t, "Braspress", got.Carrier)
}

func TestAnalyze_FilterEdgeCases(t *testing.T) {
	a := NewAnalyzer()

	t.Run("status priority", func(t *testing.T) {
		assert.Equal(t, "entregue", a.Analyze("entregue ou pendente?").Filters.Status)
	})

	t.Run("state code needs surrounding spaces", func(t *testing.T) {
		assert.Empty(t, a.Analyze("espera em sp,").Filters.StateCode)
		assert.Equal(t, "SP", a.Analyze("sp").Filters.StateCode)
	})

	t.Run("multi word carrier is title cased", func(t *testing.T) {
		assert.Equal(t, "Total Express", a.Analyze("coletas da total express").Filters.Carrier)
	})

	t.Run("no keywords", func(t *testing.T) {
		assert.True(t, a.Analyze("bom dia").Filters.IsEmpty())
	})
}
