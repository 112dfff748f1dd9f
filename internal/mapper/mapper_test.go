package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
)

func TestMapper_Map(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		name   string
		domain analyzer.Domain
		query  string
		model  string
		fields []FieldRef
	}{
		{
			name:   "client and delivery date",
			domain: analyzer.DomainEntregas,
			query:  "Qual a data de entrega do cliente Assaí?",
			model:  "EntregaMonitorada",
			fields: []FieldRef{
				{Term: "cliente", Field: "raz_social_red"},
				{Term: "data de entrega", Field: "data_entrega_prevista"},
			},
		},
		{
			name:   "first term wins per field",
			domain: analyzer.DomainNFe,
			query:  "nota fiscal e nfe do pedido 123",
			model:  "FaturamentoProduto",
			fields: []FieldRef{
				{Term: "nota fiscal", Field: "numero_nf"},
				{Term: "pedido", Field: "num_pedido"},
			},
		},
		{
			name:   "no terms",
			domain: analyzer.DomainPedidos,
			query:  "bom dia",
			model:  "Pedido",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := m.Map(tc.domain, tc.query)
			assert.Equal(t, tc.model, got.Model)
			assert.Equal(t, tc.fields, got.Fields)
		})
	}
}

func TestMapper_UnknownDomain(t *testing.T) {
	m := NewMapper()

	assert.Equal(t, FieldMapping{}, m.Map("frota", "cliente"))
	assert.Empty(t, m.Model("frota"))
	assert.Nil(t, m.Fields("frota"))
}

func TestMapper_EveryDomainHasAModel(t *testing.T) {
	m := NewMapper()
	domains := []analyzer.Domain{
		analyzer.DomainEntregas, analyzer.DomainPedidos, analyzer.DomainNFe, analyzer.DomainEmbarques,
		analyzer.DomainEstoque, analyzer.DomainClientes, analyzer.DomainTransportadoras,
	}

	for _, d := range domains {
		assert.NotEmpty(t, m.Model(d), "domain %s", d)
		assert.NotEmpty(t, m.Fields(d), "domain %s", d)
	}
}
