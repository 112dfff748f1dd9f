// Package mapper maps the natural terms of a logistics question to the
// canonical model and column names of the data source.
package mapper

import (
	"strings"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
)

// FieldAlias lists the natural terms that refer to one column. Terms are
// lower case and checked in order.
type FieldAlias struct {
	Field string
	Terms []string
}

// ModelFields describes one domain's model and its column aliases.
type ModelFields struct {
	Model  string
	Fields []FieldAlias
}

// FieldRef is a resolved column reference.
type FieldRef struct {
	Term  string `json:"termo"`
	Field string `json:"campo"`
}

// FieldMapping is the result of mapping one query.
type FieldMapping struct {
	Model  string     `json:"modelo"`
	Fields []FieldRef `json:"campos"`
}

type domainEntry struct {
	domain analyzer.Domain
	model  ModelFields
}

// Mapper holds ordered per-domain tables. It is read-only after construction.
type Mapper struct {
	tables []domainEntry
}

func NewMapper() *Mapper {
	return &Mapper{tables: defaultTables()}
}

// Model returns the model name for a domain, or "" when unknown.
func (m *Mapper) Model(domain analyzer.Domain) string {
	if mf, ok := m.lookup(domain); ok {
		return mf.Model
	}
	return ""
}

// Fields returns the column aliases known for a domain.
func (m *Mapper) Fields(domain analyzer.Domain) []FieldAlias {
	if mf, ok := m.lookup(domain); ok {
		return mf.Fields
	}
	return nil
}

// Map resolves the columns the query talks about. Each column is reported
// once, with the first of its terms found in the query.
func (m *Mapper) Map(domain analyzer.Domain, query string) FieldMapping {
	mf, ok := m.lookup(domain)
	if !ok {
		return FieldMapping{}
	}

	lower := strings.ToLower(query)
	out := FieldMapping{Model: mf.Model}
	for _, alias := range mf.Fields {
		for _, term := range alias.Terms {
			if strings.Contains(lower, term) {
				out.Fields = append(out.Fields, FieldRef{Term: term, Field: alias.Field})
				break
			}
		}
	}
	return out
}

func (m *Mapper) lookup(domain analyzer.Domain) (ModelFields, bool) {
	for _, e := range m.tables {
		if e.domain == domain {
			return e.model, true
		}
	}
	return ModelFields{}, false
}

func defaultTables() []domainEntry {
	client := FieldAlias{Field: "raz_social_red", Terms: []string{"cliente", "razão social", "razao social", "comprador"}}
	cnpj := FieldAlias{Field: "cnpj_cpf", Terms: []string{"cnpj", "cpf"}}
	order := FieldAlias{Field: "num_pedido", Terms: []string{"pedido", "número do pedido", "numero do pedido"}}
	invoice := FieldAlias{Field: "numero_nf", Terms: []string{"nota fiscal", "notas fiscais", "nfe", "nf"}}
	city := FieldAlias{Field: "municipio", Terms: []string{"cidade", "município", "municipio"}}
	state := FieldAlias{Field: "uf", Terms: []string{"estado", "uf"}}
	carrier := FieldAlias{Field: "transportadora", Terms: []string{"transportadora", "transportador"}}
	value := FieldAlias{Field: "valor_total", Terms: []string{"valor", "faturamento", "total em r$"}}

	return []domainEntry{
		{analyzer.DomainEntregas, ModelFields{Model: "EntregaMonitorada", Fields: []FieldAlias{
			client, cnpj, invoice, carrier, city, state,
			{Field: "data_entrega_prevista", Terms: []string{"data de entrega", "previsão de entrega", "previsao de entrega", "prazo"}},
			{Field: "data_hora_entrega_realizada", Terms: []string{"entregue em", "data da entrega realizada", "realizada"}},
			{Field: "data_agenda", Terms: []string{"agendamento", "agenda", "agendad"}},
			{Field: "status_finalizacao", Terms: []string{"status", "situação", "situacao", "finaliza"}},
			{Field: "entregue", Terms: []string{"entregue"}},
		}}},
		{analyzer.DomainPedidos, ModelFields{Model: "Pedido", Fields: []FieldAlias{
			order, client, cnpj, city, state, carrier, value,
			{Field: "status", Terms: []string{"status", "situação", "situacao"}},
			{Field: "expedicao", Terms: []string{"expedição", "expedicao", "data de saída", "data de saida"}},
			{Field: "peso_total", Terms: []string{"peso"}},
		}}},
		{analyzer.DomainNFe, ModelFields{Model: "FaturamentoProduto", Fields: []FieldAlias{
			invoice, order, client, cnpj, value,
			{Field: "data_fatura", Terms: []string{"data de faturamento", "data da nota", "emissão", "emissao", "faturad"}},
			{Field: "cod_produto", Terms: []string{"produto", "código", "codigo", "sku"}},
			{Field: "qtd_produto_faturado", Terms: []string{"quantidade", "qtd"}},
		}}},
		{analyzer.DomainEmbarques, ModelFields{Model: "Embarque", Fields: []FieldAlias{
			{Field: "numero", Terms: []string{"embarque", "romaneio"}},
			carrier,
			{Field: "placa_veiculo", Terms: []string{"placa", "veículo", "veiculo"}},
			{Field: "data_embarque", Terms: []string{"data de embarque", "embarcad", "saída", "saida"}},
			{Field: "status", Terms: []string{"status", "situação", "situacao"}},
			invoice, client,
		}}},
		{analyzer.DomainEstoque, ModelFields{Model: "MovimentacaoEstoque", Fields: []FieldAlias{
			{Field: "cod_produto", Terms: []string{"produto", "código", "codigo", "sku"}},
			{Field: "nome_produto", Terms: []string{"nome do produto", "descrição", "descricao"}},
			{Field: "qtd_movimentacao", Terms: []string{"saldo", "quantidade", "qtd", "estoque"}},
			{Field: "data_movimentacao", Terms: []string{"data", "movimenta"}},
		}}},
		{analyzer.DomainClientes, ModelFields{Model: "Cliente", Fields: []FieldAlias{
			client, cnpj, city, state,
			{Field: "vendedor", Terms: []string{"vendedor", "representante"}},
		}}},
		{analyzer.DomainTransportadoras, ModelFields{Model: "Transportadora", Fields: []FieldAlias{
			{Field: "razao_social", Terms: []string{"transportadora", "transportador"}},
			cnpj, city, state,
			{Field: "valor_frete", Terms: []string{"frete", "cotação", "cotacao", "valor"}},
		}}},
	}
}
