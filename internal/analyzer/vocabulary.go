package analyzer

// KeywordSet is one ordered entry of a keyword table. Tables are slices, not
// maps: position in the slice is the tie-break priority.
type KeywordSet struct {
	Key      string
	Keywords []string
}

// PeriodPhrase maps a fixed temporal phrase to a day count.
type PeriodPhrase struct {
	Phrase string
	Days   int
}

// Vocabulary is the fixed-at-construction keyword configuration used by the
// Analyzer. All keywords are lower case.
type Vocabulary struct {
	Domains    []KeywordSet
	Clients    []KeywordSet
	Periods    []PeriodPhrase
	QueryTypes []KeywordSet
	Statuses   []KeywordSet
	Urgency    []string
	StateCodes []string
	Carriers   []string
}

// DefaultVocabulary returns the production keyword tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Domains: []KeywordSet{
			{Key: string(DomainEntregas), Keywords: []string{"entrega", "entregue", "monitoramento", "agendamento", "reagend", "canhoto"}},
			{Key: string(DomainPedidos), Keywords: []string{"pedido", "carteira", "separação", "separacao"}},
			{Key: string(DomainNFe), Keywords: []string{"nota fiscal", "notas fiscais", "nfe", "nf-e", "danfe", "faturamento", "faturad"}},
			{Key: string(DomainEmbarques), Keywords: []string{"embarque", "embarcad", "carregamento", "romaneio", "veículo", "veiculo", "placa"}},
			{Key: string(DomainEstoque), Keywords: []string{"estoque", "saldo", "produto", "inventário", "inventario", "ruptura"}},
			{Key: string(DomainClientes), Keywords: []string{"cliente", "cnpj", "razão social", "razao social", "comprador"}},
			{Key: string(DomainTransportadoras), Keywords: []string{"transportadora", "transportador", "frete", "cotação de frete", "cotacao de frete"}},
		},
		Clients: []KeywordSet{
			{Key: "Atacadão", Keywords: []string{"atacadão", "atacadao"}},
			{Key: "Assaí", Keywords: []string{"assaí", "assai"}},
			{Key: "Carrefour", Keywords: []string{"carrefour"}},
			{Key: "Tenda Atacado", Keywords: []string{"tenda"}},
			{Key: "Grupo Mateus", Keywords: []string{"grupo mateus", "mateus"}},
			{Key: "Fort Atacadista", Keywords: []string{"fort atacadista"}},
			{Key: "Makro", Keywords: []string{"makro"}},
			{Key: "Sam's Club", Keywords: []string{"sam's club", "sams club"}},
			{Key: "Walmart", Keywords: []string{"walmart"}},
		},
		Periods: []PeriodPhrase{
			{Phrase: "hoje", Days: 0},
			{Phrase: "ontem", Days: 1},
			{Phrase: "esta semana", Days: 7},
			{Phrase: "essa semana", Days: 7},
			{Phrase: "última semana", Days: 7},
			{Phrase: "ultima semana", Days: 7},
			{Phrase: "semana passada", Days: 14},
			{Phrase: "este mês", Days: 30},
			{Phrase: "esse mês", Days: 30},
			{Phrase: "este mes", Days: 30},
			{Phrase: "último mês", Days: 30},
			{Phrase: "ultimo mes", Days: 30},
			{Phrase: "mês passado", Days: 60},
			{Phrase: "mes passado", Days: 60},
		},
		QueryTypes: []KeywordSet{
			{Key: string(QueryTypeReport), Keywords: []string{"relatório", "relatorio", "exportar", "planilha", "excel"}},
			{Key: string(QueryTypeStatus), Keywords: []string{"status", "situação", "situacao", "como está", "como esta", "andamento"}},
			{Key: string(QueryTypeProblem), Keywords: []string{"problema", "atraso", "atrasad", "erro", "falha", "pendência", "pendencia", "devolução", "devolucao"}},
			{Key: string(QueryTypeAnalysis), Keywords: []string{"análise", "analise", "analisar", "comparar", "tendência", "tendencia", "desempenho", "performance"}},
			{Key: string(QueryTypeCount), Keywords: []string{"quantos", "quantas", "quantidade", "total de", "número de", "numero de"}},
		},
		Statuses: []KeywordSet{
			{Key: "entregue", Keywords: []string{"entregue"}},
			{Key: "pendente", Keywords: []string{"pendente"}},
			{Key: "atrasado", Keywords: []string{"atrasad", "em atraso"}},
		},
		Urgency:    []string{"urgente", "urgência", "urgencia", "prioridade", "prioritári", "prioritari"},
		StateCodes: []string{"sp", "rj", "mg", "pr", "sc", "rs", "ba", "go", "pe", "ce", "es", "df"},
		Carriers:   []string{"braspress", "jadlog", "rodonaves", "patrus", "jamef", "tnt", "correios", "total express", "transben"},
	}
}
