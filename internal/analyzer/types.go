package analyzer

// Domain is the business area a query is about.
type Domain string

const (
	DomainEntregas        Domain = "entregas"
	DomainPedidos         Domain = "pedidos"
	DomainNFe             Domain = "nfe"
	DomainEmbarques       Domain = "embarques"
	DomainEstoque         Domain = "estoque"
	DomainClientes        Domain = "clientes"
	DomainTransportadoras Domain = "transportadoras"
)

// QueryType classifies what the user wants done with the data.
type QueryType string

const (
	QueryTypeReport      QueryType = "report"
	QueryTypeStatus      QueryType = "status"
	QueryTypeProblem     QueryType = "problem"
	QueryTypeAnalysis    QueryType = "analysis"
	QueryTypeCount       QueryType = "count"
	QueryTypeInformation QueryType = "information"
)

// PeriodKind records which rule resolved the temporal window.
type PeriodKind string

const (
	PeriodFixed        PeriodKind = "fixed"
	PeriodVariable     PeriodKind = "variable"
	PeriodExplicitDate PeriodKind = "explicit_date"
	PeriodDefault      PeriodKind = "default"
)

const (
	defaultPeriodDays        = 30
	defaultPeriodDescription = "últimos 30 dias"
)

// ClientMatch is the single client recognised in a query.
type ClientMatch struct {
	CanonicalName string `json:"canonical_name"`
	AliasMatched  string `json:"alias_matched"`
}

// Period is the resolved temporal window, expressed in days back from today.
type Period struct {
	Days        int        `json:"days"`
	Description string     `json:"description"`
	Kind        PeriodKind `json:"kind"`
}

// Entities holds raw tokens extracted from the query. A token can show up in
// more than one list; callers disambiguate using the domain.
type Entities struct {
	InvoiceNumbers []string `json:"invoice_numbers,omitempty"`
	OrderNumbers   []string `json:"order_numbers,omitempty"`
	CNPJs          []string `json:"cnpjs,omitempty"`
	Dates          []string `json:"dates,omitempty"`
	MoneyValues    []string `json:"money_values,omitempty"`
}

// IsEmpty reports whether no entity of any kind was extracted.
func (e Entities) IsEmpty() bool {
	return len(e.InvoiceNumbers) == 0 && len(e.OrderNumbers) == 0 &&
		len(e.CNPJs) == 0 && len(e.Dates) == 0 && len(e.MoneyValues) == 0
}

// Filters are optional keyword-driven restrictions. Empty fields are omitted
// on the wire; a key is never sent with a null value.
type Filters struct {
	Status    string `json:"status,omitempty"`
	Urgency   bool   `json:"urgency,omitempty"`
	StateCode string `json:"state_code,omitempty"`
	Carrier   string `json:"carrier,omitempty"`
}

// IsEmpty reports whether no filter matched.
func (f Filters) IsEmpty() bool {
	return f == Filters{}
}

// QueryAnalysis is the structured reading of one free-text query.
type QueryAnalysis struct {
	Domain    Domain       `json:"domain"`
	Client    *ClientMatch `json:"client,omitempty"`
	Period    Period       `json:"period"`
	QueryType QueryType    `json:"query_type"`
	Entities  Entities     `json:"entities"`
	Filters   Filters      `json:"filters"`
}
