// Package analyzer turns a free-text logistics question into a QueryAnalysis:
// business domain, client, temporal window, query type, raw entities and
// keyword filters. It performs no I/O and keeps no state between calls, so a
// single Analyzer can be shared by any number of goroutines.
package analyzer

import (
	"strings"
	"time"
)

// Analyzer extracts a QueryAnalysis from query text using a fixed Vocabulary.
type Analyzer struct {
	vocab Vocabulary
	now   func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithVocabulary replaces the default keyword tables.
func WithVocabulary(v Vocabulary) Option {
	return func(a *Analyzer) {
		a.vocab = v
	}
}

// WithClock sets the clock used to turn explicit dates into day counts.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates an Analyzer with the default vocabulary and wall clock.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		vocab: DefaultVocabulary(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze never fails: anything it cannot recognise resolves to a default.
func (a *Analyzer) Analyze(query string) QueryAnalysis {
	lower := strings.ToLower(query)

	return QueryAnalysis{
		Domain:    ResolveDomain(lower, a.vocab.Domains),
		Client:    ResolveClient(lower, a.vocab.Clients),
		Period:    a.resolvePeriod(lower),
		QueryType: ResolveQueryType(lower, a.vocab.QueryTypes),
		Entities:  ExtractEntities(query),
		Filters:   ResolveFilters(lower, a.vocab),
	}
}

// resolvePeriod applies the temporal rules in priority order: fixed phrase,
// "últimos N dias", explicit date, default.
func (a *Analyzer) resolvePeriod(lower string) Period {
	if p, ok := FixedPeriod(lower, a.vocab.Periods); ok {
		return p
	}
	if p, ok := VariablePeriod(lower); ok {
		return p
	}
	if p, ok := ExplicitDatePeriod(lower, a.now()); ok {
		return p
	}
	return DefaultPeriod()
}

// Vocabulary returns the tables this Analyzer was built with.
func (a *Analyzer) Vocabulary() Vocabulary {
	return a.vocab
}
