package analyzer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	variablePeriodRe = regexp.MustCompile(`[úu]ltimos?\s+(\d+)\s+dias`)
	explicitDateRe   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`)

	invoiceRe = regexp.MustCompile(`\b\d{6,10}\b`)
	orderRe   = regexp.MustCompile(`(?i)\bpedidos?\s*(?:n[º°o]\.?\s*|#\s*)?([a-z]{0,4}\d[\w-]*)`)
	cnpjRe    = regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)
	dateRe    = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/(?:\d{4}|\d{2})\b`)
	moneyRe   = regexp.MustCompile(`R\$\s*\d[\d.,]*`)
)

// ResolveDomain returns the domain whose keywords occur most often in the
// lower-cased query. Ties go to the earlier table entry.
func ResolveDomain(lower string, table []KeywordSet) Domain {
	best := DomainEntregas
	bestCount := 0
	for _, set := range table {
		count := 0
		for _, kw := range set.Keywords {
			if strings.Contains(lower, kw) {
				count++
			}
		}
		if count > bestCount {
			best = Domain(set.Key)
			bestCount = count
		}
	}
	return best
}

// ResolveClient returns the first client whose alias is a raw substring of
// the query. Embedded-word false positives are expected.
func ResolveClient(lower string, table []KeywordSet) *ClientMatch {
	for _, set := range table {
		for _, alias := range set.Keywords {
			if strings.Contains(lower, alias) {
				return &ClientMatch{CanonicalName: set.Key, AliasMatched: alias}
			}
		}
	}
	return nil
}

// FixedPeriod matches the first fixed temporal phrase in table order.
func FixedPeriod(lower string, phrases []PeriodPhrase) (Period, bool) {
	for _, p := range phrases {
		if strings.Contains(lower, p.Phrase) {
			return Period{Days: p.Days, Description: p.Phrase, Kind: PeriodFixed}, true
		}
	}
	return Period{}, false
}

// VariablePeriod matches "últimos N dias".
func VariablePeriod(lower string) (Period, bool) {
	m := variablePeriodRe.FindStringSubmatch(lower)
	if m == nil {
		return Period{}, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return Period{}, false
	}
	return Period{Days: days, Description: fmt.Sprintf("últimos %d dias", days), Kind: PeriodVariable}, true
}

// ExplicitDatePeriod converts the first DD/MM/YY(YY) date in the query into a
// day distance from today. An invalid date yields no match.
func ExplicitDatePeriod(lower string, today time.Time) (Period, bool) {
	m := explicitDateRe.FindStringSubmatch(lower)
	if m == nil {
		return Period{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month || date.Year() != year {
		return Period{}, false
	}

	ref := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(ref.Sub(date).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return Period{
		Days:        days,
		Description: "desde " + date.Format("02/01/2006"),
		Kind:        PeriodExplicitDate,
	}, true
}

// DefaultPeriod is the window used when no temporal rule matches.
func DefaultPeriod() Period {
	return Period{Days: defaultPeriodDays, Description: defaultPeriodDescription, Kind: PeriodDefault}
}

// ResolveQueryType returns the first keyword set with a hit.
func ResolveQueryType(lower string, table []KeywordSet) QueryType {
	for _, set := range table {
		for _, kw := range set.Keywords {
			if strings.Contains(lower, kw) {
				return QueryType(set.Key)
			}
		}
	}
	return QueryTypeInformation
}

// ExtractEntities runs the independent regex passes over the original text.
func ExtractEntities(text string) Entities {
	var e Entities
	e.InvoiceNumbers = invoiceRe.FindAllString(text, -1)
	for _, m := range orderRe.FindAllStringSubmatch(text, -1) {
		e.OrderNumbers = append(e.OrderNumbers, m[1])
	}
	e.CNPJs = cnpjRe.FindAllString(text, -1)
	e.Dates = dateRe.FindAllString(text, -1)
	for _, v := range moneyRe.FindAllString(text, -1) {
		e.MoneyValues = append(e.MoneyValues, strings.TrimRight(v, ".,"))
	}
	return e
}

// ResolveFilters populates each filter independently.
func ResolveFilters(lower string, vocab Vocabulary) Filters {
	var f Filters

	for _, set := range vocab.Statuses {
		if containsAny(lower, set.Keywords) {
			f.Status = set.Key
			break
		}
	}

	f.Urgency = containsAny(lower, vocab.Urgency)

	padded := " " + lower + " "
	for _, uf := range vocab.StateCodes {
		if strings.Contains(padded, " "+uf+" ") {
			f.StateCode = strings.ToUpper(uf)
			break
		}
	}

	for _, carrier := range vocab.Carriers {
		if strings.Contains(lower, carrier) {
			// cases.Caser is stateful; never share one across goroutines.
			f.Carrier = cases.Title(language.BrazilianPortuguese).String(carrier)
			break
		}
	}

	return f
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
