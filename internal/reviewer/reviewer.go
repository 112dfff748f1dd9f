// Package reviewer checks a generated answer against the data context it was
// generated from. It never calls the generator again: every check is a plain
// text scan, and the only edit it performs is replacing a wrong total.
package reviewer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxContextBytes  = 256 << 10
	DefaultMaxResponseBytes = 32 << 10
	DefaultDomain           = "logistica"
)

var genericClientWords = []string{"cliente", "empresa", "razão social", "razao social"}

var negationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`n[ãa]o\s+encontr`),
	regexp.MustCompile(`nenhum\s+resultado`),
	regexp.MustCompile(`n[ãa]o\s+h[áa]\s+(?:dados|registros|pedidos)`),
	regexp.MustCompile(`n[ãa]o\s+existe`),
	regexp.MustCompile(`sem\s+dados`),
	regexp.MustCompile(`n[ãa]o\s+localizei`),
	regexp.MustCompile(`n[ãa]o\s+foi\s+poss[íi]vel\s+encontrar`),
}

// Tried in order; the first non-zero count found is the one compared.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(\d+)\s+pedidos?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s+itens\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s+registros?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s+resultados?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s+clientes?\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s+produtos?\b`),
}

// Reviewer is stateless and safe for concurrent use.
type Reviewer struct {
	maxContextBytes  int
	maxResponseBytes int
}

type Option func(*Reviewer)

// WithMaxContextBytes caps how much of the context text is scanned.
func WithMaxContextBytes(n int) Option {
	return func(r *Reviewer) {
		if n > 0 {
			r.maxContextBytes = n
		}
	}
}

// WithMaxResponseBytes caps how much of the generated answer is scanned.
func WithMaxResponseBytes(n int) Option {
	return func(r *Reviewer) {
		if n > 0 {
			r.maxResponseBytes = n
		}
	}
}

func NewReviewer(opts ...Option) *Reviewer {
	r := &Reviewer{
		maxContextBytes:  DefaultMaxContextBytes,
		maxResponseBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Review runs the client, contradiction and total checks in that order. A
// client mismatch in the data ends the review early and asks for reprocessing.
func (r *Reviewer) Review(req Request) Result {
	domain := req.Domain
	if domain == "" {
		domain = DefaultDomain
	}

	contextText := truncate(req.Context, r.maxContextBytes)
	scanned := truncate(req.Response, r.maxResponseBytes)

	result := Result{
		FinalText:      req.Response,
		ContextMissing: strings.TrimSpace(req.Context) == "",
	}
	payload := ParseContext(contextText)

	if expected := ExpectedClient(req.StructuredState); expected != "" {
		if issue, reprocess := checkClient(expected, contextText, scanned, payload); issue != nil {
			result.Issues = append(result.Issues, *issue)
			if reprocess {
				result.NeedsReprocessing = true
				return result
			}
		}
	}

	if issue := checkContradiction(scanned, domain, payload); issue != nil {
		result.Issues = append(result.Issues, *issue)
	}

	if issue, corrected := checkTotal(req.Response, scanned, payload); issue != nil {
		result.Issues = append(result.Issues, *issue)
		result.FinalText = corrected
	}

	result.WasCorrected = result.FinalText != req.Response
	return result
}

func checkClient(expected, contextText, response string, payload ContextPayload) (*Issue, bool) {
	want := strings.ToUpper(expected)

	if !strings.Contains(strings.ToUpper(contextText), want) {
		var others []string
		for _, c := range payload.MentionedClients {
			if c != want {
				others = append(others, c)
			}
		}
		if len(others) > 0 {
			return &Issue{
				Kind:        KindClientMismatchInData,
				Description: fmt.Sprintf("dados carregados para %s, esperado %s", strings.Join(others, ", "), want),
				Action:      ActionReprocess,
			}, true
		}
	}

	if !strings.Contains(strings.ToUpper(response), want) &&
		containsAny(strings.ToLower(response), genericClientWords) {
		return &Issue{
			Kind:        KindClientAbsentInResponse,
			Description: fmt.Sprintf("resposta cita um cliente sem nomear %s", want),
			Action:      ActionVerify,
		}, false
	}

	return nil, false
}

func checkContradiction(response, domain string, payload ContextPayload) *Issue {
	if !payload.HasData {
		return nil
	}
	lower := strings.ToLower(response)
	for _, re := range negationPatterns {
		if re.MatchString(lower) {
			return &Issue{
				Kind:        KindDataContradiction,
				Description: fmt.Sprintf("resposta nega dados de %s presentes no contexto", domain),
				Action:      ActionAlert,
			}
		}
	}
	return nil
}

// checkTotal replaces only the first non-zero count that disagrees with the
// declared total. Indexes come from the scanned prefix, so they are valid in
// the full response.
func checkTotal(full, scanned string, payload ContextPayload) (*Issue, string) {
	if payload.DeclaredTotal == nil {
		return nil, full
	}
	total := *payload.DeclaredTotal

	for _, re := range countPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(scanned, -1) {
			n, err := strconv.Atoi(scanned[loc[2]:loc[3]])
			if err != nil || n == 0 {
				continue
			}
			if n == total {
				return nil, full
			}
			corrected := full[:loc[2]] + strconv.Itoa(total) + full[loc[3]:]
			return &Issue{
				Kind:        KindTotalMismatch,
				Description: fmt.Sprintf("resposta informava %d, contexto declara %d", n, total),
				Action:      ActionCorrected,
			}, corrected
		}
	}
	return nil, full
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
