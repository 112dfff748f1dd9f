package reviewer

import (
	"regexp"
	"strconv"
	"strings"
)

// dataIndicators are lower-case substrings whose presence means the context
// carries at least one record.
var dataIndicators = []string{
	"num_pedido",
	"cliente",
	"raz_social_red",
	"numero_nf",
	"pedido",
	"embarque",
	"registros encontrados",
}

var (
	declaredTotalRe = regexp.MustCompile(`(total|encontrad[oa]s?|resultados?)[:\s]*(\d+)`)
	clientFieldRe   = regexp.MustCompile(`(?i)raz_social_red["']?\s*[:=]\s*["']?([^\n|,;"'}\]]+)`)
)

// ContextPayload is what the reviewer learns from the serialized data context.
type ContextPayload struct {
	HasData          bool
	DeclaredTotal    *int
	MentionedClients []string
}

// ParseContext scans context text for data indicators, a declared total and
// the client names carried in RAZ_SOCIAL_RED fields.
func ParseContext(text string) ContextPayload {
	lower := strings.ToLower(text)

	var p ContextPayload
	for _, ind := range dataIndicators {
		if strings.Contains(lower, ind) {
			p.HasData = true
			break
		}
	}

	if m := declaredTotalRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			p.DeclaredTotal = &n
		}
	}

	seen := make(map[string]struct{})
	for _, m := range clientFieldRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(strings.TrimSpace(m[1]))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		p.MentionedClients = append(p.MentionedClients, name)
	}

	return p
}

// LineClient returns the upper-cased client named in the RAZ_SOCIAL_RED field
// of a single context line.
func LineClient(line string) (string, bool) {
	m := clientFieldRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	name := strings.ToUpper(strings.TrimSpace(m[1]))
	return name, name != ""
}
