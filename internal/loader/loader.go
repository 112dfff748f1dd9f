// Package loader fetches the records a question is about and serializes them
// into the plain-text context handed to the generator and the reviewer.
package loader

import (
	"context"
	"regexp"
	"strings"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
)

// NoRecordsText is the context text used when nothing was loaded.
const NoRecordsText = "Nenhum registro encontrado"

var (
	totalLineRe   = regexp.MustCompile(`(?i)^total( encontrado)?:`)
	omittedLineRe = regexp.MustCompile(`^\(\+\d+ linhas omitidas\)$`)
)

// Context is the serialized data for one question.
type Context struct {
	Domain analyzer.Domain
	Text   string
	Total  int
}

// Loader resolves a QueryAnalysis into a data Context.
type Loader interface {
	Load(ctx context.Context, analysis analyzer.QueryAnalysis) (*Context, error)
}

// EmptyLoader is used when no data source is configured.
type EmptyLoader struct{}

func (EmptyLoader) Load(_ context.Context, analysis analyzer.QueryAnalysis) (*Context, error) {
	return &Context{Domain: analysis.Domain, Text: NoRecordsText}, nil
}

// ScopeToClient returns a copy of c holding only the records whose
// RAZ_SOCIAL_RED names client. Lines without a client field are kept as they
// are. The total is recounted from the records kept, so rows that were
// omitted from the text are not counted.
func ScopeToClient(c *Context, client string) *Context {
	want := strings.ToUpper(strings.TrimSpace(client))
	if c == nil || want == "" {
		return c
	}

	var plain, rows []string
	for _, line := range strings.Split(c.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == NoRecordsText || totalLineRe.MatchString(trimmed) || omittedLineRe.MatchString(trimmed) {
			continue
		}
		name, ok := reviewer.LineClient(line)
		switch {
		case !ok:
			plain = append(plain, line)
		case strings.Contains(name, want):
			rows = append(rows, line)
		}
	}

	text := renderContext(len(rows), rows)
	if len(plain) > 0 {
		text = strings.Join(plain, "\n") + "\n" + text
	}
	return &Context{Domain: c.Domain, Text: text, Total: len(rows)}
}
