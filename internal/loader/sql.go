package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/analyzer"
)

const DefaultMaxRows = 50

// OpenDatabase opens a database handle for the "postgres" or "sqlite" driver.
func OpenDatabase(driver, dsn string) (*sql.DB, error) {
	var name string
	switch driver {
	case "postgres":
		name = "postgres"
	case "sqlite", "sqlite3":
		name = "sqlite3"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if name == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// SQLLoader runs one configured query per domain. Each query receives two
// positional arguments: the start of the period and a LIKE pattern for the
// client name ("%" when the question names no client).
type SQLLoader struct {
	db      *sql.DB
	queries map[analyzer.Domain]string
	maxRows int
	now     func() time.Time
}

type SQLOption func(*SQLLoader)

// WithMaxRows caps how many rows are serialized into the context text.
func WithMaxRows(n int) SQLOption {
	return func(l *SQLLoader) {
		if n > 0 {
			l.maxRows = n
		}
	}
}

// WithNow sets the clock used to compute the period start.
func WithNow(now func() time.Time) SQLOption {
	return func(l *SQLLoader) {
		l.now = now
	}
}

func NewSQLLoader(db *sql.DB, queries map[string]string, opts ...SQLOption) *SQLLoader {
	l := &SQLLoader{
		db:      db,
		queries: make(map[analyzer.Domain]string, len(queries)),
		maxRows: DefaultMaxRows,
		now:     time.Now,
	}
	for domain, q := range queries {
		l.queries[analyzer.Domain(domain)] = q
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SQLLoader) Load(ctx context.Context, analysis analyzer.QueryAnalysis) (*Context, error) {
	query, ok := l.queries[analysis.Domain]
	if !ok {
		return &Context{Domain: analysis.Domain, Text: NoRecordsText}, nil
	}

	since := l.now().UTC().AddDate(0, 0, -analysis.Period.Days).Truncate(24 * time.Hour)
	pattern := "%"
	if analysis.Client != nil {
		pattern = "%" + strings.ToUpper(analysis.Client.CanonicalName) + "%"
	}

	rows, err := l.db.QueryContext(ctx, query, since, pattern)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", analysis.Domain, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var lines []string
	total := 0
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", analysis.Domain, err)
		}
		total++
		if total <= l.maxRows {
			lines = append(lines, formatRow(columns, values))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", analysis.Domain, err)
	}

	return &Context{
		Domain: analysis.Domain,
		Text:   renderContext(total, lines),
		Total:  total,
	}, nil
}

func renderContext(total int, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total encontrado: %d\n", total)
	if total == 0 {
		b.WriteString(NoRecordsText)
		return b.String()
	}
	b.WriteString(strings.Join(lines, "\n"))
	if omitted := total - len(lines); omitted > 0 {
		fmt.Fprintf(&b, "\n(+%d linhas omitidas)", omitted)
	}
	return b.String()
}

func formatRow(columns []string, values []any) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = col + ": " + formatValue(values[i])
	}
	return strings.Join(parts, " | ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("02/01/2006")
	default:
		return fmt.Sprint(val)
	}
}
