package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/dbinfo/internal/errs"
)

// Dialect controls which placeholder style Bind emits.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders.
	DialectPostgres Dialect = iota

	// DialectQuestion uses ? placeholders (MySQL, SQLite).
	DialectQuestion

	// DialectSQLServer uses @p1, @p2, … placeholders.
	DialectSQLServer
)

// placeholder returns the placeholder for the idx-th (1-based) argument.
func (d Dialect) placeholder(idx int) string {
	switch d {
	case DialectQuestion:
		return "?"
	case DialectSQLServer:
		return fmt.Sprintf("@p%d", idx)
	default:
		return fmt.Sprintf("$%d", idx)
	}
}

// Bind rewrites the :name placeholders of query into d's positional style
// and returns the matching argument slice. A name used twice yields two
// arguments. Quoted literals, quoted identifiers, -- comments and
// PostgreSQL :: casts are copied untouched.
//
//	sql, args, err := Bind("SELECT 1 WHERE a = :x AND b = 'k:v'", map[string]any{"x": 1}, DialectPostgres)
//	// sql  = "SELECT 1 WHERE a = $1 AND b = 'k:v'"
//	// args = [1]
func Bind(query string, params map[string]any, d Dialect) (string, []any, error) {
	var sb strings.Builder
	sb.Grow(len(query))
	args := make([]any, 0, len(params))

	n := len(query)
	for i := 0; i < n; i++ {
		c := query[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || (c == '[' && d == DialectSQLServer):
			end := closingQuote(query, i)
			sb.WriteString(query[i : end+1])
			i = end

		case c == '-' && i+1 < n && query[i+1] == '-':
			end := strings.IndexByte(query[i:], '\n')
			if end < 0 {
				end = n - i - 1
			}
			sb.WriteString(query[i : i+end+1])
			i += end

		case c == ':' && i+1 < n && query[i+1] == ':':
			sb.WriteString("::")
			i++

		case c == ':' && i+1 < n && isIdentStart(query[i+1]):
			j := i + 1
			for j < n && isIdentChar(query[j]) {
				j++
			}
			name := query[i+1 : j]
			v, ok := params[name]
			if !ok {
				return "", nil, errs.Newf(errs.ErrKindInvalidInput, "no value for query parameter :%s", name)
			}
			args = append(args, v)
			sb.WriteString(d.placeholder(len(args)))
			i = j - 1

		default:
			sb.WriteByte(c)
		}
	}

	return sb.String(), args, nil
}

// closingQuote returns the index of the character closing the quoted section
// opened at query[start], or the last index when it is never closed.
// Doubled quote characters are escapes.
func closingQuote(query string, start int) int {
	open := query[start]
	closing := open
	if open == '[' {
		closing = ']'
	}
	for j := start + 1; j < len(query); j++ {
		if query[j] != closing {
			continue
		}
		if j+1 < len(query) && query[j+1] == closing {
			j++
			continue
		}
		return j
	}
	return len(query) - 1
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// QuoteIdent wraps a SQL identifier in double-quotes (ANSI standard).
// This safely handles reserved words and mixed-case names.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
