package schema

import (
	"context"
	"regexp"
	"strings"

	"github.com/koustreak/dbinfo/internal/database"
)

// pgsqlVendor covers PostgreSQL, serial columns and identity columns alike.
type pgsqlVendor struct{}

func (pgsqlVendor) Name() string { return "pgsql" }

func (pgsqlVendor) CurrentSchema(ctx context.Context, conn database.Conn) (string, error) {
	return fetchScalar(ctx, conn, `SELECT CURRENT_SCHEMA`, nil)
}

// AutoincSQL matches serial columns (nextval default) and identity columns.
func (pgsqlVendor) AutoincSQL() string {
	return `(columns.column_default LIKE 'nextval(%' OR columns.is_identity = 'YES')`
}

// DecodeDefault strips the type casts and parentheses PostgreSQL adds to
// stored defaults: 'abc'::character varying → abc, (-1) → -1,
// '12345'::numeric → 12345. nextval(...), NULL::type and time-of-insert
// expressions decode to nil.
func (pgsqlVendor) DecodeDefault(raw any) *string {
	s, ok := rawString(raw)
	if !ok {
		return nil
	}

	v := strings.TrimSpace(s)
	for {
		prev := v
		v = stripParens(cutCast(v))
		if v == prev {
			break
		}
	}

	if v == "" || isNull(v) || isGeneratedMarker(v) ||
		strings.HasPrefix(strings.ToLower(v), "nextval(") {
		return nil
	}
	if lit, ok := unquote(v, '\''); ok {
		// 'now'::timestamp is evaluated at insert time as well.
		if strings.EqualFold(lit, "now") {
			return nil
		}
		return &lit
	}
	return &v
}

// AutoincSequence asks pg_get_serial_sequence about the first autoincrement
// column of the table.
func (pgsqlVendor) AutoincSequence(ctx context.Context, conn database.Conn, schemaName, table string) (string, error) {
	const q = `
		SELECT pg_get_serial_sequence(
			quote_ident(table_schema) || '.' || quote_ident(table_name),
			column_name
		)
		FROM information_schema.columns
		WHERE table_schema = :schema
		AND table_name = :table
		AND (column_default LIKE 'nextval(%' OR is_identity = 'YES')
		ORDER BY ordinal_position
		LIMIT 1`

	return fetchScalar(ctx, conn, q, map[string]any{"schema": schemaName, "table": table})
}

// castTypeRe matches the type name of a ::cast: character varying,
// numeric(7,3), integer[], timestamp(6) with time zone, public."MyType".
var castTypeRe = regexp.MustCompile(`^\s*[A-Za-z_"][\w\s."$]*(?:\(\s*\d+\s*(?:,\s*\d+\s*)?\)[\w\s]*)?(?:\[\s*\d*\s*\])*\s*$`)

// bareOperandRe matches an unquoted operand: a number, NULL, true.
var bareOperandRe = regexp.MustCompile(`^[-+]?[\w.]+$`)

// cutCast drops the ::type casts trailing a single operand: 'x'::text,
// ('7'::integer)::bigint, NULL::character varying. Anything else, such as
// 'a'::text || 'b'::text, is an expression and is returned unchanged.
func cutCast(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	var end int
	switch s[0] {
	case '\'', '"':
		end = quoteEnd(s, 0) + 1
	case '(':
		end = matchingParen(s) + 1
	default:
		end = strings.Index(s, "::")
		if end < 0 {
			return s
		}
	}
	if end <= 0 {
		return s
	}

	operand, rest := strings.TrimSpace(s[:end]), strings.TrimSpace(s[end:])
	if rest == "" || !strings.HasPrefix(rest, "::") {
		return s
	}
	if operand[0] != '\'' && operand[0] != '"' && operand[0] != '(' && !bareOperandRe.MatchString(operand) {
		return s
	}
	for _, typ := range strings.Split(rest[2:], "::") {
		if !castTypeRe.MatchString(typ) {
			return s
		}
	}
	return operand
}
