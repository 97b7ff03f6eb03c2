package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koustreak/dbinfo/internal/errs"
)

// Drivers hand catalog values back as whatever Go type they natively decode
// to (int32 from pgx, int64 from database/sql, uint64 for MySQL unsigned
// columns, strings, occasionally bools). The helpers below coerce them.

// field returns row[key], failing when the catalog row lacks the alias.
func field(row map[string]any, key string) (any, error) {
	v, ok := row[key]
	if !ok {
		return nil, errs.Newf(errs.ErrKindQueryFailed, "catalog row has no %s field", key)
	}
	return v, nil
}

// rawString returns v as text; ok is false for NULL.
func rawString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

func toString(v any, name string) (string, error) {
	s, ok := rawString(v)
	if !ok {
		return "", errs.Newf(errs.ErrKindQueryFailed, "catalog field %s is NULL", name)
	}
	return s, nil
}

// toOptionalInt converts a nullable integer catalog value.
func toOptionalInt(v any, name string) (*int, error) {
	var n int64
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		n = int64(x)
	case float64:
		n = int64(x)
	case string, []byte:
		s, _ := rawString(x)
		parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, fmt.Sprintf("catalog field %s is not an integer", name), err)
		}
		n = parsed
	default:
		return nil, errs.Newf(errs.ErrKindQueryFailed, "catalog field %s has unexpected type %T", name, v)
	}
	i := int(n)
	return &i, nil
}

// toBool converts a 0/1, boolean or t/f catalog value.
func toBool(v any, name string) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string, []byte:
		s, _ := rawString(x)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "t", "true", "y", "yes":
			return true, nil
		case "0", "f", "false", "n", "no", "":
			return false, nil
		}
		return false, errs.Newf(errs.ErrKindQueryFailed, "catalog field %s is not a boolean: %q", name, s)
	}
	n, err := toOptionalInt(v, name)
	if err != nil {
		return false, err
	}
	return *n != 0, nil
}

// --- default-value decoding helpers ---

// keywordMarkers are time-of-insert defaults written without parentheses.
var keywordMarkers = map[string]bool{
	"CURRENT_TIMESTAMP": true,
	"CURRENT_DATE":      true,
	"CURRENT_TIME":      true,
	"LOCALTIMESTAMP":    true,
	"LOCALTIME":         true,
}

// functionMarkers are time-of-insert and generated defaults written as
// function calls.
var functionMarkers = map[string]bool{
	"NOW":                   true,
	"CURDATE":               true,
	"CURTIME":               true,
	"UTC_TIMESTAMP":         true,
	"UUID":                  true,
	"TRANSACTION_TIMESTAMP": true,
	"STATEMENT_TIMESTAMP":   true,
	"CLOCK_TIMESTAMP":       true,
	"GEN_RANDOM_UUID":       true,
	"GETDATE":               true,
	"GETUTCDATE":            true,
	"SYSDATETIME":           true,
	"SYSUTCDATETIME":        true,
	"SYSDATETIMEOFFSET":     true,
	"NEWID":                 true,
	"NEWSEQUENTIALID":       true,
}

// isGeneratedMarker reports whether expr is a time-of-insert or generated
// default such as CURRENT_TIMESTAMP, CURRENT_TIMESTAMP(6) or now().
func isGeneratedMarker(expr string) bool {
	e := strings.ToUpper(strings.TrimSpace(expr))
	name, args, hasParens := strings.Cut(e, "(")
	name = strings.TrimSpace(name)
	if !hasParens {
		return keywordMarkers[name]
	}
	if !strings.HasSuffix(args, ")") {
		return false
	}
	args = strings.TrimSpace(strings.TrimSuffix(args, ")"))
	if keywordMarkers[name] {
		_, err := strconv.Atoi(args)
		return args == "" || err == nil
	}
	return functionMarkers[name] && args == ""
}

// isNull reports whether expr is the literal NULL.
func isNull(expr string) bool {
	return strings.EqualFold(strings.TrimSpace(expr), "NULL")
}

// quoteEnd returns the index closing the quoted literal that starts at
// s[start], treating doubled quotes as escapes, or -1 if it never closes.
func quoteEnd(s string, start int) int {
	q := s[start]
	for j := start + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j
	}
	return -1
}

// unquote returns the content of s when s is exactly one q-quoted literal.
func unquote(s string, q byte) (string, bool) {
	if len(s) < 2 || s[0] != q || quoteEnd(s, 0) != len(s)-1 {
		return s, false
	}
	doubled := string([]byte{q, q})
	return strings.ReplaceAll(s[1:len(s)-1], doubled, string(q)), true
}

// stripParens removes parentheses that wrap the whole of s, repeatedly:
// "((12345))" → "12345", but "(a) + (b)" is left alone.
func stripParens(s string) string {
	for {
		s = strings.TrimSpace(s)
		if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' || matchingParen(s) != len(s)-1 {
			return s
		}
		s = s[1 : len(s)-1]
	}
}

// matchingParen returns the index of the parenthesis closing s[0], skipping
// quoted sections, or -1.
func matchingParen(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'', '"':
			end := quoteEnd(s, i)
			if end < 0 {
				return -1
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
