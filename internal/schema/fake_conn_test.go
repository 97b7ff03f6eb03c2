package schema

import (
	"context"
	"strings"
	"sync"
)

// call records one query sent through fakeConn.
type call struct {
	query  string
	params map[string]any
}

// fakeConn answers queries from canned results keyed by a substring of the
// query text. The first matching key wins, in registration order.
type fakeConn struct {
	driver string

	mu      sync.Mutex
	calls   []call
	rows    []cannedRows
	columns []cannedColumn
	err     error
}

type cannedRows struct {
	match string
	rows  []map[string]any
}

type cannedColumn struct {
	match  string
	values []any
}

func newFakeConn(driver string) *fakeConn {
	return &fakeConn{driver: driver}
}

func (f *fakeConn) onAll(match string, rows ...map[string]any) *fakeConn {
	f.rows = append(f.rows, cannedRows{match: match, rows: rows})
	return f
}

func (f *fakeConn) onColumn(match string, values ...any) *fakeConn {
	f.columns = append(f.columns, cannedColumn{match: match, values: values})
	return f
}

func (f *fakeConn) DriverName() string { return f.driver }

func (f *fakeConn) FetchAll(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	f.record(query, params)
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.rows {
		if strings.Contains(query, c.match) {
			return append([]map[string]any{}, c.rows...), nil
		}
	}
	return []map[string]any{}, nil
}

func (f *fakeConn) FetchColumn(_ context.Context, query string, params map[string]any) ([]any, error) {
	f.record(query, params)
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.columns {
		if strings.Contains(query, c.match) {
			return append([]any{}, c.values...), nil
		}
	}
	return []any{}, nil
}

func (f *fakeConn) record(query string, params map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{query: query, params: params})
}

// lastCall returns the most recent query whose text contains match.
func (f *fakeConn) lastCall(match string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if strings.Contains(f.calls[i].query, match) {
			return f.calls[i], true
		}
	}
	return call{}, false
}

// columnRow builds one row of the information_schema columns query.
func columnRow(name, typ string, size, scale any, notnull int, def any, autoinc, primary int) map[string]any {
	return map[string]any{
		"_name":    name,
		"_type":    typ,
		"_size":    size,
		"_scale":   scale,
		"_notnull": notnull,
		"_default": def,
		"_autoinc": autoinc,
		"_primary": primary,
	}
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }
