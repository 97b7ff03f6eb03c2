package database

import (
	"context"
	"errors"

	"github.com/koustreak/dbinfo/internal/errs"
)

// ScanRows reads all rows from the result set and returns them as a slice
// of maps keyed by column name. []byte values (how database/sql drivers
// hand back text) are converted to string so callers see one representation
// for character data regardless of driver.
//
// The returned slice is always non-nil (empty slice on zero rows).
// ScanRows always closes the Rows; callers do not need to call Close().
func ScanRows(rows Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	result := make([]map[string]any, 0)

	for rows.Next() {
		dest, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = dest[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, iterationError(err)
	}

	return result, nil
}

// ScanColumn reads the first column of every row. Like ScanRows it always
// closes rows and never returns a nil slice.
func ScanColumn(rows Rows) ([]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}
	if len(columns) == 0 {
		return nil, errs.New(errs.ErrKindQueryFailed, "query returned no columns")
	}

	result := make([]any, 0)
	for rows.Next() {
		dest, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		result = append(result, dest[0])
	}

	if err := rows.Err(); err != nil {
		return nil, iterationError(err)
	}

	return result, nil
}

// scanValues scans the current row into *any targets so the driver can
// write whatever type it natively produces.
func scanValues(rows Rows, width int) ([]any, error) {
	dest := make([]any, width)
	destPtrs := make([]any, width)
	for i := range dest {
		destPtrs[i] = &dest[i]
	}

	if err := rows.Scan(destPtrs...); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
	}

	for i, v := range dest {
		if b, ok := v.([]byte); ok {
			dest[i] = string(b)
		}
	}
	return dest, nil
}

// iterationError classifies an error reported by Rows.Err. The query has
// already started, so anything but a canceled context is a failed query.
func iterationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, "row iteration interrupted", err)
	}
	return errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
}
