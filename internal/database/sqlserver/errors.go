package sqlserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/koustreak/dbinfo/internal/errs"
	mssql "github.com/microsoft/go-mssqldb"
)

// SQL Server error numbers
// Full list: https://learn.microsoft.com/sql/relational-databases/errors-events/database-engine-events-and-errors
const (
	errLoginFailed      = 18456
	errPermissionDenied = 229
	errServerPrincipal  = 916
	errCannotOpenDB     = 4060
)

// mapError converts a go-mssqldb error into an *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	// Already classified further down, e.g. by database.ScanRows.
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		kind := errs.ErrKindQueryFailed
		switch msErr.Number {
		case errLoginFailed, errPermissionDenied, errServerPrincipal:
			kind = errs.ErrKindPermissionDenied
		case errCannotOpenDB:
			kind = errs.ErrKindConnectionFailed
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, msErr.Message), err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
