package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/koustreak/dbinfo/internal/errs"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// mapError converts a go-sqlite3 error into an *errs.Error.
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

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		kind := errs.ErrKindQueryFailed
		switch sqliteErr.Code {
		case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
			kind = errs.ErrKindPermissionDenied
		case sqlite3.ErrCantOpen, sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			kind = errs.ErrKindConnectionFailed
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrInterrupt:
			kind = errs.ErrKindTimeout
		}
		return errs.Wrap(kind, fmt.Sprintf("%s: %s", msg, sqliteErr.Error()), err)
	}

	return errs.Wrap(errs.ErrKindUnknown, msg, err)
}
