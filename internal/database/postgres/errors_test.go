package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/koustreak/dbinfo/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: errs.ErrKindTimeout},
		{name: "canceled", err: fmt.Errorf("wrapped: %w", context.Canceled), want: errs.ErrKindTimeout},
		{name: "no rows", err: pgx.ErrNoRows, want: errs.ErrKindNotFound},
		{name: "insufficient privilege", err: &pgconn.PgError{Code: "42501", Message: "permission denied"}, want: errs.ErrKindPermissionDenied},
		{name: "bad password", err: &pgconn.PgError{Code: "28P01"}, want: errs.ErrKindPermissionDenied},
		{name: "query canceled", err: &pgconn.PgError{Code: "57014"}, want: errs.ErrKindTimeout},
		{name: "connection exception", err: &pgconn.PgError{Code: "08006"}, want: errs.ErrKindConnectionFailed},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}, want: errs.ErrKindQueryFailed},
		{name: "already classified", err: errs.New(errs.ErrKindInvalidInput, "bad"), want: errs.ErrKindInvalidInput},
		{name: "network", err: errors.New("dial tcp: connection refused"), want: errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query failed")
			assert.Equal(t, tt.want, errs.KindOf(got))
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, mapError(nil, "noop"))
}

func TestMapError_KeepsServerMessage(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "42P01", Message: `relation "x" does not exist`}, "query failed")
	assert.Contains(t, err.Error(), `relation "x" does not exist`)

	var pgErr *pgconn.PgError
	assert.ErrorAs(t, err, &pgErr)
}

func TestMapError_KeepsClassifiedError(t *testing.T) {
	scanErr := errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"})

	got := mapError(scanErr, "failed to read result set")
	assert.Same(t, scanErr, got)
}
