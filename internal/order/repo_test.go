package order

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPgError(t *testing.T) {
	other := errors.New("connection reset")
	cases := []struct {
		name      string
		err       error
		malformed error
		want      error
	}{
		{"open order exists", &pgconn.PgError{Code: "23505"}, ErrNotFound, ErrOpenExists},
		{"missing table", &pgconn.PgError{Code: "23503"}, ErrNotFound, ErrUnknownTable},
		{"malformed table id on create", &pgconn.PgError{Code: "22P02"}, ErrUnknownTable, ErrUnknownTable},
		{"malformed order id on lookup", fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"}), ErrNotFound, ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: "40001"}, ErrNotFound, nil},
		{"not a pg error", other, ErrNotFound, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapPgError(tc.err, tc.malformed)
			if tc.want == nil {
				assert.Same(t, tc.err, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}
