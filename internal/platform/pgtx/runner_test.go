package pgtx

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock detected", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "lock not available", err: &pq.Error{Code: "55P03"}, want: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: false},
		{name: "wrapped serialization failure", err: fmt.Errorf("upsert match: %w", &pq.Error{Code: "40001"}), want: true},
		{name: "tx done", err: sql.ErrTxDone, want: true},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: false},
		{name: "plain error", err: fmt.Errorf("boom"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestRunnerRequiresHandle(t *testing.T) {
	r := New(nil)
	if err := r.Run(context.Background(), func(tx *sqlx.Tx) error { return nil }); err == nil {
		t.Fatalf("expected error for nil database handle")
	}
}
