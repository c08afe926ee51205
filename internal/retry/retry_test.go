package retry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MustafaBasol/crm-sub007/internal/retry"
)

var errDup = errors.New("duplicate")

func isDup(err error) bool { return errors.Is(err, errDup) }

func TestDo(t *testing.T) {
	tests := []struct {
		name         string
		max          int
		failures     int
		failWith     error
		wantErr      error
		wantAttempts int
	}{
		{name: "first try", max: 5, failures: 0, wantAttempts: 1},
		{name: "recovers", max: 5, failures: 4, failWith: errDup, wantAttempts: 5},
		{name: "exhausts", max: 3, failures: 10, failWith: errDup, wantErr: errDup, wantAttempts: 3},
		{name: "non retryable stops", max: 5, failures: 10, failWith: errors.New("boom"), wantAttempts: 1},
		{name: "zero treated as one", max: 0, failures: 10, failWith: errDup, wantErr: errDup, wantAttempts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []int
			err := retry.Do(context.Background(), tt.max, isDup, func(_ context.Context, attempt int) error {
				seen = append(seen, attempt)
				if attempt <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			assert.Len(t, seen, tt.wantAttempts)
			assert.Equal(t, 1, seen[0])
			switch {
			case tt.wantErr != nil:
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.failures >= tt.wantAttempts && tt.failWith != nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, 5, isDup, func(_ context.Context, _ int) error {
		calls++
		cancel()
		return errDup
	})
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}
