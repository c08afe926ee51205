package tx

import "context"

// Manager runs fn inside one database transaction. Repositories called with
// the ctx passed to fn join that transaction. A returned error rolls back.
type Manager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
