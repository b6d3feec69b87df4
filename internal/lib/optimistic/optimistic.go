// Package optimistic applies a change locally before the remote call confirms it.
package optimistic

import "context"

// Update describes one optimistic change. Set installs a value into local state;
// Commit performs the remote call.
type Update[T any] struct {
	Prior     T
	Candidate T
	Set       func(T)
	Commit    func(ctx context.Context) error
}

// Apply sets Candidate, runs Commit and restores Prior verbatim if it fails. The
// Commit error is returned unchanged.
func Apply[T any](ctx context.Context, u Update[T]) error {
	u.Set(u.Candidate)
	if err := u.Commit(ctx); err != nil {
		u.Set(u.Prior)
		return err
	}
	return nil
}
