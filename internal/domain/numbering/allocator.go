// Package numbering provides scope-keyed sequence allocation contracts and
// the display formats for order and invoice numbers.
package numbering

import "context"

// SequenceAllocator returns the next unused sequence value for a scope key.
// Implementations must serialize allocations within one scope so that two
// concurrent requests never receive the same value. Allocations for
// different scopes are independent.
type SequenceAllocator interface {
	// Next allocates the next sequence value for the scope, starting at 1.
	Next(ctx context.Context, scope string) (int64, error)
}

// MaxRetries bounds caller-driven retries after an allocation conflict.
// Infinite retry is disallowed; conflicts beyond this bound surface to the user.
const MaxRetries = 3
