// Package funcutil collects small control-flow helpers shared by
// pkg/util/retry and other callers that need to check context liveness
// without pulling in a heavier dependency.
package funcutil

import "context"

// CheckCtxValid reports whether ctx is still usable — neither canceled nor
// past its deadline. It never blocks.
func CheckCtxValid(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	default:
		return true
	}
}
