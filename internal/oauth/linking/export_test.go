package linking

import "testing"

// NewTestGuard exposes newTestGuard to the external linking_test package.
func NewTestGuard(t *testing.T) *Guard {
	return newTestGuard(t)
}
