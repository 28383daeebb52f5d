// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain uses goleak to verify persist's parallel trie-commit
// goroutines (see persist's errgroup.Group) don't leak past the tests
// that exercise them.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
