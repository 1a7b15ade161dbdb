package mtrand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestUint32MatchesReferenceMT19937Sequence pins Source's output against the
// canonical MT19937 seed=1 test vector (as published with the original
// mt19937ar.c reference implementation), so a tempering or recurrence bug
// that still happens to be self-consistent would be caught, not just a
// fresh-vs-fresh comparison.
func TestUint32MatchesReferenceMT19937Sequence(t *testing.T) {
	s := New(1)
	want := []uint32{
		1791095845,
		4282876139,
		3093770124,
		4005303368,
		491263,
		550290313,
	}
	for i, w := range want {
		require.Equal(t, w, s.Uint32(), "output %d", i)
	}
}
