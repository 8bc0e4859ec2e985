package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vendoreval/internal/consensus"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		name    string
		accepts int
		total   int
		want    consensus.Decision
		decided bool
	}{
		{"two accepts one reject", 2, 3, consensus.Accepted, true},
		{"one accept two rejects", 1, 3, consensus.Rejected, true},
		{"unanimous accept", 3, 3, consensus.Accepted, true},
		{"unanimous reject", 0, 3, consensus.Rejected, true},
		{"below quorum", 2, 2, "", false},
		{"single vote", 1, 1, "", false},
		{"no votes", 0, 0, "", false},
		{"exact tie rejects", 2, 4, consensus.Rejected, true},
		{"three of five accepts", 3, 5, consensus.Accepted, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, decided := consensus.Outcome(tc.accepts, tc.total)
			require.Equal(t, tc.decided, decided)
			require.Equal(t, tc.want, got)
		})
	}
}
