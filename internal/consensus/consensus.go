// Package consensus derives a vendor's final disposition from
// decision-maker votes.
package consensus

// Quorum is the minimum number of votes required before a final
// decision is derived. Below it the vendor stays undecided.
const Quorum = 3

type Decision string

const (
	Accepted Decision = "ACCEPTED"
	Rejected Decision = "REJECTED"
)

// Outcome returns the final decision for a vote tally. The second return
// is false while the quorum has not been reached.
//
// Acceptance requires strictly more than half of the votes: an exact
// 50% split resolves to Rejected.
func Outcome(accepts, total int) (Decision, bool) {
	if total < Quorum {
		return "", false
	}
	if float64(accepts)/float64(total)*100 > 50 {
		return Accepted, true
	}
	return Rejected, true
}
