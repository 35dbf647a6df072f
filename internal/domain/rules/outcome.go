package rules

import "github.com/RithvikReddySiddenki/ChainedTogether/internal/domain/enums"

// DecideOutcome finalizes a proposal once its voting window elapses.
// Approved when the yes tally reaches the threshold, or when yes holds
// a strict majority. Everything else, including a tie and zero votes,
// is rejected.
func DecideOutcome(yesVotes, noVotes, approvalThreshold int) enums.ProposalStatus {
	if approvalThreshold > 0 && yesVotes >= approvalThreshold {
		return enums.ProposalStatusApproved
	}
	if yesVotes > noVotes {
		return enums.ProposalStatusApproved
	}
	return enums.ProposalStatusRejected
}
