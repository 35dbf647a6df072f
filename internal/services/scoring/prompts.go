package scoring

import (
	"fmt"
	"strings"
)

const scorePairSystemPrompt = `You are a compatibility scoring engine for a social matching DAO.
Given two user bios, evaluate how well they would match as a pair.
Return ONLY valid JSON with this exact schema:
{
  "score": <integer 0-100>,
  "reasons": ["<reason1>", "<reason2>", ...]
}
Score guide:
 0-20  = very incompatible
 21-40 = weak match
 41-60 = moderate match
 61-80 = strong match
 81-100 = exceptional match
Provide 2-4 short, specific reasons based on their bios.`

const rankCandidatesSystemPrompt = `You are a compatibility ranking engine for a social matching DAO.
Given one target user bio and a list of candidate bios, rank the candidates
by compatibility with the target user.
Return ONLY valid JSON with this exact schema:
{
  "rankings": [
    { "wallet": "<wallet_address>", "score": <integer 0-100>, "reasons": ["<r1>", "<r2>"] },
    ...
  ]
}
Order by score descending. Provide 1-3 short reasons per candidate.
Only include the top candidates as requested.`

func scorePairUserPrompt(a, b Card) string {
	return fmt.Sprintf("User A (%s): %s\n\nUser B (%s): %s\n\nScore this pair.", a.Name, a.Bio, b.Name, b.Bio)
}

func rankCandidatesUserPrompt(user Card, candidates []Card, k int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Target user (%s): %s\n\nCandidates:\n", user.Name, user.Bio)
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. wallet=%s | %s: %s\n", i+1, c.Wallet, c.Name, c.Bio)
	}
	fmt.Fprintf(&sb, "\nRank the top %d candidates for the target user.", k)
	return sb.String()
}
