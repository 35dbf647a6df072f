package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Choice values follow the hub convention: 1-indexed single choice.
const (
	ChoiceApprove = 1
	ChoiceReject  = 2
)

// Client relays proposals and votes to a Snapshot-style off-chain
// voting hub. The relay is strictly best-effort: the lifecycle engine
// keeps its own authoritative tallies and callers are expected to log
// and swallow errors from here.
type Client struct {
	http  *http.Client
	hub   string
	space string
}

func NewClient(httpClient *http.Client, hub, space string) *Client {
	return &Client{
		http:  httpClient,
		hub:   strings.TrimRight(strings.TrimSpace(hub), "/"),
		space: strings.TrimSpace(space),
	}
}

// Enabled reports whether a hub and space are configured. When false
// every relay call is a silent no-op.
func (c *Client) Enabled() bool {
	return c != nil && c.http != nil && c.hub != "" && c.space != ""
}

type ProposalInput struct {
	Proposer string
	Title    string
	Body     string
	Duration time.Duration
}

type proposalReceipt struct {
	ID string `json:"id"`
}

func (c *Client) CreateProposal(ctx context.Context, in ProposalInput) (string, error) {
	if !c.Enabled() {
		return "", nil
	}
	if strings.TrimSpace(in.Title) == "" {
		return "", fmt.Errorf("proposal title is required")
	}
	if in.Duration <= 0 {
		in.Duration = 10 * time.Minute
	}

	now := time.Now().UTC().Unix()
	payload := map[string]any{
		"space":    c.space,
		"type":     "single-choice",
		"title":    in.Title,
		"body":     in.Body,
		"choices":  []string{"Approve Match", "Reject Match"},
		"start":    now,
		"end":      now + int64(in.Duration.Seconds()),
		"from":     strings.ToLower(in.Proposer),
		"app":      "chained-together",
	}

	var receipt proposalReceipt
	if err := c.post(ctx, "/api/msg", payload, &receipt); err != nil {
		return "", err
	}

	return receipt.ID, nil
}

func (c *Client) CastVote(ctx context.Context, proposalID, voter string, choice int) error {
	if !c.Enabled() {
		return nil
	}
	if strings.TrimSpace(proposalID) == "" || strings.TrimSpace(voter) == "" {
		return fmt.Errorf("invalid relay vote payload")
	}
	if choice != ChoiceApprove && choice != ChoiceReject {
		return fmt.Errorf("invalid relay vote choice %d", choice)
	}

	payload := map[string]any{
		"space":    c.space,
		"proposal": proposalID,
		"choice":   choice,
		"from":     strings.ToLower(voter),
		"app":      "chained-together",
	}

	return c.post(ctx, "/api/msg", payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.hub+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call voting hub: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("voting hub returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode relay response: %w", err)
		}
	}

	return nil
}
