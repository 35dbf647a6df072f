package model

import "time"

// Answers holds the structured intake answers. They are private to the
// owner: only the derived bio and tag lists ever leave the profiles
// service.
type Answers struct {
	Interests          []string `json:"interests"`
	Values             []string `json:"values"`
	CommunicationStyle string   `json:"communicationStyle"`
	Dealbreakers       []string `json:"dealbreakers"`
	Lifestyle          []string `json:"lifestyle"`
	Goals              string   `json:"goals"`
}

type Profile struct {
	WalletAddress string
	Name          string
	Bio           string
	Age           int
	Location      string
	ImageURL      string
	Answers       Answers
	Embedding     []float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
