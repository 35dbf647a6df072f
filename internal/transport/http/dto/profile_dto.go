package dto

type ProfileAnswers struct {
	Interests          []string `json:"interests"`
	Values             []string `json:"values"`
	CommunicationStyle string   `json:"communication_style"`
	Dealbreakers       []string `json:"dealbreakers"`
	Lifestyle          []string `json:"lifestyle"`
	Goals              string   `json:"goals"`
}

type ProfileSaveRequest struct {
	Name     string         `json:"name"`
	Bio      string         `json:"bio"`
	Age      int            `json:"age"`
	Location string         `json:"location"`
	Answers  ProfileAnswers `json:"answers"`
}

// ProfileResponse is the owner's view. Structured answers are included
// here and nowhere else.
type ProfileResponse struct {
	WalletAddress string         `json:"wallet_address"`
	Name          string         `json:"name"`
	Bio           string         `json:"bio"`
	Age           int            `json:"age"`
	Location      string         `json:"location"`
	ImageURL      string         `json:"image_url,omitempty"`
	Answers       ProfileAnswers `json:"answers"`
}

// ProfileCardResponse is the public view shown to voters.
type ProfileCardResponse struct {
	WalletAddress string `json:"wallet_address"`
	Name          string `json:"name"`
	Bio           string `json:"bio"`
	Age           int    `json:"age,omitempty"`
	Location      string `json:"location,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}
