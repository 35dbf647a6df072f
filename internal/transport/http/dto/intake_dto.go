package dto

type IntakeStartResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type IntakeReplyRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type IntakeReplyResponse struct {
	Message string   `json:"message"`
	Done    bool     `json:"done"`
	Summary []string `json:"summary,omitempty"`
}
