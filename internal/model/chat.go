package model

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a conversation history
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest represents one user turn
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
}

// ChatResponse represents the assistant's answer to one turn
type ChatResponse struct {
	SessionID string             `json:"session_id"`
	Reply     string             `json:"reply"`
	Entities  *ExtractedEntities `json:"entities,omitempty"`
	Report    *Report            `json:"report,omitempty"`
	Took      int64              `json:"took_ms"`
}

// Report is the structured urea reduction recommendation
type Report struct {
	Crop            string  `json:"crop"`
	District        string  `json:"district"`
	State           string  `json:"state"`
	CropRequirement float64 `json:"crop_requirement_kg_ha"`
	SoilNitrogen    float64 `json:"soil_nitrogen_kg_ha"`
	ExcessNitrogen  float64 `json:"excess_nitrogen_kg_ha"`
	UreaReduction   float64 `json:"urea_reduction_kg_ha"`
	Text            string  `json:"text"`
}

// SessionHistory is the stored conversation for one session
type SessionHistory struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
