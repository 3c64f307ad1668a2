package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type StartMatchRequest struct {
	TargetUserID string `json:"targetUserId" validate:"required"`
}

type StartMatchResponse struct {
	MatchID string `json:"matchId"`
	Status  string `json:"status"`
}

type Participant struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	PersonalityType string    `json:"personalityType,omitempty"`
}

// MatchView is the polling payload. Report and ChatLog are emitted as parsed JSON.
type MatchView struct {
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	Score     int             `json:"score"`
	Report    json.RawMessage `json:"report"`
	ChatLog   json.RawMessage `json:"chatLog"`
	CreatedAt time.Time       `json:"createdAt"`
	UserA     *Participant    `json:"userA,omitempty"`
	UserB     *Participant    `json:"userB,omitempty"`
}

type MatchSummary struct {
	ID            uuid.UUID    `json:"id"`
	Status        string       `json:"status"`
	Score         int          `json:"score"`
	InitiatedByMe bool         `json:"initiatedByMe"`
	Partner       *Participant `json:"partner,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}
