package dto

import (
	"github.com/fadilmartias/persona-match/internal/personality"
	"github.com/google/uuid"
)

type RegisterGuestRequest struct {
	Nickname          string              `json:"nickname" validate:"required,max=20"`
	PersonalityType   string              `json:"personalityType" validate:"omitempty,archetype"`
	PersonalityScores *personality.Scores `json:"personalityScores"`
}

type UserView struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	Email             string              `json:"email,omitempty"`
	AvatarURL         string              `json:"avatarUrl,omitempty"`
	PersonalityType   string              `json:"personalityType,omitempty"`
	PersonalityScores *personality.Scores `json:"personalityScores,omitempty"`
	Guest             bool                `json:"guest"`
}

type SessionResponse struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

type DirectoryEntry struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	PersonalityType string    `json:"personalityType,omitempty"`
	InterestTags    []string  `json:"interestTags"`
	MatchScore      *int      `json:"matchScore"`
	MatchID         *string   `json:"matchId"`
}

type ArchetypeView struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Quote        string   `json:"quote"`
	Traits       []string `json:"traits"`
	BestPartners []string `json:"bestPartners"`
}

type PersonalityResponse struct {
	PersonalityType string             `json:"personalityType"`
	Scores          personality.Scores `json:"scores"`
	Archetype       *ArchetypeView     `json:"archetype,omitempty"`
}

type QuizRequest struct {
	Answers []int `json:"answers" validate:"required,min=1"`
}
