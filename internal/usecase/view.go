package usecase

import (
	"encoding/json"

	"github.com/fadilmartias/persona-match/internal/dto"
	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/personality"
	"gorm.io/datatypes"
)

func participantView(u *model.User) *dto.Participant {
	if u == nil {
		return nil
	}
	return &dto.Participant{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL, PersonalityType: u.PersonalityType}
}

func userView(u *model.User) dto.UserView {
	return dto.UserView{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		AvatarURL:         u.AvatarURL,
		PersonalityType:   u.PersonalityType,
		PersonalityScores: decodeScores(u.PersonalityScores),
		Guest:             u.IsGuest(),
	}
}

func directoryEntry(u *model.User) dto.DirectoryEntry {
	tags := matching.NormalizeTags(u.InterestTags)
	if tags == nil {
		tags = []string{}
	}
	return dto.DirectoryEntry{
		ID:              u.ID,
		Name:            u.Name,
		AvatarURL:       u.AvatarURL,
		PersonalityType: u.PersonalityType,
		InterestTags:    tags,
	}
}

func archetypeView(key personality.Key) *dto.ArchetypeView {
	arch, ok := personality.Lookup(key)
	if !ok {
		return nil
	}
	partners := make([]string, len(arch.BestPartners))
	for i, p := range arch.BestPartners {
		partners[i] = string(p)
	}
	return &dto.ArchetypeView{
		Key:          string(arch.Key),
		Name:         arch.Name,
		Quote:        arch.Quote,
		Traits:       arch.Traits,
		BestPartners: partners,
	}
}

func decodeScores(raw datatypes.JSON) *personality.Scores {
	if len(raw) == 0 {
		return nil
	}
	var s personality.Scores
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// rawOr returns raw unless it is empty, in which case fallback is used.
func rawOr(raw datatypes.JSON, fallback string) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(fallback)
	}
	return json.RawMessage(raw)
}
