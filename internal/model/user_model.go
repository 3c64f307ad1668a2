package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GuestPrefix marks identity keys minted for self-registered users.
const GuestPrefix = "guest_"

type User struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityKey       string           `gorm:"type:varchar(191);uniqueIndex;not null" json:"identity_key"`
	Name              string           `gorm:"type:varchar(100)" json:"name"`
	Email             string           `gorm:"type:varchar(191)" json:"email"`
	AvatarURL         string           `gorm:"type:text" json:"avatar_url"`
	InterestTags      datatypes.JSON   `json:"interest_tags"`
	InterestEmbedding *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	EmbeddingSkipped  bool             `gorm:"not null;default:false" json:"-"`
	PersonalityType   string           `gorm:"type:varchar(30)" json:"personality_type"`
	PersonalityScores datatypes.JSON   `json:"personality_scores"`
	AccessToken       string           `gorm:"type:text" json:"-"`
	RefreshToken      string           `gorm:"type:text" json:"-"`
	TokenExpiresAt    time.Time        `json:"-"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (u *User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsGuest reports whether the user has no usable personal agent credentials.
func (u *User) IsGuest() bool {
	return u.AccessToken == "" || strings.HasPrefix(u.IdentityKey, GuestPrefix)
}

// HasInterestTags is false for a missing cache as well as for a cached empty list.
func (u *User) HasInterestTags() bool {
	if len(u.InterestTags) == 0 {
		return false
	}
	var tags []json.RawMessage
	if err := json.Unmarshal(u.InterestTags, &tags); err != nil {
		return false
	}
	return len(tags) > 0
}
