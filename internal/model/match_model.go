package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchStatusProcessing MatchStatus = "processing"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusFailed     MatchStatus = "failed"
)

func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusFailed
}

// Match is one compatibility evaluation where UserA initiated against UserB.
type Match struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserAID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_a_id"`
	UserBID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_b_id"`
	Status    MatchStatus    `gorm:"type:varchar(20);index;not null" json:"status"`
	Score     int            `json:"score"`
	Report    datatypes.JSON `json:"report"`
	ChatLog   datatypes.JSON `json:"chat_log"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (m *Match) TableName() string {
	return "matches"
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *Match) HasUser(userID uuid.UUID) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m *Match) OtherUserID(userID uuid.UUID) (uuid.UUID, bool) {
	switch userID {
	case m.UserAID:
		return m.UserBID, true
	case m.UserBID:
		return m.UserAID, true
	}
	return uuid.Nil, false
}
