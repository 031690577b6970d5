package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteToken binds one email address to one pending feedback slot. The id
// doubles as the bearer capability mailed to the invitee, so it has to be
// unguessable.
type InviteToken struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(120);uniqueIndex;not null" validate:"required"`
	Redeemed  bool      `json:"redeemed" gorm:"default:false;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *InviteToken) BeforeCreate(tx *gorm.DB) (err error) {
	// Random v4, not v7: the id is a capability, so no timestamp bits
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	t.ID = id.String()
	return
}

func GetInviteTokenByID(db *gorm.DB, id string) (*InviteToken, error) {
	var token InviteToken
	result := db.Where("id = ?", id).First(&token)

	if result.Error != nil {
		return nil, result.Error
	}
	return &token, nil
}
