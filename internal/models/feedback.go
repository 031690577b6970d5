package models

import (
	"time"
)

// FeedbackRecord is the text a user submitted when redeeming their invite.
// It shares its id with the InviteToken it redeems and exists exactly when
// that token is marked redeemed.
type FeedbackRecord struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(120);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"-"`
}

// No BeforeCreate hook on purpose: the id is always assigned from the
// redeemed token, never generated.
