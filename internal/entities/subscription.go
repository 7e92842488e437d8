package entities

import "time"

// Subscription is a mailing-list opt-in record, optionally linked to a member.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"index;size:255;not null" json:"email"`
	MemberID     *uint     `gorm:"index" json:"member_id"`
	IsActive     bool      `gorm:"default:true;not null" json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
