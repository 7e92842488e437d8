package entities

import "time"

type Member struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone          string    `gorm:"size:20" json:"phone,omitempty"`
	Address        string    `gorm:"type:text" json:"address,omitempty"`
	ProfilePicture string    `gorm:"type:text" json:"profile_picture,omitempty"`
	MembershipDate time.Time `json:"membership_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Borrowings []Borrowing `gorm:"foreignKey:MemberID" json:"-"`
}

func (Member) TableName() string {
	return "members"
}
