package entities

import "time"

// Testimonial is a reader review of a book. New testimonials start
// unapproved and stay invisible until an admin approves them.
type Testimonial struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"index;not null" json:"book_id"`
	MemberID   *uint     `gorm:"index" json:"member_id"`
	ReaderName string    `gorm:"size:255;not null" json:"reader_name"`
	Rating     int       `gorm:"not null" json:"rating"` // 1-5
	Comment    string    `gorm:"type:text;not null" json:"comment"`
	IsApproved bool      `gorm:"default:false;not null" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}
