package entities

import "time"

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"index;size:255;not null" json:"title"`
	Author          string    `gorm:"index;size:255;not null" json:"author"`
	ISBN            string    `gorm:"index;size:20" json:"isbn,omitempty"`
	PublishedYear   int       `json:"published_year,omitempty"`
	// No gorm defaults here: a default tag makes gorm omit the column on
	// insert when the value is zero, turning available_copies=0 into 1.
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Borrowings []Borrowing `gorm:"foreignKey:BookID" json:"-"`
}

func (Book) TableName() string {
	return "books"
}
