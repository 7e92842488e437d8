package entities

import "time"

type BorrowStatus string

const (
	StatusBorrowed BorrowStatus = "borrowed"
	StatusReturned BorrowStatus = "returned"
	StatusOverdue  BorrowStatus = "overdue"
)

// Borrowing links a book to a member for one loan. MemberID is nullable so
// that returned loans survive member deletion as historical records.
type Borrowing struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	BookID     uint         `gorm:"index;not null" json:"book_id"`
	MemberID   *uint        `gorm:"index" json:"member_id"`
	BorrowDate time.Time    `json:"borrow_date"`
	DueDate    time.Time    `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time   `json:"return_date"`
	Status     BorrowStatus `gorm:"size:20;default:'borrowed'" json:"status"`
	FineAmount float64      `gorm:"default:0" json:"fine_amount"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Book   Book    `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Borrowing) TableName() string {
	return "borrowings"
}

// Active reports whether the loan is still open.
func (b *Borrowing) Active() bool {
	return b.Status == StatusBorrowed && b.ReturnDate == nil
}
