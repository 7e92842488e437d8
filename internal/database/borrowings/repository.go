// Package borrowings implements the lending workflow: borrowing a book,
// returning it, and the paired availability bookkeeping on the book row.
//
// Every mutation runs inside a single write transaction so the borrowing row
// and the book counter commit together or not at all. The availability check
// on borrow is check-then-act: two concurrent requests for the last copy can
// both pass the check before either commits. The decrement itself is guarded
// (UPDATE ... WHERE available_copies > 0), so the counter can never go
// negative; under default isolation the loser of the race fails the guarded
// update and the transaction rolls back.
package borrowings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var (
	ErrBookUnavailable = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed = errors.New("member already has this book borrowed")
	ErrAlreadyReturned = errors.New("book has already been returned")
)

type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

// Filter narrows List results; zero values mean "no filter".
type Filter struct {
	Status   entities.BorrowStatus
	MemberID uint
	BookID   uint
}

func (r *Repository) List(skip, limit int, filter Filter) ([]entities.Borrowing, error) {
	query := r.read.Preload("Book").Preload("Member")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	var borrowings []entities.Borrowing
	err := query.Offset(skip).Limit(limit).Find(&borrowings).Error
	return borrowings, err
}

func (r *Repository) GetByID(id uint) (*entities.Borrowing, error) {
	var borrowing entities.Borrowing
	err := r.read.Preload("Book").Preload("Member").First(&borrowing, id).Error
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// ActiveForMember lists a member's open loans ordered by the soonest due
// date, with books eagerly loaded.
func (r *Repository) ActiveForMember(memberID uint) ([]entities.Borrowing, error) {
	var borrowings []entities.Borrowing
	err := r.read.Preload("Book").Preload("Member").
		Where("member_id = ? AND status = ?", memberID, entities.StatusBorrowed).
		Order("due_date ASC").
		Find(&borrowings).Error
	return borrowings, err
}

// DueSoon lists open loans whose due date falls between now and the given
// number of days ahead. Used by the reminder job.
func (r *Repository) DueSoon(days int) ([]entities.Borrowing, error) {
	now := today()
	cutoff := now.AddDate(0, 0, days+1)
	var borrowings []entities.Borrowing
	err := r.read.Preload("Book").Preload("Member").
		Where("status = ? AND due_date >= ? AND due_date < ?", entities.StatusBorrowed, now, cutoff).
		Order("due_date ASC").
		Find(&borrowings).Error
	return borrowings, err
}

// Overdue lists open loans whose due date has already passed.
func (r *Repository) Overdue() ([]entities.Borrowing, error) {
	var borrowings []entities.Borrowing
	err := r.read.Preload("Book").Preload("Member").
		Where("status = ? AND due_date < ?", entities.StatusBorrowed, today()).
		Order("due_date ASC").
		Find(&borrowings).Error
	return borrowings, err
}

// Create records a new loan and decrements the book's availability in the
// same transaction.
func (r *Repository) Create(bookID, memberID uint, dueDate time.Time) (*entities.Borrowing, error) {
	var borrowing entities.Borrowing
	err := r.write.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}
		var member entities.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			return err
		}

		if book.AvailableCopies <= 0 {
			return ErrBookUnavailable
		}

		var active int64
		err := tx.Model(&entities.Borrowing{}).
			Where("book_id = ? AND member_id = ? AND status = ?", bookID, memberID, entities.StatusBorrowed).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadyBorrowed
		}

		borrowing = entities.Borrowing{
			BookID:     bookID,
			MemberID:   &memberID,
			BorrowDate: today(),
			DueDate:    dueDate,
			Status:     entities.StatusBorrowed,
		}
		if err := tx.Create(&borrowing).Error; err != nil {
			return err
		}

		result := tx.Model(&entities.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// Return closes a loan: sets the return date, computes the overdue fine
// (override wins when provided) and restores the book's availability.
func (r *Repository) Return(id uint, fineOverride *float64, dailyRate float64) (*entities.Borrowing, error) {
	var borrowing entities.Borrowing
	err := r.write.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&borrowing, id).Error; err != nil {
			return err
		}
		if borrowing.Status == entities.StatusReturned {
			return ErrAlreadyReturned
		}

		now := today()
		borrowing.ReturnDate = &now
		borrowing.Status = entities.StatusReturned

		if overdueDays := daysBetween(borrowing.DueDate, now); overdueDays > 0 {
			if fineOverride != nil {
				borrowing.FineAmount = *fineOverride
			} else {
				borrowing.FineAmount = float64(overdueDays) * dailyRate
			}
		}

		if err := tx.Save(&borrowing).Error; err != nil {
			return err
		}
		return restoreAvailability(tx, borrowing.BookID)
	})
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// Update holds the admin-editable borrowing fields; nil means unchanged.
// Setting ReturnDate closes the loan and restores availability; the other
// fields mutate without availability side effects.
type Update struct {
	ReturnDate *time.Time
	Status     *entities.BorrowStatus
	FineAmount *float64
}

func (r *Repository) Update(id uint, update Update) (*entities.Borrowing, error) {
	var borrowing entities.Borrowing
	err := r.write.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&borrowing, id).Error; err != nil {
			return err
		}

		if update.ReturnDate != nil {
			if borrowing.Status == entities.StatusReturned {
				return ErrAlreadyReturned
			}
			borrowing.ReturnDate = update.ReturnDate
			borrowing.Status = entities.StatusReturned
			if err := restoreAvailability(tx, borrowing.BookID); err != nil {
				return err
			}
		}

		if update.Status != nil {
			borrowing.Status = *update.Status
		}
		if update.FineAmount != nil {
			borrowing.FineAmount = *update.FineAmount
		}

		return tx.Save(&borrowing).Error
	})
	if err != nil {
		return nil, err
	}
	return &borrowing, nil
}

// Delete removes a borrowing record. An open loan restores the book's
// availability first, so deleting never leaves the counter short.
func (r *Repository) Delete(id uint) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var borrowing entities.Borrowing
		if err := tx.First(&borrowing, id).Error; err != nil {
			return err
		}

		if borrowing.Status == entities.StatusBorrowed {
			if err := restoreAvailability(tx, borrowing.BookID); err != nil {
				return err
			}
		}
		return tx.Delete(&borrowing).Error
	})
}

// restoreAvailability increments the book counter, clamped at total_copies.
func restoreAvailability(tx *gorm.DB, bookID uint) error {
	var book entities.Book
	if err := tx.First(&book, bookID).Error; err != nil {
		// the borrowing may outlive the book row
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if book.AvailableCopies < book.TotalCopies {
		book.AvailableCopies++
	}
	return tx.Save(&book).Error
}

// today returns the current date truncated to midnight local time.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// daysBetween returns the calendar days from a to b, negative when b
// precedes a. Both dates are anchored in UTC so a DST-shortened day still
// counts as a full day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
