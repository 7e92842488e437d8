// Package books provides database operations for the book catalog.
package books

import (
	"errors"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var (
	ErrDuplicateISBN         = errors.New("book with this ISBN already exists")
	ErrAvailableExceedsTotal = errors.New("available_copies cannot exceed total_copies")
)

// Repository handles book catalog queries and mutations.
type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

// List returns a page of books plus the unpaginated total. A non-empty
// search matches title, author or ISBN case-insensitively.
func (r *Repository) List(skip, limit int, search string) ([]entities.Book, int64, error) {
	query := r.read.Model(&entities.Book{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR LOWER(isbn) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	err := query.Offset(skip).Limit(limit).Find(&books).Error
	return books, total, err
}

func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.read.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Newest returns the n most recently added books.
func (r *Repository) Newest(n int) ([]entities.Book, error) {
	var books []entities.Book
	err := r.read.Order("created_at DESC").Limit(n).Find(&books).Error
	return books, err
}

func (r *Repository) Create(book *entities.Book) error {
	if book.AvailableCopies > book.TotalCopies {
		return ErrAvailableExceedsTotal
	}
	return r.write.Transaction(func(tx *gorm.DB) error {
		if book.ISBN != "" {
			var count int64
			if err := tx.Model(&entities.Book{}).Where("isbn = ?", book.ISBN).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateISBN
			}
		}
		return tx.Create(book).Error
	})
}

// Update holds the mutable book fields; nil means "leave unchanged".
type Update struct {
	Title           *string
	Author          *string
	ISBN            *string
	PublishedYear   *int
	TotalCopies     *int
	AvailableCopies *int
}

// Update applies a partial update. Whenever total_copies changes, or
// available_copies would exceed it, available_copies is capped at
// max(0, total - active) so the shelf count never claims copies still out
// on loan.
func (r *Repository) Update(id uint, update Update) (*entities.Book, error) {
	var book entities.Book
	err := r.write.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}

		if update.ISBN != nil && *update.ISBN != "" && *update.ISBN != book.ISBN {
			var count int64
			if err := tx.Model(&entities.Book{}).Where("isbn = ? AND id <> ?", *update.ISBN, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateISBN
			}
		}

		if update.Title != nil {
			book.Title = *update.Title
		}
		if update.Author != nil {
			book.Author = *update.Author
		}
		if update.ISBN != nil {
			book.ISBN = *update.ISBN
		}
		if update.PublishedYear != nil {
			book.PublishedYear = *update.PublishedYear
		}
		if update.TotalCopies != nil {
			book.TotalCopies = *update.TotalCopies
		}
		if update.AvailableCopies != nil {
			book.AvailableCopies = *update.AvailableCopies
		}

		if update.TotalCopies != nil || book.AvailableCopies > book.TotalCopies {
			var active int64
			err := tx.Model(&entities.Borrowing{}).
				Where("book_id = ? AND status = ?", id, entities.StatusBorrowed).
				Count(&active).Error
			if err != nil {
				return err
			}
			headroom := book.TotalCopies - int(active)
			if headroom < 0 {
				headroom = 0
			}
			if book.AvailableCopies > headroom {
				book.AvailableCopies = headroom
			}
		}

		return tx.Save(&book).Error
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) Delete(id uint) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, id).Error; err != nil {
			return err
		}
		return tx.Delete(&book).Error
	})
}
