// Package testimonials provides database operations for book reviews.
package testimonials

import (
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

// Filter narrows List results.
type Filter struct {
	BookID       uint
	ApprovedOnly bool
	Search       string
}

// List returns testimonials newest first.
func (r *Repository) List(skip, limit int, filter Filter) ([]entities.Testimonial, error) {
	query := r.read.Model(&entities.Testimonial{})
	if filter.ApprovedOnly {
		query = query.Where("is_approved = ?", true)
	}
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("LOWER(reader_name) LIKE LOWER(?) OR LOWER(comment) LIKE LOWER(?)", pattern, pattern)
	}
	var testimonials []entities.Testimonial
	err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&testimonials).Error
	return testimonials, err
}

func (r *Repository) GetByID(id uint) (*entities.Testimonial, error) {
	var testimonial entities.Testimonial
	if err := r.read.First(&testimonial, id).Error; err != nil {
		return nil, err
	}
	return &testimonial, nil
}

// RecentApproved returns the n newest approved testimonials with their books.
func (r *Repository) RecentApproved(n int) ([]entities.Testimonial, error) {
	var testimonials []entities.Testimonial
	err := r.read.Preload("Book").
		Where("is_approved = ?", true).
		Order("created_at DESC").
		Limit(n).
		Find(&testimonials).Error
	return testimonials, err
}

// Create inserts a testimonial after verifying the book exists. Approval is
// always forced off; only an admin update can approve.
func (r *Repository) Create(testimonial *entities.Testimonial) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, testimonial.BookID).Error; err != nil {
			return err
		}
		testimonial.IsApproved = false
		return tx.Create(testimonial).Error
	})
}

// Update holds the admin-editable testimonial fields; nil means unchanged.
type Update struct {
	Rating     *int
	Comment    *string
	IsApproved *bool
}

func (r *Repository) Update(id uint, update Update) (*entities.Testimonial, error) {
	var testimonial entities.Testimonial
	err := r.write.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&testimonial, id).Error; err != nil {
			return err
		}
		if update.Rating != nil {
			testimonial.Rating = *update.Rating
		}
		if update.Comment != nil {
			testimonial.Comment = *update.Comment
		}
		if update.IsApproved != nil {
			testimonial.IsApproved = *update.IsApproved
		}
		return tx.Save(&testimonial).Error
	})
	if err != nil {
		return nil, err
	}
	return &testimonial, nil
}

func (r *Repository) Delete(id uint) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var testimonial entities.Testimonial
		if err := tx.First(&testimonial, id).Error; err != nil {
			return err
		}
		return tx.Delete(&testimonial).Error
	})
}
