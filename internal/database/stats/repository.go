// Package stats provides read-only aggregation over the library entities.
package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// LibraryStats is the rollup served at /api/stats.
type LibraryStats struct {
	TotalBooks       int64 `json:"total_books"`
	TotalMembers     int64 `json:"total_members"`
	TotalBorrowings  int64 `json:"total_borrowings"`
	ActiveBorrowings int64 `json:"active_borrowings"`
	OverdueBooks     int64 `json:"overdue_books"`
	AvailableBooks   int64 `json:"available_books"`
}

type Repository struct {
	read *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read}
}

func (r *Repository) Collect() (*LibraryStats, error) {
	var s LibraryStats

	if err := r.read.Model(&entities.Book{}).Count(&s.TotalBooks).Error; err != nil {
		return nil, err
	}
	if err := r.read.Model(&entities.Member{}).Count(&s.TotalMembers).Error; err != nil {
		return nil, err
	}
	if err := r.read.Model(&entities.Borrowing{}).Count(&s.TotalBorrowings).Error; err != nil {
		return nil, err
	}

	err := r.read.Model(&entities.Borrowing{}).
		Where("status = ?", entities.StatusBorrowed).
		Count(&s.ActiveBorrowings).Error
	if err != nil {
		return nil, err
	}

	err = r.read.Model(&entities.Borrowing{}).
		Where("status = ? AND due_date < ?", entities.StatusBorrowed, startOfToday()).
		Count(&s.OverdueBooks).Error
	if err != nil {
		return nil, err
	}

	var available *int64
	err = r.read.Model(&entities.Book{}).
		Select("SUM(available_copies)").
		Scan(&available).Error
	if err != nil {
		return nil, err
	}
	if available != nil {
		s.AvailableBooks = *available
	}

	return &s, nil
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
