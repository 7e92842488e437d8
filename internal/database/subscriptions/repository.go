// Package subscriptions provides database operations for the mailing list.
package subscriptions

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var ErrAlreadySubscribed = errors.New("email is already subscribed")

type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

// Create subscribes an email, rejecting duplicate active subscriptions.
// When no member link is given, a member matching the email is linked
// automatically.
func (r *Repository) Create(email string, memberID *uint) (*entities.Subscription, error) {
	var subscription entities.Subscription
	err := r.write.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.Subscription{}).
			Where("email = ? AND is_active = ?", email, true).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySubscribed
		}

		if memberID == nil {
			var member entities.Member
			if err := tx.Where("email = ?", email).First(&member).Error; err == nil {
				memberID = &member.ID
			}
		}

		subscription = entities.Subscription{
			Email:        email,
			MemberID:     memberID,
			IsActive:     true,
			SubscribedAt: time.Now(),
		}
		return tx.Create(&subscription).Error
	})
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// ListActive returns a page of active subscriptions. A non-empty search
// matches the email case-insensitively.
func (r *Repository) ListActive(skip, limit int, search string) ([]entities.Subscription, int64, error) {
	query := r.read.Model(&entities.Subscription{}).Where("is_active = ?", true)
	if search != "" {
		query = query.Where("LOWER(email) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subscriptions []entities.Subscription
	err := query.Offset(skip).Limit(limit).Find(&subscriptions).Error
	return subscriptions, total, err
}
