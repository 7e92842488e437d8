// Package users provides database operations for authentication accounts.
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var ErrDuplicateEmail = errors.New("user with this email already exists")

type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.read.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.read.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) Create(user *entities.User) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(user).Error
	})
}

// Save persists changes made to an existing user row.
func (r *Repository) Save(user *entities.User) error {
	return r.write.Save(user).Error
}

// EmailTaken reports whether another user than excludeID holds the email.
func (r *Repository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	err := r.read.Model(&entities.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}
