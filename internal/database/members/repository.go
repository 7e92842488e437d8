// Package members provides database operations for library members and
// their optional user accounts.
package members

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

var (
	ErrDuplicateEmail     = errors.New("member with this email already exists")
	ErrDuplicateUserEmail = errors.New("user with this email already exists")
	ErrActiveBorrowings   = errors.New("member has active borrowings")
	ErrPasswordRequired   = errors.New("password is required when creating a user account")
)

// MemberWithRole is a member row enriched with the role of its linked user
// account, if one exists.
type MemberWithRole struct {
	entities.Member
	UserRole *entities.Role `json:"user_role"`
}

// Account describes an optional user account to create or update alongside
// a member. PasswordHash must already be hashed by the caller.
type Account struct {
	Role         entities.Role
	PasswordHash string
}

type Repository struct {
	read  *gorm.DB
	write *gorm.DB
}

func NewRepository(db *database.Database) *Repository {
	return &Repository{read: db.Read, write: db.Write}
}

// List returns a page of members with their account roles. A non-empty
// search matches name, email or phone case-insensitively.
func (r *Repository) List(skip, limit int, search string) ([]MemberWithRole, int64, error) {
	query := r.read.Model(&entities.Member{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR LOWER(phone) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []entities.Member
	if err := query.Offset(skip).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	result := make([]MemberWithRole, 0, len(members))
	for _, m := range members {
		item := MemberWithRole{Member: m}
		var user entities.User
		if err := r.read.Where("member_id = ?", m.ID).First(&user).Error; err == nil {
			role := user.Role
			item.UserRole = &role
		}
		result = append(result, item)
	}
	return result, total, nil
}

func (r *Repository) GetByID(id uint) (*entities.Member, error) {
	var member entities.Member
	if err := r.read.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *Repository) GetByEmail(email string) (*entities.Member, error) {
	var member entities.Member
	if err := r.read.Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// AccountInfo describes whether a member has a linked user account.
type AccountInfo struct {
	HasUserAccount bool           `json:"has_user_account"`
	Role           *entities.Role `json:"role,omitempty"`
	IsActive       *bool          `json:"is_active,omitempty"`
}

func (r *Repository) GetAccountInfo(memberID uint) (*AccountInfo, error) {
	if _, err := r.GetByID(memberID); err != nil {
		return nil, err
	}
	var user entities.User
	err := r.read.Where("member_id = ?", memberID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AccountInfo{HasUserAccount: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &AccountInfo{
		HasUserAccount: true,
		Role:           &user.Role,
		IsActive:       &user.IsActive,
	}, nil
}

// Create inserts a member, optionally with a linked user account.
func (r *Repository) Create(member *entities.Member, account *Account) error {
	if member.MembershipDate.IsZero() {
		member.MembershipDate = time.Now()
	}
	return r.write.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Member{}).Where("email = ?", member.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if account != nil {
			if err := tx.Model(&entities.User{}).Where("email = ?", member.Email).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateUserEmail
			}
		}

		if err := tx.Create(member).Error; err != nil {
			return err
		}

		if account != nil {
			user := entities.User{
				Email:        member.Email,
				PasswordHash: account.PasswordHash,
				Role:         account.Role,
				MemberID:     &member.ID,
				IsActive:     true,
			}
			return tx.Create(&user).Error
		}
		return nil
	})
}

// Update holds the mutable member fields; nil means "leave unchanged".
type Update struct {
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	ProfilePicture *string
}

// Update applies a partial update. When account is non-nil the linked user
// account is updated, or created if the member has none.
func (r *Repository) Update(id uint, update Update, account *Account) (*entities.Member, error) {
	var member entities.Member
	err := r.write.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&member, id).Error; err != nil {
			return err
		}

		if update.Email != nil && *update.Email != member.Email {
			var count int64
			if err := tx.Model(&entities.Member{}).Where("email = ? AND id <> ?", *update.Email, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrDuplicateEmail
			}
		}

		if update.Name != nil {
			member.Name = *update.Name
		}
		if update.Email != nil {
			member.Email = *update.Email
		}
		if update.Phone != nil {
			member.Phone = *update.Phone
		}
		if update.Address != nil {
			member.Address = *update.Address
		}
		if update.ProfilePicture != nil {
			member.ProfilePicture = *update.ProfilePicture
		}

		if err := tx.Save(&member).Error; err != nil {
			return err
		}

		if account != nil {
			var user entities.User
			err := tx.Where("email = ?", member.Email).First(&user).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				if account.PasswordHash == "" {
					return ErrPasswordRequired
				}
				user = entities.User{
					Email:        member.Email,
					PasswordHash: account.PasswordHash,
					Role:         account.Role,
					MemberID:     &member.ID,
					IsActive:     true,
				}
				return tx.Create(&user).Error
			case err != nil:
				return err
			default:
				if account.Role != "" {
					user.Role = account.Role
				}
				if account.PasswordHash != "" {
					user.PasswordHash = account.PasswordHash
				}
				user.MemberID = &member.ID
				return tx.Save(&user).Error
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Delete removes a member, failing when active borrowings exist. Returned
// borrowings are kept for audit with member_id nulled out; the linked user
// account, if any, is removed with the member.
func (r *Repository) Delete(id uint) error {
	return r.write.Transaction(func(tx *gorm.DB) error {
		var member entities.Member
		if err := tx.First(&member, id).Error; err != nil {
			return err
		}

		var active int64
		err := tx.Model(&entities.Borrowing{}).
			Where("member_id = ? AND return_date IS NULL", id).
			Count(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveBorrowings
		}

		if err := tx.Where("member_id = ?", id).Delete(&entities.User{}).Error; err != nil {
			return err
		}

		err = tx.Model(&entities.Borrowing{}).
			Where("member_id = ?", id).
			Update("member_id", nil).Error
		if err != nil {
			return err
		}

		return tx.Delete(&member).Error
	})
}

// Borrowings lists a member's borrowings with book and member rows eagerly
// loaded, optionally filtered by status.
func (r *Repository) Borrowings(memberID uint, status entities.BorrowStatus) ([]entities.Borrowing, error) {
	if _, err := r.GetByID(memberID); err != nil {
		return nil, err
	}
	query := r.read.Preload("Book").Preload("Member").Where("member_id = ?", memberID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var borrowings []entities.Borrowing
	err := query.Find(&borrowings).Error
	return borrowings, err
}
